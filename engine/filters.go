package engine

import gridkit "github.com/esimov/gridkit/core"

// NewFilters returns a Filters facade backed by the reference engines.
// progress may be nil.
func NewFilters(progress gridkit.ProgressReporter) *gridkit.Filters {
	return &gridkit.Filters{
		Subset:       Extractor{},
		Smoother:     Smoother{},
		Triangulator: Triangulator{},
		Progress:     progress,
	}
}
