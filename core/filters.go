package gridkit

import (
	"context"
	"fmt"

	"github.com/esimov/gridkit/utils"
)

// Filters forwards dataset operations to the configured engines.
// A nil engine makes the matching filter fail with ErrNoEngine.
// Progress, when set, is notified around calls requesting a progress bar.
type Filters struct {
	Subset       SubsetExtractionEngine
	Smoother     SmoothingEngine
	Triangulator TriangulationEngine
	Progress     ProgressReporter
}

// ExtractSubset selects a volume of interest of a structured grid,
// optionally subsampled. The output inherits the meta information of g.
func (f *Filters) ExtractSubset(ctx context.Context, g *StructuredGrid, p SubsetParams) (*StructuredGrid, error) {
	if f.Subset == nil {
		return nil, fmt.Errorf("extract subset: %w", ErrNoEngine)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("extract subset: %w", err)
	}
	p.fillDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("extract subset: %w", err)
	}

	out, err := f.Subset.ExtractGrid(ctx, g, p)
	if err != nil {
		return nil, fmt.Errorf("extract subset: %w", err)
	}
	out.inheritMeta(&g.Meta)
	utils.Logf("extract subset: voi %v rate %v: %v -> %v", p.VOI, p.Rate, g.Dimensions, out.Dimensions)
	return out, nil
}

// ExtractUniformSubset selects a volume of interest of a uniform grid.
// The output origin is the first selected point and its spacing is scaled
// by the sampling rate.
func (f *Filters) ExtractUniformSubset(ctx context.Context, g *UniformGrid, p SubsetParams) (*UniformGrid, error) {
	if f.Subset == nil {
		return nil, fmt.Errorf("extract subset: %w", ErrNoEngine)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("extract subset: %w", err)
	}
	p.fillDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("extract subset: %w", err)
	}

	out, err := f.Subset.ExtractVOI(ctx, g, p)
	if err != nil {
		return nil, fmt.Errorf("extract subset: %w", err)
	}
	out.inheritMeta(&g.Meta)
	utils.Logf("extract subset: voi %v rate %v: %v -> %v", p.VOI, p.Rate, g.Dimensions, out.Dimensions)
	return out, nil
}

// GaussianSmooth smooths one field of g. When p.Scalars is empty the active
// scalars are used; otherwise the name is looked up with p.Preference first.
func (f *Filters) GaussianSmooth(ctx context.Context, g *UniformGrid, p SmoothParams) (*UniformGrid, error) {
	if f.Smoother == nil {
		return nil, fmt.Errorf("gaussian smooth: %w", ErrNoEngine)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("gaussian smooth: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("gaussian smooth: %w", err)
	}

	if p.Scalars == "" {
		if g.Active.Name == "" {
			return nil, fmt.Errorf("gaussian smooth: %w", ErrNoActiveScalars)
		}
		p.Scalars, p.Preference = g.Active.Name, g.Active.Association
	}
	_, assoc, ok := g.Field(p.Scalars, p.Preference)
	if !ok {
		return nil, fmt.Errorf("gaussian smooth: %w: %q", ErrFieldNotFound, p.Scalars)
	}
	p.Association = assoc

	var out *UniformGrid
	err := f.track("Performing Gaussian Smoothing", p.ProgressBar, func() error {
		var err error
		out, err = f.Smoother.GaussianSmooth(ctx, g, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gaussian smooth: %w", err)
	}
	out.inheritMeta(&g.Meta)
	utils.Logf("gaussian smooth: %s field %q, std devs %v, radius factors %v", assoc, p.Scalars, p.StdDevs, p.RadiusFactors)
	return out, nil
}

// Delaunay2D triangulates the points of src along their best fitting plane.
// Only the point coordinates take part; any connectivity of src is ignored.
func (f *Filters) Delaunay2D(ctx context.Context, src PointSet, p DelaunayParams) (*PolyData, error) {
	if f.Triangulator == nil {
		return nil, fmt.Errorf("delaunay 2d: %w", ErrNoEngine)
	}
	if src == nil {
		return nil, fmt.Errorf("delaunay 2d: %w", &GridError{Reason: "nil point set"})
	}
	if ds, ok := src.(DataSet); ok {
		if err := ds.Validate(); err != nil {
			return nil, fmt.Errorf("delaunay 2d: %w", err)
		}
	}
	p.fillDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("delaunay 2d: %w", err)
	}

	points := src.PointCoords()
	var out *PolyData
	err := f.track("Computing 2D Triangulation", p.ProgressBar, func() error {
		var err error
		out, err = f.Triangulator.Delaunay2D(ctx, points, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("delaunay 2d: %w", err)
	}
	utils.Logf("delaunay 2d: %d points -> %d triangles", len(points), len(out.Triangles))
	return out, nil
}

// Concatenate joins two structured grids. See the package level Concatenate.
func (f *Filters) Concatenate(base, other *StructuredGrid, axis int, tolerance float64) (*StructuredGrid, error) {
	out, err := Concatenate(base, other, axis, tolerance)
	if err != nil {
		return nil, err
	}
	utils.Logf("concatenate: %v + %v along axis %d -> %v", base.Dimensions, other.Dimensions, axis, out.Dimensions)
	return out, nil
}

// track runs fn, reporting its progress when enabled and a reporter is configured.
func (f *Filters) track(message string, enabled bool, fn func() error) error {
	if !enabled || f.Progress == nil {
		return fn()
	}
	f.Progress.Begin(message)
	err := fn()
	f.Progress.End(err)
	return err
}
