package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	gridkit "github.com/esimov/gridkit/core"
	"github.com/esimov/gridkit/engine"
	"github.com/esimov/gridkit/gridio"
	"github.com/esimov/gridkit/render"
	"github.com/esimov/gridkit/utils"
)

// Runner executes pipeline files against a set of engines.
type Runner struct {
	// Filters defaults to the reference engines.
	Filters *gridkit.Filters
	// Dir resolves relative paths. Empty means the working directory.
	Dir string
}

// Run executes the steps of f in order and returns the dataset produced by
// every step, keyed by step name. Save and render steps yield their source.
func (r *Runner) Run(ctx context.Context, f *File) (map[string]gridkit.DataSet, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if r.Filters == nil {
		r.Filters = engine.NewFilters(nil)
	}
	out := make(map[string]gridkit.DataSet, len(f.Steps))
	for _, s := range f.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		ds, err := r.step(ctx, s, out)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", s.Name, err)
		}
		out[s.Name] = ds
		utils.Logf("pipeline: step %q (%s) done in %s", s.Name, s.Op, time.Since(start))
	}
	return out, nil
}

func (r *Runner) step(ctx context.Context, s *Step, done map[string]gridkit.DataSet) (gridkit.DataSet, error) {
	src := done[s.Source]

	switch s.Op {
	case OpLoad:
		return gridio.Load(r.path(s.Path))
	case OpSave:
		return src, gridio.Save(r.path(s.Path), src)
	case OpToStructured:
		switch g := src.(type) {
		case *gridkit.StructuredGrid:
			return g, nil
		case *gridkit.UniformGrid:
			return g.ToStructured(), nil
		}
		return nil, kindError(s, s.Source, src, "a lattice")
	case OpSubset:
		p := gridkit.SubsetParams{Boundary: s.Boundary}
		copy(p.VOI[:], s.VOI)
		copy(p.Rate[:], s.Rate)
		switch g := src.(type) {
		case *gridkit.StructuredGrid:
			return r.Filters.ExtractSubset(ctx, g, p)
		case *gridkit.UniformGrid:
			return r.Filters.ExtractUniformSubset(ctx, g, p)
		}
		return nil, kindError(s, s.Source, src, "a lattice")
	case OpSmooth:
		g, ok := src.(*gridkit.UniformGrid)
		if !ok {
			return nil, kindError(s, s.Source, src, "a uniform grid")
		}
		pref, err := gridkit.ParseAssociation(s.Preference)
		if err != nil {
			return nil, err
		}
		def := gridkit.DefaultSmoothParams()
		return r.Filters.GaussianSmooth(ctx, g, gridkit.SmoothParams{
			StdDevs:       triple(s.StdDevs, def.StdDevs),
			RadiusFactors: triple(s.RadiusFactors, def.RadiusFactors),
			Scalars:       s.Scalars,
			Preference:    pref,
			ProgressBar:   s.Progress,
		})
	case OpDelaunay:
		p := gridkit.DefaultDelaunayParams()
		if s.Tolerance != nil {
			p.Tolerance = *s.Tolerance
		}
		p.Alpha, p.Bound, p.ProgressBar = s.Alpha, s.Bound, s.Progress
		if s.Offset != 0 {
			p.Offset = s.Offset
		}
		return r.Filters.Delaunay2D(ctx, src, p)
	case OpConcatenate:
		var grids [2]*gridkit.StructuredGrid
		for n, name := range s.Inputs {
			g, ok := done[name].(*gridkit.StructuredGrid)
			if !ok {
				return nil, kindError(s, name, done[name], "a structured grid")
			}
			grids[n] = g
		}
		var tol float64
		if s.Tolerance != nil {
			tol = *s.Tolerance
		}
		return r.Filters.Concatenate(grids[0], grids[1], *s.Axis, tol)
	case OpRender:
		return src, r.render(s, src)
	}
	return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidStep, s.Op)
}

func (r *Runner) render(s *Step, src gridkit.DataSet) error {
	opt := render.Options{
		Field:     s.Field,
		Wireframe: s.Wireframe,
		Width:     s.Width,
		Height:    s.Height,
	}
	var (
		img image.Image
		err error
	)
	switch g := src.(type) {
	case *gridkit.StructuredGrid:
		img, err = render.Grid(g, opt)
	case *gridkit.UniformGrid:
		img, err = render.Grid(g.ToStructured(), opt)
	case *gridkit.PolyData:
		img, err = render.Mesh(g, opt)
	default:
		return kindError(s, s.Source, src, "a grid or a mesh")
	}
	if err != nil {
		return err
	}

	dst, err := os.Create(r.path(s.Path))
	if err != nil {
		return err
	}
	if err := render.Encode(dst, img, utils.Ext(s.Path)); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (r *Runner) path(p string) string {
	if r.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.Dir, p)
}

func kindError(s *Step, name string, ds gridkit.DataSet, want string) error {
	return fmt.Errorf("%w: step %q (%s) needs %s, %q is %T", ErrInvalidStep, s.Name, s.Op, want, name, ds)
}

// triple expands one value to all three axes. Empty input yields def.
func triple(v []float64, def [3]float64) [3]float64 {
	switch len(v) {
	case 1:
		return gridkit.Uniform3(v[0])
	case 3:
		return [3]float64{v[0], v[1], v[2]}
	}
	return def
}
