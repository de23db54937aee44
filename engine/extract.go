package engine

import (
	"context"
	"fmt"

	gridkit "github.com/esimov/gridkit/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// Extractor selects index-space subregions of structured and uniform grids.
// The zero value is ready to use.
type Extractor struct{}

var _ gridkit.SubsetExtractionEngine = Extractor{}

// ExtractGrid returns the points, point data and cell data of g found in the
// volume of interest, sampled every p.Rate nodes.
func (Extractor) ExtractGrid(ctx context.Context, g *gridkit.StructuredGrid, p gridkit.SubsetParams) (*gridkit.StructuredGrid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel, err := selection(g.Dimensions, p)
	if err != nil {
		return nil, err
	}
	dims := gridkit.Dims{len(sel[0]), len(sel[1]), len(sel[2])}
	cellSel := cellSelection(g.Dimensions.CellDims(), sel)

	return &gridkit.StructuredGrid{
		Dimensions: dims,
		Points:     gridkit.Gather(g.Dimensions, g.Points, 1, sel),
		PointData:  gatherFields(g.Dimensions, g.PointData, sel),
		CellData:   gatherFields(g.Dimensions.CellDims(), g.CellData, cellSel),
	}, nil
}

// ExtractVOI is the uniform grid flavour of ExtractGrid. The output origin is
// placed on the first selected node and the spacing is multiplied by the
// sampling rate. With Boundary set, the last step along an axis may be shorter
// than the output spacing.
func (Extractor) ExtractVOI(ctx context.Context, g *gridkit.UniformGrid, p gridkit.SubsetParams) (*gridkit.UniformGrid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel, err := selection(g.Dimensions, p)
	if err != nil {
		return nil, err
	}
	dims := gridkit.Dims{len(sel[0]), len(sel[1]), len(sel[2])}
	cellSel := cellSelection(g.Dimensions.CellDims(), sel)
	rate := rates(p)

	return &gridkit.UniformGrid{
		Dimensions: dims,
		Origin:     g.Point(sel[0][0], sel[1][0], sel[2][0]),
		Spacing: r3.Vec{
			X: g.Spacing.X * float64(rate[0]),
			Y: g.Spacing.Y * float64(rate[1]),
			Z: g.Spacing.Z * float64(rate[2]),
		},
		PointData: gatherFields(g.Dimensions, g.PointData, sel),
		CellData:  gatherFields(g.Dimensions.CellDims(), g.CellData, cellSel),
	}, nil
}

// selection computes the node indices kept along every axis.
// The VOI is clamped to the lattice first.
func selection(d gridkit.Dims, p gridkit.SubsetParams) ([3][]int, error) {
	var sel [3][]int
	for a, rate := range rates(p) {
		if rate < 0 {
			return sel, fmt.Errorf("%w: got %v", gridkit.ErrInvalidRate, p.Rate)
		}

		lo, hi := p.VOI.Range(a)
		lo, hi = clamp(lo, 0, d[a]-1), clamp(hi, 0, d[a]-1)
		if first, last := p.VOI.Range(a); lo > hi || last < 0 || first > d[a]-1 {
			return sel, fmt.Errorf("%w: axis %d range [%d, %d] misses the %d available nodes",
				gridkit.ErrInvalidVOI, a, first, last, d[a])
		}

		for i := lo; i <= hi; i += rate {
			sel[a] = append(sel[a], i)
		}
		if p.Boundary && sel[a][len(sel[a])-1] != hi {
			sel[a] = append(sel[a], hi)
		}
	}
	return sel, nil
}

// cellSelection maps every output cell onto the input cell whose lower
// corner is the selected node, clamped to the last input cell.
func cellSelection(cells gridkit.Dims, sel [3][]int) [3][]int {
	var out [3][]int
	for a := 0; a < 3; a++ {
		n := len(sel[a]) - 1
		if n < 1 {
			n = 1
		}
		out[a] = make([]int, n)
		for c := range out[a] {
			out[a][c] = clamp(sel[a][c], 0, cells[a]-1)
		}
	}
	return out
}

func gatherFields(d gridkit.Dims, fs gridkit.Fields, sel [3][]int) gridkit.Fields {
	out := make(gridkit.Fields, len(fs))
	for name, f := range fs {
		out[name] = gridkit.Field{
			Components: f.Components,
			Values:     gridkit.Gather(d, f.Values, f.Components, sel),
		}
	}
	return out
}

// rates returns the sampling rates with zero entries replaced by 1.
func rates(p gridkit.SubsetParams) [3]int {
	r := p.Rate
	for a := range r {
		if r[a] == 0 {
			r[a] = 1
		}
	}
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
