package engine_test

import (
	"context"
	"testing"

	gridkit "github.com/esimov/gridkit/core"
	"github.com/esimov/gridkit/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func structured(t *testing.T, dims gridkit.Dims) *gridkit.StructuredGrid {
	t.Helper()
	u, err := gridkit.NewUniformGrid(dims, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	g := u.ToStructured()

	ids := make([]float64, g.NumPoints())
	for i := range ids {
		ids[i] = float64(i)
	}
	cells := make([]float64, g.NumCells())
	for i := range cells {
		cells[i] = float64(i)
	}
	require.NoError(t, g.SetPointField("id", gridkit.Scalars(ids...)))
	require.NoError(t, g.SetCellField("cid", gridkit.Scalars(cells...)))
	return g
}

func TestExtractor_ExtractGrid(t *testing.T) {
	g := structured(t, gridkit.Dims{5, 4, 1})

	out, err := engine.Extractor{}.ExtractGrid(context.Background(), g, gridkit.SubsetParams{
		VOI:  gridkit.VOI{1, 3, 1, 2, 0, 0},
		Rate: [3]int{1, 1, 1},
	})
	require.NoError(t, err)
	require.NoError(t, out.Validate())

	assert.Equal(t, gridkit.Dims{3, 2, 1}, out.Dimensions)
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, out.Points[0])
	assert.Equal(t, r3.Vec{X: 3, Y: 2}, out.Points[5])
	assert.Equal(t, []float64{6, 7, 8, 11, 12, 13}, out.PointData["id"].Values)
	// Cells (1,1) and (2,1) of the 4x3 cell lattice.
	assert.Equal(t, []float64{5, 6}, out.CellData["cid"].Values)
}

func TestExtractor_SampleRateAndBoundary(t *testing.T) {
	g := structured(t, gridkit.Dims{6, 1, 1})
	ctx := context.Background()

	out, err := engine.Extractor{}.ExtractGrid(ctx, g, gridkit.SubsetParams{
		VOI:  gridkit.VOI{0, 5, 0, 0, 0, 0},
		Rate: [3]int{2, 1, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4}, out.PointData["id"].Values)

	out, err = engine.Extractor{}.ExtractGrid(ctx, g, gridkit.SubsetParams{
		VOI:      gridkit.VOI{0, 5, 0, 0, 0, 0},
		Rate:     [3]int{2, 1, 1},
		Boundary: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 5}, out.PointData["id"].Values)
	assert.Equal(t, r3.Vec{X: 5}, out.Points[len(out.Points)-1])
	require.NoError(t, out.Validate())
}

func TestExtractor_ClampsVOI(t *testing.T) {
	g := structured(t, gridkit.Dims{3, 3, 1})
	ctx := context.Background()

	out, err := engine.Extractor{}.ExtractGrid(ctx, g, gridkit.SubsetParams{
		VOI:  gridkit.VOI{-4, 10, 1, 1, 0, 3},
		Rate: [3]int{1, 1, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, gridkit.Dims{3, 1, 1}, out.Dimensions)

	_, err = engine.Extractor{}.ExtractGrid(ctx, g, gridkit.SubsetParams{
		VOI:  gridkit.VOI{5, 8, 0, 0, 0, 0},
		Rate: [3]int{1, 1, 1},
	})
	assert.ErrorIs(t, err, gridkit.ErrInvalidVOI)
}

func TestExtractor_ExtractVOI(t *testing.T) {
	u, err := gridkit.NewUniformGrid(gridkit.Dims{9, 5, 1}, r3.Vec{X: 10, Y: 20}, r3.Vec{X: 0.5, Y: 2, Z: 1})
	require.NoError(t, err)

	out, err := engine.Extractor{}.ExtractVOI(context.Background(), u, gridkit.SubsetParams{
		VOI:  gridkit.VOI{2, 8, 1, 4, 0, 0},
		Rate: [3]int{3, 1, 1},
	})
	require.NoError(t, err)
	require.NoError(t, out.Validate())

	assert.Equal(t, gridkit.Dims{3, 4, 1}, out.Dimensions)
	assert.Equal(t, r3.Vec{X: 11, Y: 22}, out.Origin)
	assert.Equal(t, r3.Vec{X: 1.5, Y: 2, Z: 1}, out.Spacing)
	assert.Equal(t, u.Point(8, 4, 0), out.Point(2, 3, 0))
}

func TestExtractor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Extractor{}.ExtractGrid(ctx, structured(t, gridkit.Dims{2, 2, 1}), gridkit.SubsetParams{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilters_SplitAndJoin(t *testing.T) {
	g := structured(t, gridkit.Dims{7, 5, 3})
	f := engine.NewFilters(nil)
	ctx := context.Background()

	for axis := 0; axis < 3; axis++ {
		full := gridkit.VOI{0, 6, 0, 4, 0, 2}
		mid := g.Dimensions[axis] / 2
		lo, hi := full, full
		lo[2*axis+1] = mid
		hi[2*axis] = mid

		low, err := f.ExtractSubset(ctx, g, gridkit.SubsetParams{VOI: lo})
		require.NoError(t, err)
		high, err := f.ExtractSubset(ctx, g, gridkit.SubsetParams{VOI: hi})
		require.NoError(t, err)

		joined, err := f.Concatenate(low, high, axis, 0)
		require.NoError(t, err, "axis %d", axis)
		assert.Equal(t, g.Dimensions, joined.Dimensions)
		assert.Equal(t, g.Points, joined.Points)
		assert.Equal(t, g.PointData["id"], joined.PointData["id"])
		assert.Equal(t, g.CellData["cid"], joined.CellData["cid"])
	}
}
