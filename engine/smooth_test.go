package engine_test

import (
	"context"
	"math"
	"testing"

	gridkit "github.com/esimov/gridkit/core"
	"github.com/esimov/gridkit/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestGaussianKernel(t *testing.T) {
	k := engine.GaussianKernel(2, 1.5)
	require.Len(t, k, 7)
	assert.InDelta(t, 1, floats.Sum(k), 1e-12)
	for i := 0; i < 3; i++ {
		assert.Equal(t, k[i], k[6-i])
		assert.Less(t, k[i], k[i+1])
	}

	assert.Equal(t, []float64{1}, engine.GaussianKernel(0, 1.5))
	assert.Equal(t, []float64{1}, engine.GaussianKernel(2, 0.4))
}

func uniformField(t *testing.T, dims gridkit.Dims, values []float64) *gridkit.UniformGrid {
	t.Helper()
	g, err := gridkit.NewUniformGrid(dims, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	require.NoError(t, g.SetPointField("t", gridkit.Scalars(values...)))
	return g
}

func TestSmoother_ConstantPreserved(t *testing.T) {
	dims := gridkit.Dims{9, 7, 4}
	values := make([]float64, dims.Len())
	for i := range values {
		values[i] = 3.25
	}
	g := uniformField(t, dims, values)

	out, err := engine.Smoother{}.GaussianSmooth(context.Background(), g, gridkit.SmoothParams{
		StdDevs:       gridkit.Uniform3(2),
		RadiusFactors: gridkit.Uniform3(1.5),
		Scalars:       "t",
	})
	require.NoError(t, err)
	for _, v := range out.PointData["t"].Values {
		assert.InDelta(t, 3.25, v, 1e-12)
	}
}

func TestSmoother_InteriorMassPreserved(t *testing.T) {
	dims := gridkit.Dims{21, 21, 1}
	values := make([]float64, dims.Len())
	values[dims.Index(10, 10, 0)] = 1
	g := uniformField(t, dims, values)
	require.NoError(t, g.SetPointField("other", gridkit.Scalars(values...)))

	out, err := engine.Smoother{}.GaussianSmooth(context.Background(), g, gridkit.SmoothParams{
		StdDevs:       gridkit.Uniform3(1.5),
		RadiusFactors: gridkit.Uniform3(2),
		Scalars:       "t",
	})
	require.NoError(t, err)

	got := out.PointData["t"].Values
	assert.InDelta(t, 1, floats.Sum(got), 1e-12)
	assert.Less(t, got[dims.Index(10, 10, 0)], 1.0)
	assert.Equal(t, got[dims.Index(9, 10, 0)], got[dims.Index(11, 10, 0)])
	assert.InDelta(t, got[dims.Index(10, 9, 0)], got[dims.Index(9, 10, 0)], 1e-15)
	assert.Zero(t, got[dims.Index(0, 0, 0)])

	// Other arrays and the input are left alone.
	assert.Equal(t, values, out.PointData["other"].Values)
	assert.Equal(t, values, g.PointData["t"].Values)
}

func TestSmoother_AxisSelective(t *testing.T) {
	dims := gridkit.Dims{5, 5, 1}
	values := make([]float64, dims.Len())
	values[dims.Index(2, 2, 0)] = 1
	g := uniformField(t, dims, values)

	out, err := engine.Smoother{}.GaussianSmooth(context.Background(), g, gridkit.SmoothParams{
		StdDevs:       [3]float64{1, 0, 0},
		RadiusFactors: gridkit.Uniform3(2),
		Scalars:       "t",
	})
	require.NoError(t, err)

	got := out.PointData["t"].Values
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			if j != 2 {
				assert.Zero(t, got[dims.Index(i, j, 0)])
			}
		}
	}
	assert.Greater(t, got[dims.Index(1, 2, 0)], 0.0)
}

func TestSmoother_CellField(t *testing.T) {
	g, err := gridkit.NewUniformGrid(gridkit.Dims{4, 4, 1}, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	cells := []float64{0, 0, 0, 0, 9, 0, 0, 0, 0}
	require.NoError(t, g.SetCellField("c", gridkit.Scalars(cells...)))

	out, err := engine.Smoother{}.GaussianSmooth(context.Background(), g, gridkit.SmoothParams{
		StdDevs:       gridkit.Uniform3(1),
		RadiusFactors: gridkit.Uniform3(1),
		Scalars:       "c",
		Association:   gridkit.CellAssociation,
	})
	require.NoError(t, err)
	got := out.CellData["c"].Values
	assert.Less(t, got[4], 9.0)
	assert.Greater(t, got[0], 0.0)
	assert.False(t, math.IsNaN(floats.Sum(got)))

	_, err = engine.Smoother{}.GaussianSmooth(context.Background(), g, gridkit.SmoothParams{Scalars: "c"})
	assert.ErrorIs(t, err, gridkit.ErrFieldNotFound)
}

func TestSmoother_VectorField(t *testing.T) {
	g, err := gridkit.NewUniformGrid(gridkit.Dims{6, 1, 1}, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	vs := make([]r3.Vec, 6)
	for i := range vs {
		vs[i] = r3.Vec{X: 1, Y: 2, Z: float64(i)}
	}
	require.NoError(t, g.SetPointField("v", gridkit.Vectors(vs...)))

	out, err := engine.Smoother{}.GaussianSmooth(context.Background(), g, gridkit.SmoothParams{
		StdDevs:       gridkit.Uniform3(1),
		RadiusFactors: gridkit.Uniform3(2),
		Scalars:       "v",
	})
	require.NoError(t, err)
	f := out.PointData["v"]
	for i := 0; i < f.Tuples(); i++ {
		assert.InDelta(t, 1, f.Tuple(i)[0], 1e-12)
		assert.InDelta(t, 2, f.Tuple(i)[1], 1e-12)
	}
}

func TestFilters_GaussianSmoothActiveScalars(t *testing.T) {
	dims := gridkit.Dims{5, 5, 5}
	values := make([]float64, dims.Len())
	for i := range values {
		values[i] = -1
	}
	g := uniformField(t, dims, values)
	g.Active = gridkit.ActiveScalars{Name: "t"}

	out, err := engine.NewFilters(nil).GaussianSmooth(context.Background(), g, gridkit.DefaultSmoothParams())
	require.NoError(t, err)
	assert.Equal(t, "t", out.Active.Name)
	assert.InDeltaSlice(t, values, out.PointData["t"].Values, 1e-12)
}

func TestFilters_GaussianSmoothZeroStdDevs(t *testing.T) {
	values := []float64{0, 0, 1, 0, 0}
	g := uniformField(t, gridkit.Dims{5, 1, 1}, values)

	p := gridkit.DefaultSmoothParams()
	p.Scalars = "t"
	p.StdDevs = [3]float64{}
	out, err := engine.NewFilters(nil).GaussianSmooth(context.Background(), g, p)
	require.NoError(t, err)
	assert.Equal(t, values, out.PointData["t"].Values)

	p = gridkit.DefaultSmoothParams()
	p.Scalars = "t"
	out, err = engine.NewFilters(nil).GaussianSmooth(context.Background(), g, p)
	require.NoError(t, err)
	assert.Less(t, out.PointData["t"].Values[2], 1.0)
	assert.Greater(t, out.PointData["t"].Values[0], 0.0)
}
