package engine_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	gridkit "github.com/esimov/gridkit/core"
	"github.com/esimov/gridkit/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func latticePoints(nx, ny int, place func(x, y float64) r3.Vec) []r3.Vec {
	pts := make([]r3.Vec, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			pts = append(pts, place(float64(i), float64(j)))
		}
	}
	return pts
}

// area2 returns twice the signed area of the triangle once projected on the z plane.
func area2(a, b, c r3.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

func TestTriangulator_Lattice(t *testing.T) {
	for _, tc := range []struct {
		name   string
		place  func(x, y float64) r3.Vec
		normal r3.Vec
	}{
		{"xy", func(x, y float64) r3.Vec { return r3.Vec{X: x, Y: y} }, r3.Vec{Z: 1}},
		{"xz", func(x, y float64) r3.Vec { return r3.Vec{X: x, Y: 3, Z: y} }, r3.Vec{Y: 1}},
		{"yz", func(x, y float64) r3.Vec { return r3.Vec{X: -1, Y: x, Z: y} }, r3.Vec{X: 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			nx, ny := 6, 4
			pts := latticePoints(nx, ny, tc.place)

			out, err := engine.Triangulator{}.Delaunay2D(context.Background(), pts, gridkit.DefaultDelaunayParams())
			require.NoError(t, err)
			require.NoError(t, out.Validate())

			assert.Equal(t, pts, out.Points)
			assert.Len(t, out.Triangles, 2*(nx-1)*(ny-1))

			// Counter-clockwise about the positive axis of the plane.
			for _, tri := range out.Triangles {
				a, b, c := pts[tri[0]], pts[tri[1]], pts[tri[2]]
				n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
				assert.Positive(t, r3.Dot(n, tc.normal), "triangle %v", tri)
			}
		})
	}
}

func TestTriangulator_CoversConvexHull(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	pts := []r3.Vec{{}, {X: 10}, {X: 10, Y: 10}, {Y: 10}}
	for i := 0; i < 60; i++ {
		pts = append(pts, r3.Vec{X: 0.5 + 9*rnd.Float64(), Y: 0.5 + 9*rnd.Float64()})
	}

	out, err := engine.Triangulator{}.Delaunay2D(context.Background(), pts, gridkit.DefaultDelaunayParams())
	require.NoError(t, err)

	var area float64
	used := make(map[int]bool)
	for _, tr := range out.Triangles {
		a := area2(pts[tr[0]], pts[tr[1]], pts[tr[2]])
		assert.Greater(t, a, 0.0, "triangles are counter-clockwise")
		area += a / 2
		for _, v := range tr {
			used[v] = true
		}
	}
	assert.InDelta(t, 100, area, 1e-9)
	assert.Len(t, used, len(pts))
	// Euler: 2n - h - 2 triangles for n points with h on the hull.
	assert.Len(t, out.Triangles, 2*len(pts)-4-2)
}

func TestTriangulator_EmptyCircumcircles(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	pts := make([]r3.Vec, 40)
	for i := range pts {
		pts[i] = r3.Vec{X: rnd.Float64(), Y: rnd.Float64()}
	}
	out, err := engine.Triangulator{}.Delaunay2D(context.Background(), pts, gridkit.DefaultDelaunayParams())
	require.NoError(t, err)

	for _, tr := range out.Triangles {
		a, b, c := pts[tr[0]], pts[tr[1]], pts[tr[2]]
		centre, r := circumcircle(a, b, c)
		for n, p := range pts {
			if n == tr[0] || n == tr[1] || n == tr[2] {
				continue
			}
			assert.GreaterOrEqual(t, math.Hypot(p.X-centre.X, p.Y-centre.Y), r-1e-9)
		}
	}
}

func circumcircle(a, b, c r3.Vec) (r3.Vec, float64) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	a2, b2, c2 := a.X*a.X+a.Y*a.Y, b.X*b.X+b.Y*b.Y, c.X*c.X+c.Y*c.Y
	centre := r3.Vec{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}
	return centre, math.Hypot(a.X-centre.X, a.Y-centre.Y)
}

func TestTriangulator_TiltedPlane(t *testing.T) {
	pts := latticePoints(5, 5, func(x, y float64) r3.Vec {
		return r3.Vec{X: x, Y: y, Z: 0.5*x - 0.25*y}
	})
	out, err := engine.Triangulator{}.Delaunay2D(context.Background(), pts, gridkit.DefaultDelaunayParams())
	require.NoError(t, err)
	require.NoError(t, out.Validate())

	// The lattice is no longer square in the plane, but it still spans the
	// same 4x4 quads.
	assert.Len(t, out.Triangles, 32)
}

func TestTriangulator_MergesDuplicates(t *testing.T) {
	pts := latticePoints(3, 3, func(x, y float64) r3.Vec { return r3.Vec{X: x, Y: y} })
	pts = append(pts, r3.Vec{X: 1, Y: 1 + 1e-9}, r3.Vec{X: 2})

	out, err := engine.Triangulator{}.Delaunay2D(context.Background(), pts, gridkit.DefaultDelaunayParams())
	require.NoError(t, err)
	assert.Len(t, out.Points, 11)
	assert.Len(t, out.Triangles, 8)
	for _, tr := range out.Triangles {
		for _, v := range tr {
			assert.Less(t, v, 9)
		}
	}
}

func TestTriangulator_AlphaAndBound(t *testing.T) {
	pts := latticePoints(4, 4, func(x, y float64) r3.Vec { return r3.Vec{X: x, Y: y} })
	pts = append(pts, r3.Vec{X: 20, Y: 1.5})
	ctx := context.Background()

	all, err := engine.Triangulator{}.Delaunay2D(ctx, pts, gridkit.DefaultDelaunayParams())
	require.NoError(t, err)

	p := gridkit.DefaultDelaunayParams()
	p.Alpha = 1
	alpha, err := engine.Triangulator{}.Delaunay2D(ctx, pts, p)
	require.NoError(t, err)
	assert.Len(t, alpha.Triangles, 18)
	assert.Less(t, len(alpha.Triangles), len(all.Triangles))

	p = gridkit.DefaultDelaunayParams()
	p.Bound = true
	bound, err := engine.Triangulator{}.Delaunay2D(ctx, pts, p)
	require.NoError(t, err)
	require.NoError(t, bound.Validate())
	assert.Len(t, bound.Points, len(pts)+3)
	// The bounding triangle is the hull: 2n + 1 triangles for n inner points.
	assert.Len(t, bound.Triangles, 2*(len(pts)+3)-3-2)
}

func TestTriangulator_Errors(t *testing.T) {
	ctx := context.Background()
	p := gridkit.DefaultDelaunayParams()

	_, err := engine.Triangulator{}.Delaunay2D(ctx, []r3.Vec{{}, {X: 1}}, p)
	assert.ErrorIs(t, err, gridkit.ErrTooFewPoints)

	_, err = engine.Triangulator{}.Delaunay2D(ctx, []r3.Vec{{X: 1}, {X: 1}, {X: 1}}, p)
	assert.ErrorIs(t, err, gridkit.ErrTooFewPoints)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	pts := latticePoints(3, 3, func(x, y float64) r3.Vec { return r3.Vec{X: x, Y: y} })
	_, err = engine.Triangulator{}.Delaunay2D(cancelled, pts, p)
	assert.ErrorIs(t, err, context.Canceled)
}
