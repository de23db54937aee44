package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	gridkit "github.com/esimov/gridkit/core"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// superScale sizes the bounding triangle relative to the circle enclosing the points.
const superScale = 20

// Triangulator computes 2D Delaunay triangulations with the Bowyer-Watson
// algorithm after projecting the points on their best fitting plane.
// The zero value is ready to use.
type Triangulator struct{}

var _ gridkit.TriangulationEngine = Triangulator{}

// node is a point expressed in the plane basis.
type node struct {
	x, y float64
}

// triangle holds counter-clockwise vertex indices.
type triangle [3]int

// Delaunay2D triangulates points. The output keeps every input point, in the
// input order, so point data of the source can be attached to it. Points
// closer than p.Tolerance times the bounding diagonal are merged into the
// first of them. With p.Bound the bounding triangulation is kept and its
// three vertices are appended to the points.
func (Triangulator) Delaunay2D(ctx context.Context, points []r3.Vec, p gridkit.DelaunayParams) (*gridkit.PolyData, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d", gridkit.ErrTooFewPoints, len(points))
	}
	offset := p.Offset
	if offset <= 0 {
		offset = 1
	}

	pl, err := fitPlane(points)
	if err != nil {
		return nil, err
	}
	nodes := make([]node, len(points), len(points)+3)
	for i, pt := range points {
		nodes[i] = pl.project(pt)
	}

	lo, hi := nodeBounds(nodes)
	diag := math.Hypot(hi.x-lo.x, hi.y-lo.y)
	if diag == 0 {
		return nil, fmt.Errorf("%w: all points coincide", gridkit.ErrTooFewPoints)
	}
	unique := mergeNodes(nodes, p.Tolerance*diag)
	if len(unique) < 3 {
		return nil, fmt.Errorf("%w: %d distinct points", gridkit.ErrTooFewPoints, len(unique))
	}

	// Equilateral bounding triangle, counter-clockwise.
	n := len(points)
	centre := node{(lo.x + hi.x) / 2, (lo.y + hi.y) / 2}
	r := superScale * offset * diag / 2
	for _, angle := range [3]float64{90, 210, 330} {
		rad := angle * math.Pi / 180
		nodes = append(nodes, node{centre.x + 2*r*math.Cos(rad), centre.y + 2*r*math.Sin(rad)})
	}
	tris := []triangle{{n, n + 1, n + 2}}

	for step, v := range unique {
		if step%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tris = insert(nodes, tris, v)
	}

	out := &gridkit.PolyData{
		Points:    append([]r3.Vec(nil), points...),
		PointData: gridkit.Fields{},
	}
	if p.Bound {
		for _, s := range nodes[n:] {
			out.Points = append(out.Points, pl.lift(s))
		}
	}
	for _, t := range tris {
		if !p.Bound && (t[0] >= n || t[1] >= n || t[2] >= n) {
			continue
		}
		if p.Alpha > 0 && circumradius(nodes[t[0]], nodes[t[1]], nodes[t[2]]) > p.Alpha {
			continue
		}
		out.Triangles = append(out.Triangles, [3]int(t))
	}
	return out, nil
}

// insert adds node v to the triangulation: every triangle whose circumcircle
// strictly contains v is removed and the cavity is re-triangulated around v.
func insert(nodes []node, tris []triangle, v int) []triangle {
	kept := make([]triangle, 0, len(tris)+2)
	var cavity []triangle
	for _, t := range tris {
		if inCircle(nodes[t[0]], nodes[t[1]], nodes[t[2]], nodes[v]) > 0 {
			cavity = append(cavity, t)
		} else {
			kept = append(kept, t)
		}
	}

	edges := make(map[[2]int]bool, 3*len(cavity))
	for _, t := range cavity {
		for e := 0; e < 3; e++ {
			edges[[2]int{t[e], t[(e+1)%3]}] = true
		}
	}
	// An edge shared by two cavity triangles appears once in each direction.
	for _, t := range cavity {
		for e := 0; e < 3; e++ {
			a, b := t[e], t[(e+1)%3]
			if !edges[[2]int{b, a}] {
				kept = append(kept, triangle{a, b, v})
			}
		}
	}
	return kept
}

// inCircle is positive when d lies strictly inside the circumcircle of the
// counter-clockwise triangle abc.
func inCircle(a, b, c, d node) float64 {
	adx, ady := a.x-d.x, a.y-d.y
	bdx, bdy := b.x-d.x, b.y-d.y
	cdx, cdy := c.x-d.x, c.y-d.y

	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy

	return adx*(bdy*cd-bd*cdy) - ady*(bdx*cd-bd*cdx) + ad*(bdx*cdy-bdy*cdx)
}

func circumradius(a, b, c node) float64 {
	ab := math.Hypot(b.x-a.x, b.y-a.y)
	bc := math.Hypot(c.x-b.x, c.y-b.y)
	ca := math.Hypot(a.x-c.x, a.y-c.y)
	area := math.Abs((b.x-a.x)*(c.y-a.y)-(c.x-a.x)*(b.y-a.y)) / 2
	if area == 0 {
		return math.Inf(1)
	}
	return ab * bc * ca / (4 * area)
}

// mergeNodes returns the indices of the nodes kept after merging every node
// lying within tol of an earlier kept one.
func mergeNodes(nodes []node, tol float64) []int {
	unique := make([]int, 0, len(nodes))
next:
	for i, p := range nodes {
		for _, j := range unique {
			q := nodes[j]
			if math.Abs(p.x-q.x) <= tol && math.Abs(p.y-q.y) <= tol && math.Hypot(p.x-q.x, p.y-q.y) <= tol {
				continue next
			}
		}
		unique = append(unique, i)
	}
	return unique
}

func nodeBounds(nodes []node) (lo, hi node) {
	lo, hi = nodes[0], nodes[0]
	for _, p := range nodes[1:] {
		lo = node{math.Min(lo.x, p.x), math.Min(lo.y, p.y)}
		hi = node{math.Max(hi.x, p.x), math.Max(hi.y, p.y)}
	}
	return lo, hi
}

// plane is an orthonormal frame whose first two axes span the best fitting plane.
type plane struct {
	origin, u, v, normal r3.Vec
}

func (pl plane) project(p r3.Vec) node {
	d := r3.Sub(p, pl.origin)
	return node{r3.Dot(d, pl.u), r3.Dot(d, pl.v)}
}

func (pl plane) lift(n node) r3.Vec {
	return r3.Add(pl.origin, r3.Add(r3.Scale(n.x, pl.u), r3.Scale(n.y, pl.v)))
}

// axisTol is how close the fitted normal must be to a coordinate axis for
// the projection to snap onto that axis' coordinate plane.
const axisTol = 1e-9

// fitPlane finds the plane through the centroid of points minimising the sum
// of squared distances. Its normal is the eigenvector of the covariance
// matrix with the smallest eigenvalue.
func fitPlane(points []r3.Vec) (plane, error) {
	var centroid r3.Vec
	for _, p := range points {
		centroid = r3.Add(centroid, p)
	}
	centroid = r3.Scale(1/float64(len(points)), centroid)

	cov := mat.NewSymDense(3, nil)
	for _, p := range points {
		d := r3.Sub(p, centroid)
		c := [3]float64{d.X, d.Y, d.Z}
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				cov.SetSym(i, j, cov.At(i, j)+c[i]*c[j])
			}
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return plane{}, errors.New("engine: best fitting plane eigen decomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	column := func(j int) r3.Vec {
		return r3.Vec{X: vecs.At(0, j), Y: vecs.At(1, j), Z: vecs.At(2, j)}
	}

	// Eigenvalues come in ascending order.
	normal := r3.Unit(column(0))
	switch {
	case math.Abs(normal.Z) > 1-axisTol:
		return snapped(centroid, r3.Vec{Z: 1}, r3.Vec{X: 1}, r3.Vec{Y: 1}), nil
	case math.Abs(normal.Y) > 1-axisTol:
		return snapped(centroid, r3.Vec{Y: 1}, r3.Vec{Z: 1}, r3.Vec{X: 1}), nil
	case math.Abs(normal.X) > 1-axisTol:
		return snapped(centroid, r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}), nil
	}
	u := r3.Unit(column(2))
	return plane{origin: centroid, u: u, v: r3.Cross(normal, u), normal: normal}, nil
}

// snapped builds a right handed frame (u x v = normal) on a coordinate plane.
// The origin only keeps the
// out of plane coordinate of the centroid so in-plane coordinates are
// projected without rounding.
func snapped(centroid, normal, u, v r3.Vec) plane {
	return plane{
		origin: r3.Scale(r3.Dot(centroid, normal), normal),
		u:      u,
		v:      v,
		normal: normal,
	}
}
