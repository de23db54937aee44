package gridkit

import (
	"fmt"
	"math"
)

// Dims holds the number of points along the i, j and k axes of a lattice.
type Dims [3]int

// Len returns the number of lattice nodes.
func (d Dims) Len() int {
	return d[0] * d[1] * d[2]
}

// MaxNodes bounds the number of nodes a lattice may hold.
const MaxNodes = math.MaxInt32

// Valid reports whether every axis holds at least one node and the node
// count does not exceed MaxNodes.
func (d Dims) Valid() bool {
	if d[0] < 1 || d[1] < 1 || d[2] < 1 {
		return false
	}
	return d[1] <= MaxNodes/d[0] && d[2] <= MaxNodes/(d[0]*d[1])
}

// CellDims returns the cell lattice spanned by the points of d.
// A degenerate axis (a single point) still contributes one cell layer.
func (d Dims) CellDims() Dims {
	var c Dims
	for a := range d {
		c[a] = d[a] - 1
		if c[a] < 1 {
			c[a] = 1
		}
	}
	return c
}

// NumCells returns the number of cells spanned by the points of d.
func (d Dims) NumCells() int {
	return d.CellDims().Len()
}

// Strides returns the column-major strides of d: i varies fastest, then j, then k.
func (d Dims) Strides() [3]int {
	return [3]int{1, d[0], d[0] * d[1]}
}

// Index returns the flat column-major position of the node (i, j, k).
func (d Dims) Index(i, j, k int) int {
	return i + d[0]*(j+d[1]*k)
}

// Unravel is the inverse of Index.
func (d Dims) Unravel(idx int) [3]int {
	i := idx % d[0]
	idx /= d[0]
	return [3]int{i, idx % d[1], idx / d[1]}
}

// Contains reports whether (i, j, k) addresses a node of d.
func (d Dims) Contains(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < d[0] && j < d[1] && k < d[2]
}

func (d Dims) String() string {
	return fmt.Sprintf("(%d, %d, %d)", d[0], d[1], d[2])
}

// Layer returns the flat positions of the plane found at pos along axis.
// The positions are listed in column-major order of the two remaining axes.
func (d Dims) Layer(axis, pos int) []int {
	s := d.Strides()
	a1, a2 := crossAxes(axis)

	out := make([]int, 0, d[a1]*d[a2])
	for q := 0; q < d[a2]; q++ {
		for p := 0; p < d[a1]; p++ {
			out = append(out, pos*s[axis]+p*s[a1]+q*s[a2])
		}
	}
	return out
}

// crossAxes returns the two axes perpendicular to axis, in ascending order.
func crossAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// Gather collects the tuples found at the cartesian product of the per-axis
// selections sel from a column-major lattice of width-wide tuples. The result
// is itself column-major with dimensions (len(sel[0]), len(sel[1]), len(sel[2])).
func Gather[T any](d Dims, values []T, width int, sel [3][]int) []T {
	n := len(sel[0]) * len(sel[1]) * len(sel[2])
	out := make([]T, 0, n*width)

	for _, k := range sel[2] {
		for _, j := range sel[1] {
			for _, i := range sel[0] {
				at := d.Index(i, j, k) * width
				out = append(out, values[at:at+width]...)
			}
		}
	}
	return out
}

// joinLattice concatenates two column-major lattices of width-wide tuples
// along axis. The trailing trim layers of a are dropped before b is appended.
// Both lattices must agree on the axes perpendicular to axis.
func joinLattice[T any](a Dims, av []T, b Dims, bv []T, axis, trim, width int) (Dims, []T) {
	keep := a[axis] - trim
	out := a
	out[axis] = keep + b[axis]

	res := make([]T, 0, out.Len()*width)
	var ijk [3]int
	for ijk[2] = 0; ijk[2] < out[2]; ijk[2]++ {
		for ijk[1] = 0; ijk[1] < out[1]; ijk[1]++ {
			for ijk[0] = 0; ijk[0] < out[0]; ijk[0]++ {
				src, dims, pos := av, a, ijk
				if pos[axis] >= keep {
					src, dims = bv, b
					pos[axis] -= keep
				}
				at := dims.Index(pos[0], pos[1], pos[2]) * width
				res = append(res, src[at:at+width]...)
			}
		}
	}
	return out, res
}
