package gridkit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Concatenate joins other onto the end of base along axis and returns a new grid.
//
// The grids must agree on every dimension except the one along axis and must
// carry the same point and cell field names. The last layer of base along axis
// and the first layer of other form the seam: their points must coincide
// within the absolute tolerance, compared component by component and
// inclusively, and every point field must hold identical values on it.
// The seam is kept once in the output; cell fields are appended without
// deduplication. Field data and active scalars are not carried over.
//
// Validation runs to completion before any output is built, so on error
// no partial grid is ever returned. The inputs are never modified.
func Concatenate(base, other *StructuredGrid, axis int, tolerance float64) (*StructuredGrid, error) {
	if axis < 0 || axis > 2 {
		return nil, &AxisError{Axis: axis}
	}
	if math.IsNaN(tolerance) || tolerance < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTolerance, tolerance)
	}
	if err := base.Validate(); err != nil {
		return nil, withRole(err, "base")
	}
	if err := other.Validate(); err != nil {
		return nil, withRole(err, "other")
	}

	bd, od := base.Dimensions, other.Dimensions
	for a := 0; a < 3; a++ {
		if a != axis && bd[a] != od[a] {
			return nil, &DimensionError{Base: bd, Other: od, Axis: axis}
		}
	}

	if !base.PointData.SameNames(other.PointData) {
		return nil, &FieldNameError{
			Association: PointAssociation,
			Base:        base.PointData.Names(),
			Other:       other.PointData.Names(),
		}
	}
	if !base.CellData.SameNames(other.CellData) {
		return nil, &FieldNameError{
			Association: CellAssociation,
			Base:        base.CellData.Names(),
			Other:       other.CellData.Names(),
		}
	}
	if err := sameComponents(PointAssociation, base.PointData, other.PointData); err != nil {
		return nil, err
	}
	if err := sameComponents(CellAssociation, base.CellData, other.CellData); err != nil {
		return nil, err
	}

	baseSeam := bd.Layer(axis, bd[axis]-1)
	otherSeam := od.Layer(axis, 0)
	for n := range baseSeam {
		if !coincident(base.Points[baseSeam[n]], other.Points[otherSeam[n]], tolerance) {
			return nil, &SeamError{Axis: axis, Tolerance: tolerance}
		}
	}
	for _, name := range base.PointData.Names() {
		bf, of := base.PointData[name], other.PointData[name]
		for n := range baseSeam {
			if !equalTuples(bf.Tuple(baseSeam[n]), of.Tuple(otherSeam[n])) {
				return nil, &SeamError{Axis: axis, Tolerance: tolerance, Field: name}
			}
		}
	}

	newDims := bd
	newDims[axis] += od[axis] - 1
	if !newDims.Valid() {
		return nil, &GridError{Role: "joined", Reason: fmt.Sprintf("dimensions %v exceed %d nodes", newDims, MaxNodes)}
	}

	bc, oc := bd.CellDims(), od.CellDims()
	joinedCells := bc
	joinedCells[axis] += oc[axis]
	if len(base.CellData) > 0 && joinedCells != newDims.CellDims() {
		return nil, fmt.Errorf("%w: joining %v and %v cells along axis %d gives %v, dimensions %v need %v",
			ErrCellLayout, bc, oc, axis, joinedCells, newDims, newDims.CellDims())
	}

	_, points := joinLattice(bd, base.Points, od, other.Points, axis, 1, 1)
	joined := &StructuredGrid{
		Dimensions: newDims,
		Points:     points,
		PointData:  make(Fields, len(base.PointData)),
		CellData:   make(Fields, len(base.CellData)),
	}
	for name, bf := range base.PointData {
		_, values := joinLattice(bd, bf.Values, od, other.PointData[name].Values, axis, 1, bf.Components)
		joined.PointData[name] = Field{Components: bf.Components, Values: values}
	}
	for name, bf := range base.CellData {
		_, values := joinLattice(bc, bf.Values, oc, other.CellData[name].Values, axis, 0, bf.Components)
		joined.CellData[name] = Field{Components: bf.Components, Values: values}
	}
	return joined, nil
}

// Concatenate is a method form of the package level Concatenate with g as the base grid.
func (g *StructuredGrid) Concatenate(other *StructuredGrid, axis int, tolerance float64) (*StructuredGrid, error) {
	return Concatenate(g, other, axis, tolerance)
}

func sameComponents(assoc Association, base, other Fields) error {
	for _, name := range base.Names() {
		if b, o := base[name].Components, other[name].Components; b != o {
			return fmt.Errorf("%w: %s field %q has %d components in the base grid and %d in the other",
				ErrFieldComponents, assoc, name, b, o)
		}
	}
	return nil
}

func coincident(p, q r3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(p.X, q.X, tol) &&
		scalar.EqualWithinAbs(p.Y, q.Y, tol) &&
		scalar.EqualWithinAbs(p.Z, q.Z, tol)
}

func equalTuples(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
