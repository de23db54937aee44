package gridkit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ActiveScalars names the field a dataset treats as its default scalars.
type ActiveScalars struct {
	Name        string
	Association Association
}

// Meta holds the dataset-wide information shared by every dataset kind.
type Meta struct {
	// FieldData holds arrays attached to the dataset as a whole.
	FieldData Fields
	Active    ActiveScalars
}

// Metadata gives access to the embedded meta information.
func (m *Meta) Metadata() *Meta { return m }

// inheritMeta copies the active scalars of src, and its field data when m has none.
func (m *Meta) inheritMeta(src *Meta) {
	if src == nil {
		return
	}
	if m.Active.Name == "" {
		m.Active = src.Active
	}
	if len(m.FieldData) == 0 && len(src.FieldData) > 0 {
		m.FieldData = src.FieldData.Clone()
	}
}

// PointSet is anything exposing point coordinates.
type PointSet interface {
	PointCoords() []r3.Vec
}

// DataSet is implemented by StructuredGrid, UniformGrid and PolyData.
type DataSet interface {
	PointSet
	Metadata() *Meta
	NumPoints() int
	NumCells() int
	Validate() error
}

var (
	_ DataSet = (*StructuredGrid)(nil)
	_ DataSet = (*UniformGrid)(nil)
	_ DataSet = (*PolyData)(nil)
)

// StructuredGrid is a curvilinear lattice of points addressed by (i, j, k),
// implicitly connected into hexahedral cells. Points are stored column-major:
// i varies fastest.
type StructuredGrid struct {
	Meta
	Dimensions Dims
	Points     []r3.Vec
	PointData  Fields
	CellData   Fields
}

// NewStructuredGrid builds a grid from its dimensions and column-major points.
// The points are copied.
func NewStructuredGrid(dims Dims, points []r3.Vec) (*StructuredGrid, error) {
	g := &StructuredGrid{
		Dimensions: dims,
		Points:     append([]r3.Vec(nil), points...),
		PointData:  Fields{},
		CellData:   Fields{},
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the lattice invariants: one point per node,
// one tuple per point in every point field and one tuple per cell in every cell field.
func (g *StructuredGrid) Validate() error {
	if g == nil {
		return &GridError{Reason: "nil grid"}
	}
	if !g.Dimensions.Valid() {
		return &GridError{Reason: fmt.Sprintf("dimensions %v must be positive with at most %d nodes", g.Dimensions, MaxNodes)}
	}
	if n := g.Dimensions.Len(); len(g.Points) != n {
		return &GridError{Reason: fmt.Sprintf("%d points for dimensions %v, expected %d", len(g.Points), g.Dimensions, n)}
	}
	if err := g.PointData.check(PointAssociation, g.NumPoints()); err != nil {
		return &GridError{Reason: err.Error()}
	}
	if err := g.CellData.check(CellAssociation, g.NumCells()); err != nil {
		return &GridError{Reason: err.Error()}
	}
	return nil
}

func (g *StructuredGrid) NumPoints() int { return g.Dimensions.Len() }

func (g *StructuredGrid) NumCells() int { return g.Dimensions.NumCells() }

// PointCoords returns the grid points. The slice aliases the grid storage.
func (g *StructuredGrid) PointCoords() []r3.Vec { return g.Points }

// Point returns the point found at node (i, j, k).
func (g *StructuredGrid) Point(i, j, k int) r3.Vec {
	return g.Points[g.Dimensions.Index(i, j, k)]
}

// SetPointField attaches f to the points under name.
func (g *StructuredGrid) SetPointField(name string, f Field) error {
	if g.PointData == nil {
		g.PointData = Fields{}
	}
	return setField(g.PointData, PointAssociation, name, f, g.NumPoints())
}

// SetCellField attaches f to the cells under name.
func (g *StructuredGrid) SetCellField(name string, f Field) error {
	if g.CellData == nil {
		g.CellData = Fields{}
	}
	return setField(g.CellData, CellAssociation, name, f, g.NumCells())
}

// Field looks name up among the point fields, then the cell fields, or the
// other way around when pref is CellAssociation.
func (g *StructuredGrid) Field(name string, pref Association) (Field, Association, bool) {
	return lookupField(g.PointData, g.CellData, name, pref)
}

// Bounds returns the axis aligned bounding box of the points.
func (g *StructuredGrid) Bounds() (lo, hi r3.Vec) {
	return Bounds(g.Points)
}

// Clone returns a deep copy sharing no storage with g.
func (g *StructuredGrid) Clone() *StructuredGrid {
	return &StructuredGrid{
		Meta:       Meta{FieldData: g.FieldData.Clone(), Active: g.Active},
		Dimensions: g.Dimensions,
		Points:     append([]r3.Vec(nil), g.Points...),
		PointData:  g.PointData.Clone(),
		CellData:   g.CellData.Clone(),
	}
}

// UniformGrid is a lattice with constant spacing along each axis.
// Its points are implicit: Origin + (i, j, k) * Spacing.
type UniformGrid struct {
	Meta
	Dimensions Dims
	Origin     r3.Vec
	Spacing    r3.Vec
	PointData  Fields
	CellData   Fields
}

// NewUniformGrid builds an empty uniform grid.
func NewUniformGrid(dims Dims, origin, spacing r3.Vec) (*UniformGrid, error) {
	g := &UniformGrid{
		Dimensions: dims,
		Origin:     origin,
		Spacing:    spacing,
		PointData:  Fields{},
		CellData:   Fields{},
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the dimensions, the spacing and the field sizes.
func (g *UniformGrid) Validate() error {
	if g == nil {
		return &GridError{Reason: "nil grid"}
	}
	if !g.Dimensions.Valid() {
		return &GridError{Reason: fmt.Sprintf("dimensions %v must be positive with at most %d nodes", g.Dimensions, MaxNodes)}
	}
	for _, s := range [3]float64{g.Spacing.X, g.Spacing.Y, g.Spacing.Z} {
		if !(s > 0) || math.IsInf(s, 0) {
			return &GridError{Reason: fmt.Sprintf("spacing %v must be positive and finite", g.Spacing)}
		}
	}
	if err := g.PointData.check(PointAssociation, g.NumPoints()); err != nil {
		return &GridError{Reason: err.Error()}
	}
	if err := g.CellData.check(CellAssociation, g.NumCells()); err != nil {
		return &GridError{Reason: err.Error()}
	}
	return nil
}

func (g *UniformGrid) NumPoints() int { return g.Dimensions.Len() }

func (g *UniformGrid) NumCells() int { return g.Dimensions.NumCells() }

// Point returns the coordinates of node (i, j, k).
func (g *UniformGrid) Point(i, j, k int) r3.Vec {
	return r3.Vec{
		X: g.Origin.X + float64(i)*g.Spacing.X,
		Y: g.Origin.Y + float64(j)*g.Spacing.Y,
		Z: g.Origin.Z + float64(k)*g.Spacing.Z,
	}
}

// PointCoords materialises the implicit points in column-major order.
func (g *UniformGrid) PointCoords() []r3.Vec {
	d := g.Dimensions
	pts := make([]r3.Vec, 0, d.Len())
	for k := 0; k < d[2]; k++ {
		for j := 0; j < d[1]; j++ {
			for i := 0; i < d[0]; i++ {
				pts = append(pts, g.Point(i, j, k))
			}
		}
	}
	return pts
}

// SetPointField attaches f to the points under name.
func (g *UniformGrid) SetPointField(name string, f Field) error {
	if g.PointData == nil {
		g.PointData = Fields{}
	}
	return setField(g.PointData, PointAssociation, name, f, g.NumPoints())
}

// SetCellField attaches f to the cells under name.
func (g *UniformGrid) SetCellField(name string, f Field) error {
	if g.CellData == nil {
		g.CellData = Fields{}
	}
	return setField(g.CellData, CellAssociation, name, f, g.NumCells())
}

// Field looks name up with the given association preference.
func (g *UniformGrid) Field(name string, pref Association) (Field, Association, bool) {
	return lookupField(g.PointData, g.CellData, name, pref)
}

// Clone returns a deep copy sharing no storage with g.
func (g *UniformGrid) Clone() *UniformGrid {
	return &UniformGrid{
		Meta:       Meta{FieldData: g.FieldData.Clone(), Active: g.Active},
		Dimensions: g.Dimensions,
		Origin:     g.Origin,
		Spacing:    g.Spacing,
		PointData:  g.PointData.Clone(),
		CellData:   g.CellData.Clone(),
	}
}

// ToStructured materialises the grid as an equivalent StructuredGrid.
func (g *UniformGrid) ToStructured() *StructuredGrid {
	return &StructuredGrid{
		Meta:       Meta{FieldData: g.FieldData.Clone(), Active: g.Active},
		Dimensions: g.Dimensions,
		Points:     g.PointCoords(),
		PointData:  g.PointData.Clone(),
		CellData:   g.CellData.Clone(),
	}
}

// PolyData is a triangle mesh.
type PolyData struct {
	Meta
	Points    []r3.Vec
	Triangles [][3]int
	PointData Fields
}

// Validate checks that every triangle references existing points
// and that point fields hold one tuple per point.
func (p *PolyData) Validate() error {
	if p == nil {
		return &GridError{Reason: "nil mesh"}
	}
	for n, t := range p.Triangles {
		for _, v := range t {
			if v < 0 || v >= len(p.Points) {
				return &GridError{Reason: fmt.Sprintf("triangle %d references point %d of %d", n, v, len(p.Points))}
			}
		}
	}
	if err := p.PointData.check(PointAssociation, len(p.Points)); err != nil {
		return &GridError{Reason: err.Error()}
	}
	return nil
}

func (p *PolyData) NumPoints() int { return len(p.Points) }

func (p *PolyData) NumCells() int { return len(p.Triangles) }

func (p *PolyData) PointCoords() []r3.Vec { return p.Points }

func setField(fs Fields, assoc Association, name string, f Field, n int) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s field name", ErrInvalidParams, assoc)
	}
	if err := f.check(n); err != nil {
		return fmt.Errorf("%w: %s field %q: %v", ErrInvalidParams, assoc, name, err)
	}
	fs[name] = f.Clone()
	return nil
}

// Bounds returns the axis aligned bounding box of pts.
func Bounds(pts []r3.Vec) (lo, hi r3.Vec) {
	if len(pts) == 0 {
		return lo, hi
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}
