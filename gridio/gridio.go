// Package gridio reads and writes gridkit datasets as JSON documents.
package gridio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	gridkit "github.com/esimov/gridkit/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// Dataset kinds written in the "type" member of a document.
const (
	TypeStructured = "structured"
	TypeUniform    = "uniform"
	TypePoly       = "poly"
)

// ErrUnknownType is returned for documents, or datasets, of an unsupported kind.
var ErrUnknownType = errors.New("gridio: unknown dataset type")

type field struct {
	Components int       `json:"components"`
	Values     []float64 `json:"values"`
}

type activeScalars struct {
	Name        string `json:"name"`
	Association string `json:"association"`
}

// document is the on-disk layout shared by every dataset kind.
type document struct {
	Type          string           `json:"type"`
	Dimensions    *[3]int          `json:"dimensions,omitempty"`
	Origin        *[3]float64      `json:"origin,omitempty"`
	Spacing       *[3]float64      `json:"spacing,omitempty"`
	Points        [][3]float64     `json:"points,omitempty"`
	Triangles     [][3]int         `json:"triangles,omitempty"`
	PointData     map[string]field `json:"point_data,omitempty"`
	CellData      map[string]field `json:"cell_data,omitempty"`
	FieldData     map[string]field `json:"field_data,omitempty"`
	ActiveScalars *activeScalars   `json:"active_scalars,omitempty"`
}

// Encode writes ds to w as an indented JSON document.
func Encode(w io.Writer, ds gridkit.DataSet) error {
	doc, err := toDocument(ds)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Decode reads a single JSON document from r and validates the resulting dataset.
func Decode(r io.Reader) (gridkit.DataSet, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("gridio: decoding document: %w", err)
	}
	ds, err := fromDocument(&doc)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("gridio: %w", err)
	}
	return ds, nil
}

// Load reads the dataset stored at path.
func Load(path string) (gridkit.DataSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Save writes ds to path, replacing any existing file.
func Save(path string, ds gridkit.DataSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, ds); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadStructured loads path and converts uniform grids to structured ones.
func LoadStructured(path string) (*gridkit.StructuredGrid, error) {
	ds, err := Load(path)
	if err != nil {
		return nil, err
	}
	switch g := ds.(type) {
	case *gridkit.StructuredGrid:
		return g, nil
	case *gridkit.UniformGrid:
		return g.ToStructured(), nil
	}
	return nil, fmt.Errorf("%s: %w: expected a structured grid", path, ErrUnknownType)
}

func toDocument(ds gridkit.DataSet) (*document, error) {
	doc := &document{}
	switch g := ds.(type) {
	case *gridkit.StructuredGrid:
		dims := [3]int(g.Dimensions)
		doc.Type = TypeStructured
		doc.Dimensions = &dims
		doc.Points = fromVecs(g.Points)
		doc.PointData = fromFields(g.PointData)
		doc.CellData = fromFields(g.CellData)
	case *gridkit.UniformGrid:
		dims := [3]int(g.Dimensions)
		origin := [3]float64{g.Origin.X, g.Origin.Y, g.Origin.Z}
		spacing := [3]float64{g.Spacing.X, g.Spacing.Y, g.Spacing.Z}
		doc.Type = TypeUniform
		doc.Dimensions = &dims
		doc.Origin = &origin
		doc.Spacing = &spacing
		doc.PointData = fromFields(g.PointData)
		doc.CellData = fromFields(g.CellData)
	case *gridkit.PolyData:
		doc.Type = TypePoly
		doc.Points = fromVecs(g.Points)
		doc.Triangles = g.Triangles
		doc.PointData = fromFields(g.PointData)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, ds)
	}

	meta := ds.Metadata()
	doc.FieldData = fromFields(meta.FieldData)
	if meta.Active.Name != "" {
		doc.ActiveScalars = &activeScalars{Name: meta.Active.Name, Association: meta.Active.Association.String()}
	}
	return doc, nil
}

func fromDocument(doc *document) (gridkit.DataSet, error) {
	var (
		ds   gridkit.DataSet
		meta *gridkit.Meta
	)
	switch doc.Type {
	case TypeStructured:
		if doc.Dimensions == nil {
			return nil, fmt.Errorf("gridio: %s grid without dimensions", doc.Type)
		}
		g := &gridkit.StructuredGrid{
			Dimensions: gridkit.Dims(*doc.Dimensions),
			Points:     toVecs(doc.Points),
			PointData:  toFields(doc.PointData),
			CellData:   toFields(doc.CellData),
		}
		ds, meta = g, &g.Meta
	case TypeUniform:
		if doc.Dimensions == nil || doc.Spacing == nil {
			return nil, fmt.Errorf("gridio: %s grid without dimensions or spacing", doc.Type)
		}
		g := &gridkit.UniformGrid{
			Dimensions: gridkit.Dims(*doc.Dimensions),
			Spacing:    r3.Vec{X: doc.Spacing[0], Y: doc.Spacing[1], Z: doc.Spacing[2]},
			PointData:  toFields(doc.PointData),
			CellData:   toFields(doc.CellData),
		}
		if doc.Origin != nil {
			g.Origin = r3.Vec{X: doc.Origin[0], Y: doc.Origin[1], Z: doc.Origin[2]}
		}
		ds, meta = g, &g.Meta
	case TypePoly:
		g := &gridkit.PolyData{
			Points:    toVecs(doc.Points),
			Triangles: doc.Triangles,
			PointData: toFields(doc.PointData),
		}
		ds, meta = g, &g.Meta
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, doc.Type)
	}

	meta.FieldData = toFields(doc.FieldData)
	if doc.ActiveScalars != nil {
		assoc, err := gridkit.ParseAssociation(doc.ActiveScalars.Association)
		if err != nil {
			return nil, fmt.Errorf("gridio: active scalars: %w", err)
		}
		meta.Active = gridkit.ActiveScalars{Name: doc.ActiveScalars.Name, Association: assoc}
	}
	return ds, nil
}

func fromVecs(vs []r3.Vec) [][3]float64 {
	out := make([][3]float64, len(vs))
	for i, v := range vs {
		out[i] = [3]float64{v.X, v.Y, v.Z}
	}
	return out
}

func toVecs(ps [][3]float64) []r3.Vec {
	out := make([]r3.Vec, len(ps))
	for i, p := range ps {
		out[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return out
}

func fromFields(fs gridkit.Fields) map[string]field {
	if len(fs) == 0 {
		return nil
	}
	out := make(map[string]field, len(fs))
	for name, f := range fs {
		out[name] = field{Components: f.Components, Values: f.Values}
	}
	return out
}

func toFields(fs map[string]field) gridkit.Fields {
	out := make(gridkit.Fields, len(fs))
	for name, f := range fs {
		if f.Components == 0 {
			f.Components = 1
		}
		out[name] = gridkit.Field{Components: f.Components, Values: f.Values}
	}
	return out
}
