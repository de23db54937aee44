package gridkit

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Association tells whether a field is attached to the points or to the cells of a dataset.
type Association int

const (
	PointAssociation Association = iota
	CellAssociation
)

func (a Association) String() string {
	if a == CellAssociation {
		return "cell"
	}
	return "point"
}

// Other returns the opposite association.
func (a Association) Other() Association {
	if a == CellAssociation {
		return PointAssociation
	}
	return CellAssociation
}

// ParseAssociation accepts "point", "points", "cell" and "cells".
// The empty string maps to PointAssociation.
func ParseAssociation(s string) (Association, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "point", "points":
		return PointAssociation, nil
	case "cell", "cells":
		return CellAssociation, nil
	}
	return PointAssociation, fmt.Errorf("%w: unknown association %q", ErrInvalidParams, s)
}

// Field is a named data array attached to every point or every cell of a dataset.
// Values are stored tuple after tuple; a scalar field has one component,
// a vector field three.
type Field struct {
	Components int
	Values     []float64
}

// Scalars builds a single component field.
func Scalars(values ...float64) Field {
	return Field{Components: 1, Values: append([]float64(nil), values...)}
}

// Vectors builds a three component field.
func Vectors(vs ...r3.Vec) Field {
	values := make([]float64, 0, 3*len(vs))
	for _, v := range vs {
		values = append(values, v.X, v.Y, v.Z)
	}
	return Field{Components: 3, Values: values}
}

// Tuples returns the number of tuples held by the field.
func (f Field) Tuples() int {
	if f.Components < 1 {
		return 0
	}
	return len(f.Values) / f.Components
}

// Tuple returns the components of the i-th tuple. The slice aliases the field storage.
func (f Field) Tuple(i int) []float64 {
	return f.Values[i*f.Components : (i+1)*f.Components]
}

// Magnitude returns the scalar value of a one component tuple,
// or the euclidean norm of a wider one.
func (f Field) Magnitude(i int) float64 {
	t := f.Tuple(i)
	if len(t) == 1 {
		return t[0]
	}
	var sum float64
	for _, v := range t {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	return Field{Components: f.Components, Values: append([]float64(nil), f.Values...)}
}

// check verifies the field holds exactly n well formed tuples.
func (f Field) check(n int) error {
	if f.Components < 1 {
		return fmt.Errorf("%d components", f.Components)
	}
	if len(f.Values)%f.Components != 0 {
		return fmt.Errorf("%d values do not split into %d-component tuples", len(f.Values), f.Components)
	}
	if f.Tuples() != n {
		return fmt.Errorf("%d tuples, expected %d", f.Tuples(), n)
	}
	return nil
}

// Fields maps field names to their data.
type Fields map[string]Field

// Names returns the field names in sorted order.
func (fs Fields) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SameNames reports whether fs and other hold the same set of names.
func (fs Fields) SameNames(other Fields) bool {
	if len(fs) != len(other) {
		return false
	}
	for name := range fs {
		if _, ok := other[name]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. A nil receiver yields an empty, non-nil map.
func (fs Fields) Clone() Fields {
	out := make(Fields, len(fs))
	for name, f := range fs {
		out[name] = f.Clone()
	}
	return out
}

// check verifies every field holds n tuples.
func (fs Fields) check(assoc Association, n int) error {
	for _, name := range fs.Names() {
		if err := fs[name].check(n); err != nil {
			return fmt.Errorf("%s field %q: %v", assoc, name, err)
		}
	}
	return nil
}

// lookupField searches the preferred association first, then the other one.
func lookupField(point, cell Fields, name string, pref Association) (Field, Association, bool) {
	order := [2]Association{pref, pref.Other()}
	for _, assoc := range order {
		fs := point
		if assoc == CellAssociation {
			fs = cell
		}
		if f, ok := fs[name]; ok {
			return f, assoc, true
		}
	}
	return Field{}, pref, false
}
