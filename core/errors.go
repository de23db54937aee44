package gridkit

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches one of them with errors.Is.
var (
	ErrInvalidAxis       = errors.New("concatenation axis must be 0, 1 or 2")
	ErrInvalidTolerance  = errors.New("tolerance must be a non-negative number")
	ErrMalformedGrid     = errors.New("malformed grid")
	ErrDimensionMismatch = errors.New("grid dimensions are not compatible")
	ErrFieldNameMismatch = errors.New("field names differ")
	ErrFieldComponents   = errors.New("field component counts differ")
	ErrSeamMismatch      = errors.New("points are not coincident along the seam")
	ErrSeamFieldMismatch = errors.New("field is not identical along the seam")
	ErrCellLayout        = errors.New("cell lattice does not match the joined dimensions")

	ErrInvalidParams   = errors.New("invalid filter parameters")
	ErrInvalidVOI      = errors.New("volume of interest is empty")
	ErrInvalidRate     = errors.New("sample rate must be at least 1 along every axis")
	ErrNoEngine        = errors.New("no engine configured")
	ErrFieldNotFound   = errors.New("field not found")
	ErrNoActiveScalars = errors.New("dataset has no active scalars")
	ErrTooFewPoints    = errors.New("at least three distinct points are required")
)

// AxisError reports a concatenation axis outside {0, 1, 2}.
type AxisError struct {
	Axis int
}

func (e *AxisError) Error() string {
	return fmt.Sprintf("concatenation axis must be 0, 1 or 2, got %d", e.Axis)
}

func (e *AxisError) Unwrap() error { return ErrInvalidAxis }

// DimensionError reports grids whose dimensions disagree on an axis
// other than the concatenation axis.
type DimensionError struct {
	Base, Other Dims
	Axis        int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("structured grids with dimensions %v and %v are not compatible along axis %d",
		e.Base, e.Other, e.Axis)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// FieldNameError reports differing sets of point or cell field names.
type FieldNameError struct {
	Association Association
	Base, Other []string
}

func (e *FieldNameError) Error() string {
	return fmt.Sprintf("grid to concatenate has different %s array names: %q vs %q",
		e.Association, e.Base, e.Other)
}

func (e *FieldNameError) Unwrap() error { return ErrFieldNameMismatch }

// SeamError reports a seam that cannot be shared. When Field is empty the
// seam points themselves differ by more than Tolerance, otherwise the named
// point field differs along the seam.
type SeamError struct {
	Axis      int
	Tolerance float64
	Field     string
}

func (e *SeamError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("grids cannot be joined along axis %d, as points are not coincident within tolerance of %g",
			e.Axis, e.Tolerance)
	}
	return fmt.Sprintf("grids cannot be joined along axis %d, as field %q is not identical along the seam",
		e.Axis, e.Field)
}

func (e *SeamError) Unwrap() error {
	if e.Field == "" {
		return ErrSeamMismatch
	}
	return ErrSeamFieldMismatch
}

// GridError reports a dataset violating its own invariants.
type GridError struct {
	Role   string
	Reason string
}

func (e *GridError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("malformed grid: %s", e.Reason)
	}
	return fmt.Sprintf("malformed %s grid: %s", e.Role, e.Reason)
}

func (e *GridError) Unwrap() error { return ErrMalformedGrid }

// withRole tags a validation error with the role the grid plays in an operation.
func withRole(err error, role string) error {
	var ge *GridError
	if errors.As(err, &ge) {
		return &GridError{Role: role, Reason: ge.Reason}
	}
	return err
}
