package gridkit

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// VOI is a volume of interest: the inclusive, 0-offset point index ranges
// (imin, imax, jmin, jmax, kmin, kmax) of a rectangular lattice region.
type VOI [6]int

// Range returns the inclusive index range of the VOI along axis.
func (v VOI) Range(axis int) (lo, hi int) {
	return v[2*axis], v[2*axis+1]
}

// SubsetParams configures a volume of interest extraction.
type SubsetParams struct {
	VOI VOI
	// Rate is the sampling rate along each axis. Zero entries default to 1.
	Rate [3]int
	// Boundary forces the maximum of the VOI along each axis into the output
	// even when the sampling rate steps over it.
	Boundary bool
}

// fillDefaults replaces zero sampling rates with 1.
func (p *SubsetParams) fillDefaults() {
	for a := range p.Rate {
		if p.Rate[a] == 0 {
			p.Rate[a] = 1
		}
	}
}

// Validate checks the sampling rates and the ordering of the VOI bounds.
func (p SubsetParams) Validate() error {
	for a := 0; a < 3; a++ {
		if p.Rate[a] < 1 {
			return fmt.Errorf("%w: got %v", ErrInvalidRate, p.Rate)
		}
		if lo, hi := p.VOI.Range(a); lo > hi {
			return fmt.Errorf("%w: axis %d range [%d, %d]", ErrInvalidVOI, a, lo, hi)
		}
	}
	return nil
}

// SmoothParams configures a Gaussian smoothing pass. The kernel settings are
// used as given, so the zero value smooths nothing; start from
// DefaultSmoothParams for the usual kernel.
type SmoothParams struct {
	// RadiusFactors limits the kernel extent along each axis, in standard deviations.
	RadiusFactors [3]float64
	// StdDevs is the kernel standard deviation along each axis, in lattice units.
	// A zero entry leaves that axis untouched.
	StdDevs [3]float64
	// Scalars names the field to smooth. Empty means the active scalars.
	Scalars string
	// Preference is searched first when looking Scalars up.
	Preference Association
	// Association is where Scalars was found. Filters fills it in before
	// calling the engine.
	Association Association
	ProgressBar bool
}

// DefaultSmoothParams returns the usual settings: a radius factor of 1.5
// and a standard deviation of 2 along every axis.
func DefaultSmoothParams() SmoothParams {
	return SmoothParams{
		RadiusFactors: Uniform3(1.5),
		StdDevs:       Uniform3(2),
	}
}

// Validate checks the kernel parameters are finite and non-negative.
func (p SmoothParams) Validate() error {
	for a := 0; a < 3; a++ {
		for _, v := range [2]float64{p.RadiusFactors[a], p.StdDevs[a]} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: radius factors %v, standard deviations %v",
					ErrInvalidParams, p.RadiusFactors, p.StdDevs)
			}
		}
	}
	return nil
}

// DelaunayParams configures a 2D Delaunay triangulation.
type DelaunayParams struct {
	// Tolerance is the distance, as a fraction of the bounding box diagonal,
	// below which points are merged.
	Tolerance float64
	// Alpha discards triangles whose circumradius exceeds it. Zero keeps every triangle.
	Alpha float64
	// Offset scales the initial bounding triangulation.
	Offset float64
	// Bound keeps the bounding triangulation and its three extra points in the output.
	Bound       bool
	ProgressBar bool
}

// DefaultDelaunayParams returns a tolerance of 1e-5, no alpha filtering and unit offset.
func DefaultDelaunayParams() DelaunayParams {
	return DelaunayParams{Tolerance: 1e-5, Offset: 1}
}

func (p *DelaunayParams) fillDefaults() {
	if p.Offset == 0 {
		p.Offset = 1
	}
}

// Validate checks every numeric parameter is finite and in range.
func (p DelaunayParams) Validate() error {
	for _, v := range [3]float64{p.Tolerance, p.Alpha, p.Offset} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: tolerance %v, alpha %v, offset %v", ErrInvalidParams, p.Tolerance, p.Alpha, p.Offset)
		}
	}
	if p.Offset == 0 {
		return fmt.Errorf("%w: offset must be positive", ErrInvalidParams)
	}
	return nil
}

// Uniform3 repeats v along the three axes.
func Uniform3(v float64) [3]float64 {
	return [3]float64{v, v, v}
}

// SubsetExtractionEngine extracts index-space subregions of lattices.
type SubsetExtractionEngine interface {
	ExtractGrid(ctx context.Context, g *StructuredGrid, p SubsetParams) (*StructuredGrid, error)
	ExtractVOI(ctx context.Context, g *UniformGrid, p SubsetParams) (*UniformGrid, error)
}

// SmoothingEngine convolves a field of a uniform grid with a Gaussian kernel.
type SmoothingEngine interface {
	GaussianSmooth(ctx context.Context, g *UniformGrid, p SmoothParams) (*UniformGrid, error)
}

// TriangulationEngine triangulates a point cloud along its best fitting plane.
type TriangulationEngine interface {
	Delaunay2D(ctx context.Context, points []r3.Vec, p DelaunayParams) (*PolyData, error)
}

// ProgressReporter is notified around long running engine calls.
type ProgressReporter interface {
	Begin(message string)
	End(err error)
}
