package engine

import (
	"context"
	"fmt"
	"math"

	gridkit "github.com/esimov/gridkit/core"
	"gonum.org/v1/gonum/floats"
)

// Smoother convolves one field of a uniform grid with a separable Gaussian
// kernel, one axis at a time. The zero value is ready to use.
type Smoother struct{}

var _ gridkit.SmoothingEngine = Smoother{}

// GaussianSmooth returns a copy of g in which the field p.Scalars, looked up
// under p.Association, has been smoothed. Every other array is copied as is.
// Cell fields are smoothed over the cell lattice.
func (Smoother) GaussianSmooth(ctx context.Context, g *gridkit.UniformGrid, p gridkit.SmoothParams) (*gridkit.UniformGrid, error) {
	out := g.Clone()

	fields, dims := out.PointData, g.Dimensions
	if p.Association == gridkit.CellAssociation {
		fields, dims = out.CellData, g.Dimensions.CellDims()
	}
	f, ok := fields[p.Scalars]
	if !ok {
		return nil, fmt.Errorf("%w: %s field %q", gridkit.ErrFieldNotFound, p.Association, p.Scalars)
	}

	values := f.Values
	for axis := 0; axis < 3; axis++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		kernel := GaussianKernel(p.StdDevs[axis], p.RadiusFactors[axis])
		if len(kernel) < 2 || dims[axis] < 2 {
			continue
		}
		values = convolveAxis(dims, values, f.Components, axis, kernel)
	}
	fields[p.Scalars] = gridkit.Field{Components: f.Components, Values: values}
	return out, nil
}

// GaussianKernel returns the normalised weights of a Gaussian with the given
// standard deviation, truncated at int(stdDev*radiusFactor) samples on each
// side of the centre. A non-positive deviation or a zero radius yields the
// identity kernel.
func GaussianKernel(stdDev, radiusFactor float64) []float64 {
	radius := int(stdDev * radiusFactor)
	if stdDev <= 0 || radius < 1 {
		return []float64{1}
	}

	kernel := make([]float64, 2*radius+1)
	for x := -radius; x <= radius; x++ {
		kernel[x+radius] = math.Exp(-float64(x*x) / (2 * stdDev * stdDev))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// convolveAxis applies kernel along axis. Near the lattice boundary the kernel
// is truncated and the remaining weights are renormalised.
func convolveAxis(d gridkit.Dims, in []float64, width, axis int, kernel []float64) []float64 {
	radius := len(kernel) / 2
	stride := d.Strides()[axis]
	out := make([]float64, len(in))

	for idx := 0; idx < d.Len(); idx++ {
		pos := d.Unravel(idx)[axis]
		lo, hi := -radius, radius
		if pos+lo < 0 {
			lo = -pos
		}
		if pos+hi > d[axis]-1 {
			hi = d[axis] - 1 - pos
		}
		weights := kernel[lo+radius : hi+radius+1]
		norm := floats.Sum(weights)

		for c := 0; c < width; c++ {
			var sum float64
			for t := lo; t <= hi; t++ {
				sum += kernel[t+radius] * in[(idx+t*stride)*width+c]
			}
			out[idx*width+c] = sum / norm
		}
	}
	return out
}
