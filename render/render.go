// Package render rasterises flat structured grids and triangle meshes into
// preview images.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	gridkit "github.com/esimov/gridkit/core"
	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotPlanar is returned for grids which are not flat along any index axis.
var ErrNotPlanar = errors.New("render: grid is not planar")

// ErrUnsupportedFormat is returned by Encode for unknown image extensions.
var ErrUnsupportedFormat = errors.New("render: unsupported image format")

// Options configures a preview.
type Options struct {
	// Size is the length in pixels of the longest canvas side. Defaults to 512.
	Size int
	// Width and Height resize the final image. A zero value keeps the aspect ratio.
	Width, Height int
	// Field names the array used to colour the cells. Empty draws plain cells.
	Field string
	// Wireframe strokes the cell edges.
	Wireframe bool
	// Background, Fill and Line default to white, light grey and black.
	Background, Fill, Line color.Color
	LineWidth             float64
}

const margin = 8

func (o *Options) fillDefaults() {
	if o.Size <= 0 {
		o.Size = 512
	}
	if o.Background == nil {
		o.Background = color.White
	}
	if o.Fill == nil {
		o.Fill = color.RGBA{R: 210, G: 210, B: 210, A: 255}
	}
	if o.Line == nil {
		o.Line = color.Black
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 1
	}
}

// polygon is a cell outline in plane coordinates along with its colour value.
type polygon struct {
	pts   [][2]float64
	value float64
}

// Grid draws a structured grid flat along one of its index axes.
// Cells are coloured by the cell field Options.Field, or by the average of
// the point field of that name over the cell corners.
func Grid(g *gridkit.StructuredGrid, opt Options) (image.Image, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	flat := -1
	for a := 2; a >= 0; a-- {
		if g.Dimensions[a] == 1 {
			flat = a
			break
		}
	}
	if flat < 0 {
		return nil, fmt.Errorf("%w: dimensions %v", ErrNotPlanar, g.Dimensions)
	}

	var (
		f     gridkit.Field
		assoc gridkit.Association
		ok    bool
	)
	if opt.Field != "" {
		f, assoc, ok = g.Field(opt.Field, gridkit.CellAssociation)
		if !ok {
			return nil, fmt.Errorf("render: %w: %q", gridkit.ErrFieldNotFound, opt.Field)
		}
	}

	u, v := dominantAxes(g.Points)
	a1, a2 := 0, 1
	switch flat {
	case 0:
		a1, a2 = 1, 2
	case 1:
		a1, a2 = 0, 2
	}
	d := g.Dimensions
	cells := d.CellDims()

	var polys []polygon
	for q := 0; q+1 < d[a2]; q++ {
		for p := 0; p+1 < d[a1]; p++ {
			var corners [4]int
			for c, off := range [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
				var ijk [3]int
				ijk[a1], ijk[a2] = p+off[0], q+off[1]
				corners[c] = d.Index(ijk[0], ijk[1], ijk[2])
			}
			poly := polygon{value: math.NaN()}
			for _, c := range corners {
				pt := g.Points[c]
				poly.pts = append(poly.pts, [2]float64{coord(pt, u), coord(pt, v)})
			}
			switch {
			case opt.Field == "":
			case assoc == gridkit.CellAssociation:
				var ijk [3]int
				ijk[a1], ijk[a2] = p, q
				poly.value = f.Magnitude(cells.Index(ijk[0], ijk[1], ijk[2]))
			default:
				var sum float64
				for _, c := range corners {
					sum += f.Magnitude(c)
				}
				poly.value = sum / 4
			}
			polys = append(polys, poly)
		}
	}
	return draw(polys, g.Points, u, v, opt), nil
}

// Mesh draws the triangles of m projected on their dominant coordinate plane,
// coloured by the average of the point field Options.Field over each triangle.
func Mesh(m *gridkit.PolyData, opt Options) (image.Image, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	var f gridkit.Field
	if opt.Field != "" {
		var ok bool
		if f, ok = m.PointData[opt.Field]; !ok {
			return nil, fmt.Errorf("render: %w: %q", gridkit.ErrFieldNotFound, opt.Field)
		}
	}

	u, v := dominantAxes(m.Points)
	polys := make([]polygon, 0, len(m.Triangles))
	for _, t := range m.Triangles {
		poly := polygon{value: math.NaN()}
		var sum float64
		for _, c := range t {
			pt := m.Points[c]
			poly.pts = append(poly.pts, [2]float64{coord(pt, u), coord(pt, v)})
			if opt.Field != "" {
				sum += f.Magnitude(c)
			}
		}
		if opt.Field != "" {
			poly.value = sum / 3
		}
		polys = append(polys, poly)
	}
	if opt.Field == "" && !opt.Wireframe {
		opt.Wireframe = true
	}
	return draw(polys, m.Points, u, v, opt), nil
}

// Encode writes img to w as a JPEG or PNG image, chosen from ext.
// An empty extension defaults to JPEG.
func Encode(w io.Writer, img image.Image, ext string) error {
	switch ext {
	case "", ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case ".png":
		return png.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

func draw(polys []polygon, points []r3.Vec, u, v int, opt Options) image.Image {
	opt.fillDefaults()

	lo, hi := gridkit.Bounds(points)
	minU, maxU := coord(lo, u), coord(hi, u)
	minV, maxV := coord(lo, v), coord(hi, v)
	spanU, spanV := maxU-minU, maxV-minV
	span := math.Max(spanU, spanV)
	if span == 0 {
		span = 1
	}
	scale := float64(opt.Size-2*margin) / span
	width := int(math.Ceil(spanU*scale)) + 2*margin
	height := int(math.Ceil(spanV*scale)) + 2*margin

	vmin, vmax := valueRange(polys)

	dc := gg.NewContext(width, height)
	dc.SetColor(opt.Background)
	dc.Clear()
	dc.SetLineWidth(opt.LineWidth)

	for _, poly := range polys {
		for n, pt := range poly.pts {
			x := margin + (pt[0]-minU)*scale
			y := margin + (pt[1]-minV)*scale
			if n == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()

		fill := opt.Fill
		if !math.IsNaN(poly.value) {
			fill = Ramp(normalise(poly.value, vmin, vmax))
		}
		dc.SetFillStyle(gg.NewSolidPattern(fill))
		if opt.Wireframe {
			dc.FillPreserve()
			dc.SetStrokeStyle(gg.NewSolidPattern(opt.Line))
			dc.Stroke()
		} else {
			dc.Fill()
		}
	}

	// The canvas grows downwards, the preview is drawn y-up.
	var img image.Image = imaging.FlipV(dc.Image())
	if opt.Width > 0 || opt.Height > 0 {
		img = imaging.Resize(img, opt.Width, opt.Height, imaging.Lanczos)
	}
	return img
}

// Ramp maps t in [0, 1] onto a blue to red colour scale.
func Ramp(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	stops := [...]color.RGBA{
		{R: 59, G: 76, B: 192, A: 255},
		{R: 221, G: 221, B: 221, A: 255},
		{R: 180, G: 4, B: 38, A: 255},
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	frac := pos - float64(i)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + frac*(float64(b)-float64(a))))
	}
	a, b := stops[i], stops[i+1]
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

func valueRange(polys []polygon) (lo, hi float64) {
	values := make([]float64, 0, len(polys))
	for _, p := range polys {
		if !math.IsNaN(p.value) {
			values = append(values, p.value)
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}

func normalise(x, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	return (x - lo) / (hi - lo)
}

// dominantAxes returns the two coordinate axes with the largest extent,
// in ascending order.
func dominantAxes(points []r3.Vec) (int, int) {
	lo, hi := gridkit.Bounds(points)
	ext := [3]float64{hi.X - lo.X, hi.Y - lo.Y, hi.Z - lo.Z}
	drop := 2
	for a := 1; a >= 0; a-- {
		if ext[a] < ext[drop] {
			drop = a
		}
	}
	switch drop {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	}
	return 0, 1
}

func coord(p r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}
