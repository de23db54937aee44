package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	gridkit "github.com/esimov/gridkit/core"
	"github.com/esimov/gridkit/engine"
	"github.com/esimov/gridkit/pipeline"
	"github.com/esimov/gridkit/render"
	"github.com/esimov/gridkit/utils"
)

const banner = `
┌─┐┬─┐┬┌┬┐┬┌─┬┌┬┐
│ ┬├┬┘│ │├┴┐│ │
└─┘┴└─┴─┴┘┴ ┴┴ ┴

Structured grid toolkit.
    Version: %s

`

const usage = `Usage: gridkit <command> [flags]

Commands:
    concat     join two structured grids along an axis
    subset     extract a volume of interest
    smooth     gaussian smooth a field of a uniform grid
    delaunay   triangulate the points of a dataset
    render     draw a flat grid or a mesh into an image
    run        execute an HCL pipeline file

Run 'gridkit <command> -h' for the command flags.
`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

const (
	// message colors
	successColor = "\x1b[92m"
	errorColor   = "\x1b[31m"
	defaultColor = "\x1b[0m"
)

// Version indicates the current build version.
var Version string

// command is a subcommand: its flags are registered on fs, run is invoked
// once they have been parsed.
type command struct {
	fs      *flag.FlagSet
	message string
	run     func(ctx context.Context, filters *gridkit.Filters) error
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, banner, Version)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmds := map[string]*command{
		"concat":   concatCmd(),
		"subset":   subsetCmd(),
		"smooth":   smoothCmd(),
		"delaunay": delaunayCmd(),
		"render":   renderCmd(),
		"run":      runCmd(),
	}
	cmd, ok := cmds[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, banner, Version)
		fmt.Fprint(os.Stderr, usage)
		log.Fatalf("%sUnknown command: %s%s", errorColor, os.Args[1], defaultColor)
	}

	verbose := cmd.fs.Bool("v", false, "Verbose output")
	progress := cmd.fs.Bool("progress", true, "Show a progress indicator")
	cmd.fs.Usage = func() {
		fmt.Fprintf(os.Stderr, banner, Version)
		cmd.fs.PrintDefaults()
	}
	cmd.fs.Parse(os.Args[2:])

	if *verbose {
		utils.SetLogger(log.Printf)
	} else {
		utils.SetLogger(nil)
	}

	start := time.Now()

	// Progress indicator. Pipelines report progress per step instead.
	ind := utils.NewProgressIndicator(cmd.message, time.Millisecond*100)
	filters := engine.NewFilters(nil)
	spin := *progress && cmd.message != ""
	if *progress && cmd.message == "" {
		filters = engine.NewFilters(ind)
	}
	if spin {
		ind.Begin(cmd.message)
	}

	err := cmd.run(context.Background(), filters)
	if spin {
		ind.End(err)
	}
	if err != nil {
		log.Fatalf("%s%v%s", errorColor, err, defaultColor)
	}
	log.Printf("\nExecution time: %s%.2fs%s\n", successColor, time.Since(start).Seconds(), defaultColor)
}

func concatCmd() *command {
	fs := flag.NewFlagSet("concat", flag.ExitOnError)
	base := fs.String("base", "", "Base grid")
	other := fs.String("other", "", "Grid appended to the base")
	dest := fs.String("out", pipeName, "Destination grid")
	axis := fs.Int("axis", 0, "Concatenation axis: 0|1|2")
	tol := fs.Float64("tol", 0, "Seam point tolerance")

	return &command{
		fs:      fs,
		message: "Concatenating grids...",
		run: func(ctx context.Context, f *gridkit.Filters) error {
			if *base == "" || *other == "" {
				return errors.New("usage: gridkit concat -base a.json -other b.json -axis 0 -out out.json")
			}
			a, err := loadStructured(*base)
			if err != nil {
				return err
			}
			b, err := loadStructured(*other)
			if err != nil {
				return err
			}
			out, err := f.Concatenate(a, b, *axis, *tol)
			if err != nil {
				return err
			}
			return save(*dest, out)
		},
	}
}

func subsetCmd() *command {
	fs := flag.NewFlagSet("subset", flag.ExitOnError)
	source := fs.String("in", pipeName, "Source grid")
	dest := fs.String("out", pipeName, "Destination grid")
	voi := fs.String("voi", "", "Volume of interest: imin,imax,jmin,jmax,kmin,kmax")
	rate := fs.String("rate", "1,1,1", "Sampling rate along each axis")
	boundary := fs.Bool("boundary", false, "Always include the upper bound of the volume of interest")

	return &command{
		fs:      fs,
		message: "Extracting subset...",
		run: func(ctx context.Context, f *gridkit.Filters) error {
			p := gridkit.SubsetParams{Boundary: *boundary}
			if err := parseInts(*voi, p.VOI[:]); err != nil {
				return fmt.Errorf("voi: %w", err)
			}
			if err := parseInts(*rate, p.Rate[:]); err != nil {
				return fmt.Errorf("rate: %w", err)
			}
			ds, err := load(*source)
			if err != nil {
				return err
			}

			var out gridkit.DataSet
			switch g := ds.(type) {
			case *gridkit.StructuredGrid:
				out, err = f.ExtractSubset(ctx, g, p)
			case *gridkit.UniformGrid:
				out, err = f.ExtractUniformSubset(ctx, g, p)
			default:
				err = fmt.Errorf("cannot extract a subset of %T", ds)
			}
			if err != nil {
				return err
			}
			return save(*dest, out)
		},
	}
}

func smoothCmd() *command {
	fs := flag.NewFlagSet("smooth", flag.ExitOnError)
	source := fs.String("in", pipeName, "Source uniform grid")
	dest := fs.String("out", pipeName, "Destination grid")
	scalars := fs.String("scalars", "", "Field to smooth, defaults to the active scalars")
	pref := fs.String("pref", "point", "Field association searched first: point|cell")
	std := fs.String("std", "2", "Standard deviation, one value or one per axis")
	radius := fs.String("radius", "1.5", "Radius factor, one value or one per axis")

	return &command{
		fs:      fs,
		message: "Performing Gaussian Smoothing...",
		run: func(ctx context.Context, f *gridkit.Filters) error {
			assoc, err := gridkit.ParseAssociation(*pref)
			if err != nil {
				return err
			}
			p := gridkit.SmoothParams{Scalars: *scalars, Preference: assoc}
			if p.StdDevs, err = parseTriple(*std); err != nil {
				return fmt.Errorf("std: %w", err)
			}
			if p.RadiusFactors, err = parseTriple(*radius); err != nil {
				return fmt.Errorf("radius: %w", err)
			}
			ds, err := load(*source)
			if err != nil {
				return err
			}
			g, ok := ds.(*gridkit.UniformGrid)
			if !ok {
				return fmt.Errorf("smoothing needs a uniform grid, got %T", ds)
			}
			out, err := f.GaussianSmooth(ctx, g, p)
			if err != nil {
				return err
			}
			return save(*dest, out)
		},
	}
}

func delaunayCmd() *command {
	fs := flag.NewFlagSet("delaunay", flag.ExitOnError)
	source := fs.String("in", pipeName, "Source dataset")
	dest := fs.String("out", pipeName, "Destination mesh")
	tol := fs.Float64("tol", 1e-5, "Merge tolerance as a fraction of the bounding box diagonal")
	alpha := fs.Float64("alpha", 0, "Discard triangles with a larger circumradius, 0 keeps all")
	offset := fs.Float64("offset", 1, "Bounding triangulation scale")
	bound := fs.Bool("bound", false, "Keep the bounding triangulation")

	return &command{
		fs:      fs,
		message: "Computing 2D Triangulation...",
		run: func(ctx context.Context, f *gridkit.Filters) error {
			ds, err := load(*source)
			if err != nil {
				return err
			}
			out, err := f.Delaunay2D(ctx, ds, gridkit.DelaunayParams{
				Tolerance: *tol,
				Alpha:     *alpha,
				Offset:    *offset,
				Bound:     *bound,
			})
			if err != nil {
				return err
			}
			return save(*dest, out)
		},
	}
}

func renderCmd() *command {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	source := fs.String("in", pipeName, "Source grid or mesh")
	dest := fs.String("out", pipeName, "Destination image")
	field := fs.String("field", "", "Field used to colour the cells")
	wire := fs.Bool("wire", false, "Draw the cell edges")
	size := fs.Int("size", 512, "Longest canvas side in pixels")
	width := fs.Int("width", 0, "Resize the image to this width")
	height := fs.Int("height", 0, "Resize the image to this height")

	return &command{
		fs:      fs,
		message: "Rendering preview...",
		run: func(ctx context.Context, f *gridkit.Filters) error {
			ext := utils.Ext(*dest)
			if *dest != pipeName && !utils.InSlice(ext, []string{".jpg", ".jpeg", ".png"}) {
				return fmt.Errorf("output file type not supported: %v", ext)
			}
			ds, err := load(*source)
			if err != nil {
				return err
			}
			opt := render.Options{Size: *size, Width: *width, Height: *height, Field: *field, Wireframe: *wire}

			var img image.Image
			switch g := ds.(type) {
			case *gridkit.StructuredGrid:
				img, err = render.Grid(g, opt)
			case *gridkit.UniformGrid:
				img, err = render.Grid(g.ToStructured(), opt)
			case *gridkit.PolyData:
				img, err = render.Mesh(g, opt)
			default:
				err = fmt.Errorf("cannot render %T", ds)
			}
			if err != nil {
				return err
			}
			return encodeImage(*dest, img)
		},
	}
}

func runCmd() *command {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	file := fs.String("f", "", "Pipeline file")

	return &command{
		fs:      fs,
		// Steps asking for it report their own progress.
		message: "",
		run: func(ctx context.Context, f *gridkit.Filters) error {
			if *file == "" {
				return errors.New("usage: gridkit run -f pipeline.hcl")
			}
			p, err := pipeline.ParseFile(*file)
			if err != nil {
				return err
			}
			r := &pipeline.Runner{Filters: f, Dir: dirOf(*file)}
			_, err = r.Run(ctx, p)
			return err
		},
	}
}
