package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gridkit "github.com/esimov/gridkit/core"
	"github.com/esimov/gridkit/gridio"
	"github.com/esimov/gridkit/render"
	"github.com/esimov/gridkit/utils"
	"golang.org/x/term"
)

// load reads a dataset from path, or from stdin when path is pipeName.
func load(path string) (gridkit.DataSet, error) {
	if path != pipeName {
		if ok, err := utils.IsTextFile(path); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("%s: not a dataset file", path)
		}
		return gridio.Load(path)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("`-` should be used with a pipe for stdin")
	}
	return gridio.Decode(os.Stdin)
}

func loadStructured(path string) (*gridkit.StructuredGrid, error) {
	ds, err := load(path)
	if err != nil {
		return nil, err
	}
	switch g := ds.(type) {
	case *gridkit.StructuredGrid:
		return g, nil
	case *gridkit.UniformGrid:
		return g.ToStructured(), nil
	}
	return nil, fmt.Errorf("%s: expected a structured grid, got %T", path, ds)
}

// save writes ds to path, or to stdout when path is pipeName.
func save(path string, ds gridkit.DataSet) error {
	if path != pipeName {
		return gridio.Save(path, ds)
	}
	dst, err := stdout()
	if err != nil {
		return err
	}
	return gridio.Encode(dst, ds)
}

// encodeImage writes img to path, or as a JPEG image to stdout.
func encodeImage(path string, img image.Image) error {
	if path == pipeName {
		dst, err := stdout()
		if err != nil {
			return err
		}
		return render.Encode(dst, img, "")
	}
	fn, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("unable to open output file: %w", err)
	}
	if err := render.Encode(fn, img, utils.Ext(path)); err != nil {
		fn.Close()
		return err
	}
	return fn.Close()
}

func stdout() (io.Writer, error) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, fmt.Errorf("`-` should be used with a pipe for stdout")
	}
	return os.Stdout, nil
}

// parseInts fills dst from a comma separated list holding exactly len(dst) integers.
func parseInts(s string, dst []int) error {
	parts := strings.Split(s, ",")
	if len(parts) != len(dst) {
		return fmt.Errorf("expected %d comma separated values, got %q", len(dst), s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

// parseTriple parses either one value, repeated along every axis, or three.
func parseTriple(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 1 && len(parts) != 3 {
		return out, fmt.Errorf("expected 1 or 3 comma separated values, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	if len(parts) == 1 {
		out = gridkit.Uniform3(out[0])
	}
	return out, nil
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
