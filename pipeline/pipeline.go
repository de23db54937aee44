// Package pipeline decodes and runs HCL files describing a sequence of
// dataset operations, for example:
//
//	step "grid" {
//	  op   = "load"
//	  path = "grid.json"
//	}
//
//	step "left" {
//	  op     = "subset"
//	  source = "grid"
//	  voi    = [0, 2, 0, 4, 0, 0]
//	}
//
//	step "joined" {
//	  op     = "concatenate"
//	  inputs = ["left", "right"]
//	  axis   = 0
//	}
//
// Steps run in the order they are declared and may only reference the
// steps declared before them.
package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ErrInvalidStep is returned for steps which cannot be run.
var ErrInvalidStep = errors.New("pipeline: invalid step")

// Operations understood by the runner.
const (
	OpLoad         = "load"
	OpSave         = "save"
	OpSubset       = "subset"
	OpSmooth       = "smooth"
	OpConcatenate  = "concatenate"
	OpDelaunay     = "delaunay"
	OpRender       = "render"
	OpToStructured = "to_structured"
)

// File is the top level structure of a pipeline file.
type File struct {
	Steps []*Step `hcl:"step,block"`
}

// Step is a single `step "<name>"` block. Which attributes apply depends on Op.
type Step struct {
	Name string `hcl:"name,label"`
	Op   string `hcl:"op"`

	// Source names the step whose output feeds this one.
	Source string `hcl:"source,optional"`
	// Inputs names the two grids joined by a concatenate step.
	Inputs []string `hcl:"inputs,optional"`
	Path   string   `hcl:"path,optional"`

	VOI      []int `hcl:"voi,optional"`
	Rate     []int `hcl:"rate,optional"`
	Boundary bool  `hcl:"boundary,optional"`

	Axis      *int     `hcl:"axis,optional"`
	Tolerance *float64 `hcl:"tolerance,optional"`

	StdDevs       []float64 `hcl:"std_devs,optional"`
	RadiusFactors []float64 `hcl:"radius_factors,optional"`
	Scalars       string    `hcl:"scalars,optional"`
	Preference    string    `hcl:"preference,optional"`

	Alpha  float64 `hcl:"alpha,optional"`
	Offset float64 `hcl:"offset,optional"`
	Bound  bool    `hcl:"bound,optional"`

	Field     string `hcl:"field,optional"`
	Wireframe bool   `hcl:"wireframe,optional"`
	Width     int    `hcl:"width,optional"`
	Height    int    `hcl:"height,optional"`

	Progress bool `hcl:"progress,optional"`
}

// Parse decodes the pipeline held in src. The filename is only used in
// diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse pipeline %s: %s", filename, diags.Error())
	}

	var f File
	diags = gohcl.DecodeBody(file.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode pipeline %s: %s", filename, diags.Error())
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseFile reads and decodes the pipeline found at path.
func ParseFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(src, path)
}

// Validate checks the step names are unique, every op is known and every
// reference points to an earlier step.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Steps))
	for _, s := range f.Steps {
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate step %q", ErrInvalidStep, s.Name)
		}
		if err := s.validate(seen); err != nil {
			return err
		}
		seen[s.Name] = true
	}
	return nil
}

func (s *Step) validate(declared map[string]bool) error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: step %q (%s): %s", ErrInvalidStep, s.Name, s.Op, fmt.Sprintf(format, args...))
	}
	ref := func(name string) error {
		if name == "" {
			return fail("missing source")
		}
		if !declared[name] {
			return fail("unknown step %q", name)
		}
		return nil
	}

	switch s.Op {
	case OpLoad:
		if s.Path == "" {
			return fail("missing path")
		}
		return nil
	case OpSave, OpRender:
		if s.Path == "" {
			return fail("missing path")
		}
		return ref(s.Source)
	case OpSubset:
		if len(s.VOI) != 6 {
			return fail("voi needs 6 indices, got %d", len(s.VOI))
		}
		if len(s.Rate) != 0 && len(s.Rate) != 3 {
			return fail("rate needs 3 values, got %d", len(s.Rate))
		}
		return ref(s.Source)
	case OpSmooth:
		if n := len(s.StdDevs); n != 0 && n != 1 && n != 3 {
			return fail("std_devs needs 1 or 3 values, got %d", n)
		}
		if n := len(s.RadiusFactors); n != 0 && n != 1 && n != 3 {
			return fail("radius_factors needs 1 or 3 values, got %d", n)
		}
		return ref(s.Source)
	case OpDelaunay, OpToStructured:
		return ref(s.Source)
	case OpConcatenate:
		if len(s.Inputs) != 2 {
			return fail("inputs needs 2 steps, got %d", len(s.Inputs))
		}
		if s.Axis == nil {
			return fail("missing axis")
		}
		for _, in := range s.Inputs {
			if err := ref(in); err != nil {
				return err
			}
		}
		return nil
	}
	return fail("unknown op")
}
