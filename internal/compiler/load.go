package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a chart definition, choosing the decoder by extension:
// .yaml and .yml for YAML, .cue for CUE.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart: %w", err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".cue":
		return LoadCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported chart file extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// LoadYAML decodes a YAML document with a top-level statechart key.
// Unknown keys are rejected.
func LoadYAML(data []byte) (*Definition, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse chart yaml: %w", err)
	}
	return &doc.Statechart, nil
}

// LoadCUE compiles CUE source and decodes its statechart field.
// Uses the CUE Go API directly; filename is used in error positions.
//
//	statechart: {
//		name: "door"
//		root_state: {name: "root", initial: "closed", states: [...]}
//	}
func LoadCUE(src []byte, filename string) (*Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sc := v.LookupPath(cue.ParsePath("statechart"))
	if !sc.Exists() {
		return nil, &CompileError{
			Field:   "statechart",
			Message: "statechart is required",
			Pos:     v.Pos(),
		}
	}
	if err := sc.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var def Definition
	if err := sc.Decode(&def); err != nil {
		return nil, formatCUEError(err)
	}
	keepEmptyChildren(sc.LookupPath(cue.ParsePath("root_state")), &def.Root)
	return &def, nil
}

// keepEmptyChildren sets children keys given as empty lists to non-nil
// empty slices, recursively, so such states compile as composites.
func keepEmptyChildren(v cue.Value, s *StateDef) {
	fields := []struct {
		key  string
		list *[]StateDef
	}{
		{"states", &s.States},
		{"parallel_states", &s.ParallelStates},
	}
	for _, f := range fields {
		lv := v.LookupPath(cue.ParsePath(f.key))
		if lv.Kind() != cue.ListKind {
			continue
		}
		if *f.list == nil {
			*f.list = []StateDef{}
		}
		iter, err := lv.List()
		if err != nil {
			continue
		}
		for i := 0; i < len(*f.list) && iter.Next(); i++ {
			keepEmptyChildren(iter.Value(), &(*f.list)[i])
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
