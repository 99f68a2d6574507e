package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileFile reads and compiles a CUE schema file.
func CompileFile(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return CompileString(path, string(src))
}

// CompileString compiles CUE source into a Schema.
// The filename is only used for error positions.
func CompileString(filename, src string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return Compile(v)
}

// MustCompile is like CompileString but panics on error.
// Intended for schemas embedded at build time.
func MustCompile(filename, src string) *Schema {
	s, err := CompileString(filename, src)
	if err != nil {
		panic(fmt.Sprintf("schema: compile %s: %v", filename, err))
	}
	return s
}

// Compile converts a CUE value into a Schema.
// Uses the CUE Go API directly; struct field order is declaration order,
// which becomes section and field order.
//
// The value must contain a top-level "section" struct:
//
//	section: <id>: { label: string, fields: <name>: {...} }
//
// Compile only rejects values it cannot represent (missing structs, wrong
// types, unknown kinds). Semantic checks live in Validate.
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sectionsVal := v.LookupPath(cue.ParsePath("section"))
	if !sectionsVal.Exists() {
		return nil, &CompileError{
			Field:   "section",
			Message: "section is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := sectionsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	s := &Schema{}
	for iter.Next() {
		sec, err := compileSection(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		s.Sections = append(s.Sections, sec)
	}

	return s, nil
}

func compileSection(id string, v cue.Value) (Section, error) {
	sec := Section{ID: SectionID(id)}

	label, err := optionalString(v, "label")
	if err != nil {
		return sec, err
	}
	sec.Label = label

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return sec, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return sec, formatCUEError(err)
	}

	for iter.Next() {
		def, err := compileField(id, iter.Label(), iter.Value())
		if err != nil {
			return sec, err
		}
		sec.Fields = append(sec.Fields, Field{Name: iter.Label(), Def: def})
	}

	return sec, nil
}

func compileField(section, name string, v cue.Value) (FieldDefinition, error) {
	var def FieldDefinition
	path := fmt.Sprintf("section.%s.fields.%s", section, name)

	var err error
	if def.Label, err = optionalString(v, "label"); err != nil {
		return def, err
	}
	if def.Placeholder, err = optionalString(v, "placeholder"); err != nil {
		return def, err
	}
	if def.Description, err = optionalString(v, "description"); err != nil {
		return def, err
	}
	if def.Required, err = optionalBool(v, "required"); err != nil {
		return def, err
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return def, &CompileError{
			Field:   path + ".kind",
			Message: "kind is required",
			Pos:     v.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return def, formatCUEError(err)
	}

	switch KindName(kind) {
	case KindSingleSelect:
		opts, err := parseOptions(v)
		if err != nil {
			return def, err
		}
		def.Kind = SingleSelect{Options: opts}

	case KindMultiSelect:
		opts, err := parseOptions(v)
		if err != nil {
			return def, err
		}
		ms := MultiSelect{Options: opts}
		if ms.MinItems, err = optionalInt(v, "min_items"); err != nil {
			return def, err
		}
		if ms.MaxItems, err = optionalInt(v, "max_items"); err != nil {
			return def, err
		}
		def.Kind = ms

	case KindFreeText:
		multiline, err := optionalBool(v, "multiline")
		if err != nil {
			return def, err
		}
		def.Kind = FreeText{Multiline: multiline}

	case KindNumeric:
		var n Numeric
		if n.Min, err = optionalFloat(v, "min"); err != nil {
			return def, err
		}
		if n.Max, err = optionalFloat(v, "max"); err != nil {
			return def, err
		}
		if n.Step, err = optionalFloat(v, "step"); err != nil {
			return def, err
		}
		if n.Unit, err = optionalString(v, "unit"); err != nil {
			return def, err
		}
		def.Kind = n

	default:
		return def, &CompileError{
			Field:   path + ".kind",
			Message: fmt.Sprintf("unknown field kind %q", kind),
			Pos:     kindVal.Pos(),
		}
	}

	return def, nil
}

// parseOptions reads the options list of a select field.
func parseOptions(v cue.Value) ([]Option, error) {
	optsVal := v.LookupPath(cue.ParsePath("options"))
	if !optsVal.Exists() {
		return nil, nil
	}

	iter, err := optsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var opts []Option
	for iter.Next() {
		item := iter.Value()
		value, err := item.LookupPath(cue.ParsePath("value")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		label, err := optionalString(item, "label")
		if err != nil {
			return nil, err
		}
		if label == "" {
			label = value
		}
		opts = append(opts, Option{Value: value, Label: label})
	}

	return opts, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func optionalInt(v cue.Value, field string) (*int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return Int(int(n)), nil
}

func optionalFloat(v cue.Value, field string) (*float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return Float(f), nil
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

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
