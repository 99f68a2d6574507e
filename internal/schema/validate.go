package schema

import (
	"fmt"
	"strings"
)

// Validation error codes (E101-E110)
const (
	ErrSectionEmpty      = "E101" // section declares no fields
	ErrDuplicateOption   = "E102" // option value repeated within a field
	ErrNoOptions         = "E103" // select field without options
	ErrItemBoundsOrder   = "E104" // min_items > max_items
	ErrNumericBoundOrder = "E105" // min > max
	ErrNegativeItemBound = "E106" // min_items or max_items below zero
	ErrMissingKind       = "E107" // field has no kind
	ErrUnknownSection    = "E108" // section id is not a known profile section
	ErrEmptyLabel        = "E109" // field or section label is empty
	ErrDuplicateSection  = "E110" // section declared twice
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a schema against the structural invariants of field
// definitions. Returns all errors found (does not fail-fast).
func Validate(s *Schema) []ValidationError {
	var errs []ValidationError
	if s == nil {
		return errs
	}

	seen := make(map[SectionID]bool, len(s.Sections))
	for _, sec := range s.Sections {
		path := "section." + string(sec.ID)

		if _, ok := ParseSection(string(sec.ID)); !ok {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("unknown section %q", sec.ID),
				Code:    ErrUnknownSection,
			})
		}
		if seen[sec.ID] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate section %q", sec.ID),
				Code:    ErrDuplicateSection,
			})
		}
		seen[sec.ID] = true

		if strings.TrimSpace(sec.Label) == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".label",
				Message: "label is required and must be non-empty",
				Code:    ErrEmptyLabel,
			})
		}
		if len(sec.Fields) == 0 {
			errs = append(errs, ValidationError{
				Field:   path + ".fields",
				Message: "at least one field is required",
				Code:    ErrSectionEmpty,
			})
		}

		for _, f := range sec.Fields {
			errs = append(errs, validateField(path+".fields."+f.Name, f.Def)...)
		}
	}

	return errs
}

func validateField(path string, def FieldDefinition) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(def.Label) == "" {
		errs = append(errs, ValidationError{
			Field:   path + ".label",
			Message: "label is required and must be non-empty",
			Code:    ErrEmptyLabel,
		})
	}

	switch k := def.Kind.(type) {
	case SingleSelect:
		errs = append(errs, validateOptions(path, k.Options)...)

	case MultiSelect:
		errs = append(errs, validateOptions(path, k.Options)...)
		if k.MinItems != nil && *k.MinItems < 0 {
			errs = append(errs, ValidationError{
				Field:   path + ".min_items",
				Message: fmt.Sprintf("min_items must be >= 0, got %d", *k.MinItems),
				Code:    ErrNegativeItemBound,
			})
		}
		if k.MaxItems != nil && *k.MaxItems < 0 {
			errs = append(errs, ValidationError{
				Field:   path + ".max_items",
				Message: fmt.Sprintf("max_items must be >= 0, got %d", *k.MaxItems),
				Code:    ErrNegativeItemBound,
			})
		}
		if k.MinItems != nil && k.MaxItems != nil && *k.MinItems > *k.MaxItems {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("min_items (%d) exceeds max_items (%d)", *k.MinItems, *k.MaxItems),
				Code:    ErrItemBoundsOrder,
			})
		}

	case Numeric:
		if k.Min != nil && k.Max != nil && *k.Min > *k.Max {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("min (%g) exceeds max (%g)", *k.Min, *k.Max),
				Code:    ErrNumericBoundOrder,
			})
		}

	case FreeText:
		// no constraints

	default:
		errs = append(errs, ValidationError{
			Field:   path + ".kind",
			Message: "kind is required",
			Code:    ErrMissingKind,
		})
	}

	return errs
}

func validateOptions(path string, opts []Option) []ValidationError {
	var errs []ValidationError

	if len(opts) == 0 {
		errs = append(errs, ValidationError{
			Field:   path + ".options",
			Message: "select fields require at least one option",
			Code:    ErrNoOptions,
		})
		return errs
	}

	seen := make(map[string]bool, len(opts))
	for i, opt := range opts {
		if seen[opt.Value] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.options[%d]", path, i),
				Message: fmt.Sprintf("duplicate option value %q", opt.Value),
				Code:    ErrDuplicateOption,
			})
		}
		seen[opt.Value] = true
	}

	return errs
}
