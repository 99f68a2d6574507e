// Package question derives presentation-agnostic questions from the schema.
//
// Generation is a pure function of (schema, section, onlyRequired): the same
// inputs always yield the same ordered sequence with the same ids, which is
// what lets a navigation index refer to the same logical question across runs.
package question

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/roach88/glowprofile/internal/schema"
)

// PresentationType is the UI-neutral shape of a question.
type PresentationType string

const (
	SingleChoice PresentationType = "single-choice"
	MultiChoice  PresentationType = "multi-choice"
	FreeText     PresentationType = "free-text"
	Numeric      PresentationType = "numeric"
	ScalarRange  PresentationType = "scalar-range"
)

// Question is one schema field prepared for a questionnaire run.
// It carries a copy of the field's constraints so validation never needs
// to go back to the schema.
type Question struct {
	ID          string           `json:"id"`
	Section     schema.SectionID `json:"section"`
	FieldName   string           `json:"field_name"`
	Label       string           `json:"label"`
	Description string           `json:"description,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Type        PresentationType `json:"type"`
	Required    bool             `json:"required"`
	Options     []schema.Option  `json:"options,omitempty"`
	MinItems    *int             `json:"min_items,omitempty"`
	MaxItems    *int             `json:"max_items,omitempty"`
	Min         *float64         `json:"min,omitempty"`
	Max         *float64         `json:"max,omitempty"`
	Step        *float64         `json:"step,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	Multiline   bool             `json:"multiline,omitempty"`
}

// ID returns the question id for a section field.
func ID(section schema.SectionID, field string) string {
	return string(section) + "." + field
}

// UnknownSectionError is returned when generating for a section the schema
// does not declare.
type UnknownSectionError struct {
	Section schema.SectionID
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown section %q", e.Section)
}

// IsUnknownSection reports whether err is (or wraps) an UnknownSectionError.
func IsUnknownSection(err error) bool {
	var use *UnknownSectionError
	return errors.As(err, &use)
}

// scalarRangeName matches numeric field names that follow the
// level/intensity convention, e.g. stress_level or activity_intensity.
var scalarRangeName = regexp.MustCompile(`(^|_)(level|intensity)($|_)`)

// Generate builds the ordered question sequence for one section.
// With onlyRequired set, only required fields are included; relative order
// is unchanged.
func Generate(s *schema.Schema, section schema.SectionID, onlyRequired bool) ([]Question, error) {
	sec, ok := s.Section(section)
	if !ok {
		return nil, &UnknownSectionError{Section: section}
	}

	qs := make([]Question, 0, len(sec.Fields))
	for _, f := range sec.Fields {
		if onlyRequired && !f.Def.Required {
			continue
		}
		q, err := FromField(section, f)
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, nil
}

// GenerateAll builds the question sequence for every section in schema
// order, concatenated.
func GenerateAll(s *schema.Schema, onlyRequired bool) ([]Question, error) {
	var all []Question
	for _, id := range s.SectionIDs() {
		qs, err := Generate(s, id, onlyRequired)
		if err != nil {
			return nil, err
		}
		all = append(all, qs...)
	}
	return all, nil
}

// FromField maps one field definition to a question.
func FromField(section schema.SectionID, f schema.Field) (Question, error) {
	q := Question{
		ID:          ID(section, f.Name),
		Section:     section,
		FieldName:   f.Name,
		Label:       f.Def.Label,
		Description: f.Def.Description,
		Placeholder: f.Def.Placeholder,
		Required:    f.Def.Required,
	}

	switch k := f.Def.Kind.(type) {
	case schema.SingleSelect:
		q.Type = SingleChoice
		q.Options = cloneOptions(k.Options)

	case schema.MultiSelect:
		q.Type = MultiChoice
		q.Options = cloneOptions(k.Options)
		q.MinItems = cloneInt(k.MinItems)
		q.MaxItems = cloneInt(k.MaxItems)

	case schema.Numeric:
		q.Type = Numeric
		if scalarRangeName.MatchString(f.Name) {
			q.Type = ScalarRange
		}
		q.Min = cloneFloat(k.Min)
		q.Max = cloneFloat(k.Max)
		q.Step = cloneFloat(k.Step)
		q.Unit = k.Unit

	case schema.FreeText:
		q.Type = FreeText
		q.Multiline = k.Multiline

	default:
		return Question{}, fmt.Errorf("field %s: unsupported kind %T", q.ID, f.Def.Kind)
	}

	return q, nil
}

func cloneOptions(opts []schema.Option) []schema.Option {
	if opts == nil {
		return nil
	}
	out := make([]schema.Option, len(opts))
	copy(out, opts)
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return schema.Int(*p)
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return schema.Float(*p)
}
