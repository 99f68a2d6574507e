// Package completion measures how much of the schema the shared profile
// holds.
package completion

import (
	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

// Stat is a derived completion figure. It is computed on demand and
// never persisted.
type Stat struct {
	FilledCount int `json:"filled_count" yaml:"filled_count"`
	TotalCount  int `json:"total_count" yaml:"total_count"`
	Percentage  int `json:"percentage" yaml:"percentage"`
}

// Compute counts every (section, field) pair in the schema, required and
// optional alike. A field is filled when the profile holds a non-empty
// value for it; an empty multi-select list does not count.
//
// An empty schema yields Stat{0, 0, 0}.
func Compute(p profile.Reader, s *schema.Schema) Stat {
	var st Stat
	for _, sec := range s.Sections {
		values := p.GetSection(sec.ID)
		for _, f := range sec.Fields {
			st.TotalCount++
			if filled(values[f.Name]) {
				st.FilledCount++
			}
		}
	}
	st.Percentage = percent(st.FilledCount, st.TotalCount)
	return st
}

// Percentage returns Compute(p, s).Percentage.
func Percentage(p profile.Reader, s *schema.Schema) int {
	return Compute(p, s).Percentage
}

// ForSection computes the figure for one section only. Unknown sections
// yield Stat{0, 0, 0}.
func ForSection(p profile.Reader, s *schema.Schema, id schema.SectionID) Stat {
	sec, ok := s.Section(id)
	if !ok {
		return Stat{}
	}
	return Compute(p, &schema.Schema{Sections: []schema.Section{sec}})
}

func filled(v answer.Value) bool {
	return v != nil && !v.IsEmpty()
}

// percent rounds 100*filled/total half up using integer arithmetic.
func percent(filled, total int) int {
	if total == 0 {
		return 0
	}
	return (200*filled + total) / (2 * total)
}
