package schema

// SectionID names a group of related profile fields.
type SectionID string

// Profile sections, in canonical questionnaire order.
const (
	SectionSkin        SectionID = "skin"
	SectionHair        SectionID = "hair"
	SectionLifestyle   SectionID = "lifestyle"
	SectionHealth      SectionID = "health"
	SectionMakeup      SectionID = "makeup"
	SectionPreferences SectionID = "preferences"
)

// KnownSections returns every section id in canonical order.
func KnownSections() []SectionID {
	return []SectionID{
		SectionSkin,
		SectionHair,
		SectionLifestyle,
		SectionHealth,
		SectionMakeup,
		SectionPreferences,
	}
}

// ParseSection converts a string to a known SectionID.
func ParseSection(s string) (SectionID, bool) {
	for _, id := range KnownSections() {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// KindName is the authored name of a field kind.
type KindName string

const (
	KindSingleSelect KindName = "single_select"
	KindMultiSelect  KindName = "multi_select"
	KindFreeText     KindName = "free_text"
	KindNumeric      KindName = "numeric"
)

// Option is one selectable value of a select field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Kind is the closed set of field kinds.
// Only SingleSelect, MultiSelect, FreeText and Numeric implement it.
type Kind interface {
	Name() KindName
	kind()
}

// SingleSelect is a field answered with exactly one option value.
type SingleSelect struct {
	Options []Option
}

func (SingleSelect) Name() KindName { return KindSingleSelect }
func (SingleSelect) kind()          {}

// MultiSelect is a field answered with a set of option values.
// MinItems and MaxItems are optional; when both are set MinItems <= MaxItems.
type MultiSelect struct {
	Options  []Option
	MinItems *int
	MaxItems *int
}

func (MultiSelect) Name() KindName { return KindMultiSelect }
func (MultiSelect) kind()          {}

// FreeText is a field answered with arbitrary text.
type FreeText struct {
	Multiline bool
}

func (FreeText) Name() KindName { return KindFreeText }
func (FreeText) kind()          {}

// Numeric is a field answered with a number. Bounds are inclusive and optional.
type Numeric struct {
	Min  *float64
	Max  *float64
	Step *float64
	Unit string
}

func (Numeric) Name() KindName { return KindNumeric }
func (Numeric) kind()          {}

// FieldDefinition is the static, immutable description of one profile field.
type FieldDefinition struct {
	Label       string
	Required    bool
	Placeholder string
	Description string
	Kind        Kind
}

// Options returns the selectable options for select kinds, nil otherwise.
func (d FieldDefinition) Options() []Option {
	switch k := d.Kind.(type) {
	case SingleSelect:
		return k.Options
	case MultiSelect:
		return k.Options
	default:
		return nil
	}
}

// Field pairs a field name with its definition.
type Field struct {
	Name string
	Def  FieldDefinition
}

// Section is an ordered group of fields.
type Section struct {
	ID     SectionID
	Label  string
	Fields []Field
}

// Field looks up a field by name.
func (s Section) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Schema is the full, ordered profile declaration.
// A Schema is treated as immutable once built.
type Schema struct {
	Sections []Section
}

// Section looks up a section by id.
func (s *Schema) Section(id SectionID) (Section, bool) {
	if s == nil {
		return Section{}, false
	}
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}

// SectionIDs returns section ids in declaration order.
func (s *Schema) SectionIDs() []SectionID {
	if s == nil {
		return nil
	}
	ids := make([]SectionID, 0, len(s.Sections))
	for _, sec := range s.Sections {
		ids = append(ids, sec.ID)
	}
	return ids
}

// FieldCount returns the number of fields across all sections.
func (s *Schema) FieldCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Fields)
	}
	return n
}

// Int returns a pointer to n, for optional item bounds.
func Int(n int) *int { return &n }

// Float returns a pointer to f, for optional numeric bounds.
func Float(f float64) *float64 { return &f }
