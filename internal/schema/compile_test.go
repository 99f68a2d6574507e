package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const skinOnly = `
section: skin: {
	label: "Skin"
	fields: {
		skin_type: {
			label:    "Skin type"
			kind:     "single_select"
			required: true
			options: [{value: "oily", label: "Oily"}, {value: "dry"}]
		}
		primary_concerns: {
			label:     "Concerns"
			kind:      "multi_select"
			required:  true
			min_items: 1
			max_items: 5
			options: [{value: "acne", label: "Acne"}]
		}
		sensitivity_level: {
			label: "Sensitivity"
			kind:  "numeric"
			min:   1
			max:   10.5
			unit:  "points"
		}
		current_routine: {
			label:     "Routine"
			kind:      "free_text"
			multiline: true
		}
	}
}
`

func TestCompileString_FieldsAndKinds(t *testing.T) {
	s, err := CompileString("skin.cue", skinOnly)
	require.NoError(t, err)
	require.Len(t, s.Sections, 1)

	sec := s.Sections[0]
	assert.Equal(t, SectionSkin, sec.ID)
	assert.Equal(t, "Skin", sec.Label)
	require.Len(t, sec.Fields, 4)

	single, ok := sec.Fields[0].Def.Kind.(SingleSelect)
	require.True(t, ok, "skin_type should be SingleSelect, got %T", sec.Fields[0].Def.Kind)
	assert.True(t, sec.Fields[0].Def.Required)
	assert.Equal(t, []Option{{Value: "oily", Label: "Oily"}, {Value: "dry", Label: "dry"}}, single.Options)

	multi, ok := sec.Fields[1].Def.Kind.(MultiSelect)
	require.True(t, ok)
	require.NotNil(t, multi.MinItems)
	require.NotNil(t, multi.MaxItems)
	assert.Equal(t, 1, *multi.MinItems)
	assert.Equal(t, 5, *multi.MaxItems)

	num, ok := sec.Fields[2].Def.Kind.(Numeric)
	require.True(t, ok)
	assert.False(t, sec.Fields[2].Def.Required)
	assert.Equal(t, 1.0, *num.Min)
	assert.Equal(t, 10.5, *num.Max)
	assert.Nil(t, num.Step)
	assert.Equal(t, "points", num.Unit)

	text, ok := sec.Fields[3].Def.Kind.(FreeText)
	require.True(t, ok)
	assert.True(t, text.Multiline)
}

func TestCompileString_PreservesDeclarationOrder(t *testing.T) {
	src := `
section: {
	makeup: {label: "Makeup", fields: {b: {label: "B", kind: "free_text"}, a: {label: "A", kind: "free_text"}}}
	hair: {label: "Hair", fields: {z: {label: "Z", kind: "free_text"}}}
}
`
	s, err := CompileString("order.cue", src)
	require.NoError(t, err)

	assert.Equal(t, []SectionID{SectionMakeup, SectionHair}, s.SectionIDs())
	sec, ok := s.Section(SectionMakeup)
	require.True(t, ok)
	assert.Equal(t, "b", sec.Fields[0].Name)
	assert.Equal(t, "a", sec.Fields[1].Name)
}

func TestCompileString_MissingSection(t *testing.T) {
	_, err := CompileString("empty.cue", `other: 1`)
	require.Error(t, err)

	var cerr *CompileError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "section", cerr.Field)
}

func TestCompileString_UnknownKind(t *testing.T) {
	src := `section: skin: {label: "Skin", fields: x: {label: "X", kind: "slider"}}`
	_, err := CompileString("kind.cue", src)
	require.Error(t, err)

	var cerr *CompileError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "section.skin.fields.x.kind", cerr.Field)
	assert.Contains(t, cerr.Message, "slider")
}

func TestCompileString_MissingKind(t *testing.T) {
	src := `section: skin: {label: "Skin", fields: x: {label: "X"}}`
	_, err := CompileString("kind.cue", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind is required")
}

func TestCompileString_SyntaxError(t *testing.T) {
	_, err := CompileString("broken.cue", `section: {`)
	require.Error(t, err)
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.cue")
	require.NoError(t, os.WriteFile(path, []byte(skinOnly), 0o644))

	s, err := CompileFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.FieldCount())

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile("bad.cue", `nope: 1`)
	})
}
