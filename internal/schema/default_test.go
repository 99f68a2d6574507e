package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	s := Default()
	require.NotNil(t, s)
	assert.Empty(t, Validate(s))
}

func TestDefault_SectionsInCanonicalOrder(t *testing.T) {
	assert.Equal(t, KnownSections(), Default().SectionIDs())
}

func TestDefault_SkinLeadsWithRequiredFields(t *testing.T) {
	sec, ok := Default().Section(SectionSkin)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(sec.Fields), 2)

	assert.Equal(t, "skin_type", sec.Fields[0].Name)
	assert.True(t, sec.Fields[0].Def.Required)
	assert.IsType(t, SingleSelect{}, sec.Fields[0].Def.Kind)

	assert.Equal(t, "primary_concerns", sec.Fields[1].Name)
	multi, ok := sec.Fields[1].Def.Kind.(MultiSelect)
	require.True(t, ok)
	assert.Equal(t, 1, *multi.MinItems)
	assert.Equal(t, 5, *multi.MaxItems)
}

func TestDefault_Shared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestFieldDefinition_Options(t *testing.T) {
	opts := []Option{{Value: "a", Label: "A"}}
	assert.Equal(t, opts, FieldDefinition{Kind: SingleSelect{Options: opts}}.Options())
	assert.Equal(t, opts, FieldDefinition{Kind: MultiSelect{Options: opts}}.Options())
	assert.Nil(t, FieldDefinition{Kind: Numeric{}}.Options())
}

func TestParseSection(t *testing.T) {
	id, ok := ParseSection("makeup")
	assert.True(t, ok)
	assert.Equal(t, SectionMakeup, id)

	_, ok = ParseSection("nails")
	assert.False(t, ok)
}
