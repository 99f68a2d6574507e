package question

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glowprofile/internal/schema"
)

func testSchema() *schema.Schema {
	return &schema.Schema{Sections: []schema.Section{
		{
			ID:    schema.SectionSkin,
			Label: "Skin",
			Fields: []schema.Field{
				{Name: "skin_type", Def: schema.FieldDefinition{Label: "Type", Required: true, Kind: schema.SingleSelect{Options: []schema.Option{{Value: "oily", Label: "Oily"}}}}},
				{Name: "notes", Def: schema.FieldDefinition{Label: "Notes", Kind: schema.FreeText{Multiline: true}}},
				{Name: "primary_concerns", Def: schema.FieldDefinition{Label: "Concerns", Required: true, Kind: schema.MultiSelect{
					Options:  []schema.Option{{Value: "acne", Label: "Acne"}},
					MinItems: schema.Int(1),
					MaxItems: schema.Int(5),
				}}},
				{Name: "sensitivity_level", Def: schema.FieldDefinition{Label: "Sensitivity", Kind: schema.Numeric{Min: schema.Float(1), Max: schema.Float(10)}}},
			},
		},
		{
			ID:    schema.SectionLifestyle,
			Label: "Lifestyle",
			Fields: []schema.Field{
				{Name: "sleep_hours", Def: schema.FieldDefinition{Label: "Sleep", Required: true, Kind: schema.Numeric{Min: schema.Float(3), Max: schema.Float(12)}}},
			},
		},
	}}
}

func ids(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestGenerate_OrderAndIDs(t *testing.T) {
	qs, err := Generate(testSchema(), schema.SectionSkin, false)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"skin.skin_type",
		"skin.notes",
		"skin.primary_concerns",
		"skin.sensitivity_level",
	}, ids(qs))
}

func TestGenerate_Deterministic(t *testing.T) {
	s := testSchema()
	first, err := Generate(s, schema.SectionSkin, false)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Generate(s, schema.SectionSkin, false)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerate_OnlyRequiredIsOrderedSubsequence(t *testing.T) {
	s := testSchema()
	all, err := Generate(s, schema.SectionSkin, false)
	require.NoError(t, err)
	required, err := Generate(s, schema.SectionSkin, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"skin.skin_type", "skin.primary_concerns"}, ids(required))

	// subsequence check
	j := 0
	for _, q := range all {
		if j < len(required) && q.ID == required[j].ID {
			j++
		}
	}
	assert.Equal(t, len(required), j)
	for _, q := range required {
		assert.True(t, q.Required)
	}
}

func TestGenerate_UnknownSection(t *testing.T) {
	_, err := Generate(testSchema(), schema.SectionMakeup, false)
	require.Error(t, err)
	assert.True(t, IsUnknownSection(err))
	assert.True(t, IsUnknownSection(fmt.Errorf("wrapped: %w", err)))
	assert.Contains(t, err.Error(), "makeup")
}

func TestGenerate_PresentationTypes(t *testing.T) {
	qs, err := Generate(testSchema(), schema.SectionSkin, false)
	require.NoError(t, err)

	assert.Equal(t, SingleChoice, qs[0].Type)
	assert.Equal(t, FreeText, qs[1].Type)
	assert.True(t, qs[1].Multiline)
	assert.Equal(t, MultiChoice, qs[2].Type)
	assert.Equal(t, 1, *qs[2].MinItems)
	assert.Equal(t, 5, *qs[2].MaxItems)
	assert.Equal(t, ScalarRange, qs[3].Type)
	assert.Equal(t, 10.0, *qs[3].Max)
}

func TestFromField_ScalarRangeConvention(t *testing.T) {
	tests := []struct {
		name string
		want PresentationType
	}{
		{"stress_level", ScalarRange},
		{"activity_intensity", ScalarRange},
		{"level", ScalarRange},
		{"intensity_rating", ScalarRange},
		{"sleep_hours", Numeric},
		{"levelheaded", Numeric},
		{"sealevel", Numeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := FromField(schema.SectionLifestyle, schema.Field{
				Name: tt.name,
				Def:  schema.FieldDefinition{Label: "x", Kind: schema.Numeric{}},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Type)
		})
	}
}

func TestFromField_CopiesConstraints(t *testing.T) {
	opts := []schema.Option{{Value: "a", Label: "A"}}
	maxItems := 2
	f := schema.Field{Name: "f", Def: schema.FieldDefinition{Label: "F", Kind: schema.MultiSelect{Options: opts, MaxItems: &maxItems}}}

	q, err := FromField(schema.SectionHair, f)
	require.NoError(t, err)

	opts[0].Value = "mutated"
	maxItems = 9
	assert.Equal(t, "a", q.Options[0].Value)
	assert.Equal(t, 2, *q.MaxItems)
}

func TestFromField_MissingKind(t *testing.T) {
	_, err := FromField(schema.SectionHair, schema.Field{Name: "f", Def: schema.FieldDefinition{Label: "F"}})
	assert.Error(t, err)
}

func TestGenerateAll(t *testing.T) {
	qs, err := GenerateAll(testSchema(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"skin.skin_type", "skin.primary_concerns", "lifestyle.sleep_hours"}, ids(qs))
}

func TestGenerate_DefaultSchema(t *testing.T) {
	for _, id := range schema.KnownSections() {
		qs, err := Generate(schema.Default(), id, false)
		require.NoError(t, err, id)
		assert.NotEmpty(t, qs, id)
	}

	lifestyle, err := Generate(schema.Default(), schema.SectionLifestyle, true)
	require.NoError(t, err)
	require.Len(t, lifestyle, 2)
	assert.Equal(t, Numeric, lifestyle[0].Type)
	assert.Equal(t, ScalarRange, lifestyle[1].Type)
}
