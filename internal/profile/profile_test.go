package profile

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/schema"
)

func TestMemory_GetUnknownSection(t *testing.T) {
	m := NewMemory()
	sec := m.GetSection(schema.SectionHair)
	assert.NotNil(t, sec)
	assert.Empty(t, sec)
}

func TestMemory_MergeIsPartial(t *testing.T) {
	m := NewMemory()
	m.MergeSection(schema.SectionSkin, Section{
		"skin_type": answer.Text("dry"),
		"skin_tone": answer.Text("tan"),
	})
	m.MergeSection(schema.SectionSkin, Section{
		"skin_type":        answer.Text("oily"),
		"primary_concerns": answer.List{"acne"},
	})

	assert.Equal(t, Section{
		"skin_type":        answer.Text("oily"),
		"skin_tone":        answer.Text("tan"),
		"primary_concerns": answer.List{"acne"},
	}, m.GetSection(schema.SectionSkin))
}

func TestMemory_MergeLeavesOtherSectionsUntouched(t *testing.T) {
	m := NewMemory()
	m.MergeSection(schema.SectionHair, Section{"hair_type": answer.Text("curly")})
	m.MergeSection(schema.SectionLifestyle, Section{"sleep_hours": answer.Text("8")})

	before := m.Snapshot()
	m.MergeSection(schema.SectionSkin, Section{"skin_type": answer.Text("oily")})
	after := m.Snapshot()

	assert.Equal(t, before[schema.SectionHair], after[schema.SectionHair])
	assert.Equal(t, before[schema.SectionLifestyle], after[schema.SectionLifestyle])
	assert.Len(t, after, 3)
}

func TestMemory_NilValueRemovesField(t *testing.T) {
	m := NewMemory()
	m.MergeSection(schema.SectionSkin, Section{
		"skin_type": answer.Text("oily"),
		"undertone": answer.Text("warm"),
	})
	m.MergeSection(schema.SectionSkin, Section{"skin_type": nil})

	assert.Equal(t, Section{"undertone": answer.Text("warm")}, m.GetSection(schema.SectionSkin))

	// Removing a field that was never set is a no-op.
	m.MergeSection(schema.SectionHair, Section{"hair_type": nil})
	assert.Empty(t, m.GetSection(schema.SectionHair))
}

func TestMemory_CopiesInAndOut(t *testing.T) {
	m := NewMemory()
	in := answer.List{"acne"}
	m.MergeSection(schema.SectionSkin, Section{"primary_concerns": in})
	in[0] = "mutated"

	got := m.GetSection(schema.SectionSkin)
	assert.Equal(t, answer.List{"acne"}, got["primary_concerns"])

	got["primary_concerns"].(answer.List)[0] = "mutated"
	got["new"] = answer.Text("x")
	assert.Equal(t, Section{"primary_concerns": answer.List{"acne"}}, m.GetSection(schema.SectionSkin))
}

func TestMemory_ConcurrentSections(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for _, id := range schema.KnownSections() {
		wg.Add(1)
		go func(id schema.SectionID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m.MergeSection(id, Section{"f": answer.Text(string(id))})
				_ = m.GetSection(id)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range schema.KnownSections() {
		assert.Equal(t, answer.Text(string(id)), m.GetSection(id)["f"])
	}
}

func TestSection_FieldNames(t *testing.T) {
	s := Section{"b": answer.Text("1"), "a": answer.Text("2")}
	assert.Equal(t, []string{"a", "b"}, s.FieldNames())
}
