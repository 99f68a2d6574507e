package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/question"
	"github.com/roach88/glowprofile/internal/schema"
)

func multi(minItems, maxItems *int) question.Question {
	return question.Question{
		ID:       "skin.primary_concerns",
		Type:     question.MultiChoice,
		Required: true,
		MinItems: minItems,
		MaxItems: maxItems,
	}
}

func numeric(min, max float64) question.Question {
	return question.Question{
		ID:       "lifestyle.sleep_hours",
		Type:     question.Numeric,
		Required: true,
		Min:      schema.Float(min),
		Max:      schema.Float(max),
	}
}

func TestCheck_OptionalAcceptsAnything(t *testing.T) {
	q := numeric(3, 12)
	q.Required = false

	assert.True(t, IsAnswerValid(q, nil))
	assert.True(t, IsAnswerValid(q, answer.Text("")))
	assert.True(t, IsAnswerValid(q, answer.Text("banana")))
}

func TestCheck_RequiredRejectsMissing(t *testing.T) {
	for _, qt := range []question.PresentationType{
		question.SingleChoice, question.MultiChoice, question.FreeText, question.Numeric, question.ScalarRange,
	} {
		q := question.Question{Type: qt, Required: true}
		assert.Equal(t, Result{Failed: RuleRequired}, Check(q, nil), qt)
		assert.Equal(t, Result{Failed: RuleRequired}, Check(q, answer.Text("  ")), qt)
		assert.Equal(t, Result{Failed: RuleRequired}, Check(q, answer.List{}), qt)
	}
}

func TestCheck_MinItemsGate(t *testing.T) {
	q := multi(schema.Int(1), nil)
	q.Required = true

	assert.False(t, IsAnswerValid(q, answer.List{}))
	assert.True(t, IsAnswerValid(q, answer.List{"acne"}))
}

func TestCheck_MinItemsAboveOne(t *testing.T) {
	q := multi(schema.Int(2), nil)
	assert.Equal(t, Result{Failed: RuleMinItems}, Check(q, answer.List{"acne"}))
	assert.True(t, IsAnswerValid(q, answer.List{"acne", "aging"}))
}

func TestCheck_MaxItems(t *testing.T) {
	q := multi(nil, schema.Int(2))
	assert.Equal(t, Result{Failed: RuleMaxItems}, Check(q, answer.List{"a", "b", "c"}))
}

func TestCheck_NumericBounds(t *testing.T) {
	q := numeric(3, 12)

	tests := []struct {
		in   string
		want Result
	}{
		{"2", Result{Failed: RuleBelowMin}},
		{"13", Result{Failed: RuleAboveMax}},
		{"3", Result{Valid: true}},
		{"12", Result{Valid: true}},
		{"7.5", Result{Valid: true}},
		{" 8 ", Result{Valid: true}},
		{"eight", Result{Failed: RuleNotNumeric}},
		{"NaN", Result{Failed: RuleNotNumeric}},
		{"Inf", Result{Failed: RuleNotNumeric}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(q, answer.Text(tt.in)))
		})
	}
}

func TestCheck_ScalarRangeUsesNumericRules(t *testing.T) {
	q := numeric(1, 10)
	q.Type = question.ScalarRange
	assert.False(t, IsAnswerValid(q, answer.Text("11")))
	assert.True(t, IsAnswerValid(q, answer.Text("10")))
}

func TestCheck_TypeMismatch(t *testing.T) {
	assert.Equal(t, Result{Failed: RuleType}, Check(multi(nil, nil), answer.Text("acne")))
	assert.Equal(t, Result{Failed: RuleType}, Check(numeric(0, 1), answer.List{"1"}))
	assert.Equal(t, Result{Failed: RuleType}, Check(question.Question{Type: question.SingleChoice, Required: true}, answer.List{"oily"}))
}

func TestCheck_FreeTextPresenceOnly(t *testing.T) {
	q := question.Question{Type: question.FreeText, Required: true}
	assert.True(t, IsAnswerValid(q, answer.Text("anything at all <>")))
}

func TestIsSectionValid(t *testing.T) {
	qs := []question.Question{
		{ID: "skin.skin_type", Type: question.SingleChoice, Required: true},
		multi(schema.Int(1), schema.Int(5)),
		{ID: "skin.notes", Type: question.FreeText},
	}

	store := answer.NewStore()
	assert.False(t, IsSectionValid(qs, store))

	store.Set("skin.skin_type", answer.Text("oily"))
	assert.False(t, IsSectionValid(qs, store))

	store.Set("skin.primary_concerns", answer.List{"acne"})
	assert.True(t, IsSectionValid(qs, store), "optional notes may stay unanswered")

	assert.True(t, IsSectionValid(nil, store))
}

func permutations(items []string) [][]string {
	if len(items) <= 1 {
		return [][]string{append([]string(nil), items...)}
	}
	var out [][]string
	for i := range items {
		rest := make([]string, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{items[i]}, p...))
		}
	}
	return out
}

func TestNormalize_SlidingWindow(t *testing.T) {
	q := multi(nil, schema.Int(2))

	for _, order := range permutations([]string{"A", "B", "C"}) {
		var current answer.Value
		for _, item := range order {
			list, _ := current.(answer.List)
			current = Normalize(q, append(append(answer.List{}, list...), item))
		}
		assert.Equal(t, answer.List{order[1], order[2]}, current, "order %v", order)
	}
}

func TestToggle_SlidingWindow(t *testing.T) {
	q := multi(nil, schema.Int(2))

	for _, order := range permutations([]string{"A", "B", "C"}) {
		var current answer.Value
		for _, item := range order {
			current = Toggle(q, current, item)
		}
		assert.Equal(t, answer.List{order[1], order[2]}, current, "order %v", order)
	}
}

func TestToggle_Removes(t *testing.T) {
	q := multi(nil, nil)
	v := Toggle(q, answer.List{"a", "b"}, "a")
	assert.Equal(t, answer.List{"b"}, v)

	v = Toggle(q, v, "b")
	assert.Equal(t, answer.List{}, v)
}

func TestNormalize_Dedupes(t *testing.T) {
	q := multi(nil, schema.Int(3))
	assert.Equal(t, answer.List{"b", "a"}, Normalize(q, answer.List{"a", "b", "a"}))
}

func TestNormalize_ZeroMax(t *testing.T) {
	q := multi(nil, schema.Int(0))
	assert.Equal(t, answer.List{}, Normalize(q, answer.List{"a"}))
}

func TestNormalize_Passthrough(t *testing.T) {
	assert.Equal(t, answer.Text(" oily "), Normalize(question.Question{Type: question.SingleChoice}, answer.Text(" oily ")))
	assert.Equal(t, answer.Text("7"), Normalize(numeric(0, 10), answer.Text(" 7 ")))
	assert.Nil(t, Normalize(numeric(0, 10), nil))
}

func TestNormalize_FreeTextNFC(t *testing.T) {
	q := question.Question{Type: question.FreeText}
	assert.Equal(t, answer.Text("caf\u00e9"), Normalize(q, answer.Text("cafe\u0301")))
}
