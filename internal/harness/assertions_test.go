package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/completion"
	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []engine.TraceEntry{
		{Seq: 1, Event: "pull", Outcome: engine.OutcomeApplied},
		{Seq: 2, Event: "advance", Outcome: engine.OutcomeBlocked},
		{Seq: 3, Event: "answer", QuestionID: "skin.skin_type", Outcome: engine.OutcomeApplied},
		{Seq: 4, Event: "flush", Outcome: engine.OutcomeApplied, Merged: true},
		{Seq: 5, Event: "advance", Outcome: engine.OutcomeApplied, ActiveIndex: 1},
		{Seq: 6, Event: "close", Outcome: engine.OutcomeApplied, ActiveIndex: 1},
	}
	r.State = engine.State{
		ActiveIndex: 1,
		Closed:      true,
		Answers: map[string]answer.Value{
			"skin.skin_type":        answer.Text("oily"),
			"skin.primary_concerns": answer.List{"acne"},
		},
	}
	r.Profile = map[schema.SectionID]profile.Section{
		schema.SectionSkin: {"skin_type": answer.Text("oily")},
	}
	r.Completion = completion.Stat{FilledCount: 1, TotalCount: 29, Percentage: 3}
	return r
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertActiveIndex, Index: intPtr(1)},
		{Type: AssertAnswer, Question: "skin.skin_type", Value: "oily"},
		{Type: AssertAnswer, Question: "skin.primary_concerns", Value: []any{"acne"}},
		{Type: AssertAnswer, Question: "skin.skin_tone", Absent: true},
		{Type: AssertProfile, Section: "skin", Field: "skin_type", Value: "oily"},
		{Type: AssertProfile, Section: "hair", Field: "hair_type", Absent: true},
		{Type: AssertCompletion, Percentage: intPtr(3)},
		{Type: AssertMergeCount, Count: intPtr(1)},
		{Type: AssertTraceCount, Event: "advance", Count: intPtr(2)},
		{Type: AssertTraceCount, Event: "advance", Outcome: "blocked", Count: intPtr(1)},
		{Type: AssertState, Flag: "closed", Is: boolPtr(true)},
		{Type: AssertState, Flag: "can_complete", Is: boolPtr(false)},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name string
		a    Assertion
		want string
	}{
		{"wrong answer", Assertion{Type: AssertAnswer, Question: "skin.skin_type", Value: "dry"}, `answer skin.skin_type = "dry"`},
		{"list order matters", Assertion{Type: AssertAnswer, Question: "skin.primary_concerns", Value: []any{"aging"}}, `Actual: ["acne"]`},
		{"present but expected absent", Assertion{Type: AssertProfile, Section: "skin", Field: "skin_type", Absent: true}, "profile skin.skin_type absent"},
		{"completion", Assertion{Type: AssertCompletion, Percentage: intPtr(50)}, "3% (1 of 29 fields)"},
		{"merge count", Assertion{Type: AssertMergeCount, Count: intPtr(2)}, "Actual: 1 merges"},
		{"trace count", Assertion{Type: AssertTraceCount, Event: "retreat", Count: intPtr(1)}, "retreat appears 0 times"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.a})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
			assert.Contains(t, errs[0], "assertions[0]")
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertActiveIndex,
		Expected: "2",
		Actual:   "1",
		Trace:    sampleResult().Trace,
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: active_index")
	assert.Contains(t, msg, "[2] advance -> blocked (active 0)")
	assert.Contains(t, msg, "[3] answer skin.skin_type -> applied (active 0)")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
