package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/schema"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []engine.TraceEntry
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, entry := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", entry.Seq, entry.Event)
		if entry.QuestionID != "" {
			fmt.Fprintf(&buf, " %s", entry.QuestionID)
		}
		fmt.Fprintf(&buf, " -> %s (active %d)\n", entry.Outcome, entry.ActiveIndex)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and
// returns one message per failure.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(r, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertActiveIndex:
		return assertActiveIndex(r, a)
	case AssertAnswer:
		v, ok := r.State.Answers[a.Question]
		return assertValue(r, a, "answer "+a.Question, v, ok)
	case AssertProfile:
		v, ok := r.Profile[schema.SectionID(a.Section)][a.Field]
		return assertValue(r, a, "profile "+a.Section+"."+a.Field, v, ok)
	case AssertCompletion:
		return assertCompletion(r, a)
	case AssertMergeCount:
		return assertMergeCount(r, a)
	case AssertTraceCount:
		return assertTraceCount(r, a)
	case AssertState:
		return assertState(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertActiveIndex(r *Result, a Assertion) error {
	if r.State.ActiveIndex == *a.Index {
		return nil
	}
	return &AssertionError{
		Type:     AssertActiveIndex,
		Expected: fmt.Sprint(*a.Index),
		Actual:   fmt.Sprint(r.State.ActiveIndex),
		Trace:    r.Trace,
	}
}

func assertValue(r *Result, a Assertion, what string, got answer.Value, present bool) error {
	present = present && got != nil
	if a.Absent {
		if !present {
			return nil
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: what + " absent",
			Actual:   describe(got),
			Trace:    r.Trace,
		}
	}

	want, err := answer.FromAny(a.Value)
	if err != nil {
		return fmt.Errorf("%s: expected value: %w", a.Type, err)
	}
	if present && answer.Equal(want, got) {
		return nil
	}
	actual := "absent"
	if present {
		actual = describe(got)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: what + " = " + describe(want),
		Actual:   actual,
		Trace:    r.Trace,
	}
}

func assertCompletion(r *Result, a Assertion) error {
	if r.Completion.Percentage == *a.Percentage {
		return nil
	}
	return &AssertionError{
		Type:     AssertCompletion,
		Expected: fmt.Sprintf("%d%%", *a.Percentage),
		Actual: fmt.Sprintf("%d%% (%d of %d fields)",
			r.Completion.Percentage, r.Completion.FilledCount, r.Completion.TotalCount),
		Trace: r.Trace,
	}
}

func assertMergeCount(r *Result, a Assertion) error {
	n := r.MergeCount()
	if n == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertMergeCount,
		Expected: fmt.Sprintf("%d merges", *a.Count),
		Actual:   fmt.Sprintf("%d merges", n),
		Trace:    r.Trace,
	}
}

// assertTraceCount counts entries for the event, narrowed to one outcome
// when the assertion names one.
func assertTraceCount(r *Result, a Assertion) error {
	n := 0
	for _, e := range r.Trace {
		if e.Event != a.Event {
			continue
		}
		if a.Outcome != "" && string(e.Outcome) != a.Outcome {
			continue
		}
		n++
	}
	if n == *a.Count {
		return nil
	}

	what := a.Event
	if a.Outcome != "" {
		what += ":" + a.Outcome
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s appears %d times", what, *a.Count),
		Actual:   fmt.Sprintf("%s appears %d times", what, n),
		Trace:    r.Trace,
	}
}

func assertState(r *Result, a Assertion) error {
	got := stateFlags[a.Flag](r.State)
	if got == *a.Is {
		return nil
	}
	return &AssertionError{
		Type:     AssertState,
		Expected: fmt.Sprintf("%s = %t", a.Flag, *a.Is),
		Actual:   fmt.Sprintf("%s = %t", a.Flag, got),
		Trace:    r.Trace,
	}
}

func describe(v answer.Value) string {
	switch val := v.(type) {
	case answer.Text:
		return fmt.Sprintf("%q", string(val))
	case answer.List:
		return fmt.Sprintf("%q", []string(val))
	default:
		return "absent"
	}
}
