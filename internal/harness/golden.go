package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/glowprofile/internal/answer"
)

// Snapshot captures a scenario's trace, final profile and completion.
// It is serialized as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts the snapshot into plain maps and slices, the
// only shapes answer.MarshalCanonical accepts besides answer values.
func (s Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Result.Trace))
	for i, e := range s.Result.Trace {
		entry := map[string]any{
			"seq":          e.Seq,
			"event":        e.Event,
			"outcome":      string(e.Outcome),
			"active_index": e.ActiveIndex,
		}
		if e.QuestionID != "" {
			entry["question_id"] = e.QuestionID
		}
		if e.Merged {
			entry["merged"] = true
		}
		trace[i] = entry
	}

	prof := make(map[string]any, len(s.Result.Profile))
	for id, sec := range s.Result.Profile {
		fields := make(map[string]any, len(sec))
		for name, v := range sec {
			if v != nil {
				fields[name] = v
			}
		}
		prof[string(id)] = fields
	}

	c := s.Result.Completion
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.Result.RunID,
		"trace":         trace,
		"profile":       prof,
		"completion": map[string]any{
			"filled_count": c.FilledCount,
			"total_count":  c.TotalCount,
			"percentage":   c.Percentage,
		},
	}
}

// MarshalSnapshot returns the canonical JSON form of a scenario result.
func MarshalSnapshot(name string, r *Result) ([]byte, error) {
	return answer.MarshalCanonical(Snapshot{ScenarioName: name, Result: r}.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot be executed. Assertion failures
// and golden mismatches fail t.
func RunWithGolden(t *testing.T, sc *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(sc)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	if err := AssertGolden(t, sc.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, r *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, r)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
