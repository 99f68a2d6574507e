package harness

import (
	"github.com/roach88/glowprofile/internal/completion"
	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	RunID string              `json:"run_id"`
	Trace []engine.TraceEntry `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	State      engine.State                         `json:"-"`
	Profile    map[schema.SectionID]profile.Section `json:"-"`
	Completion completion.Stat                      `json:"completion"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []engine.TraceEntry{},
		Errors: []string{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// MergeCount returns how many trace entries merged into the profile.
func (r *Result) MergeCount() int {
	n := 0
	for _, e := range r.Trace {
		if e.Merged {
			n++
		}
	}
	return n
}
