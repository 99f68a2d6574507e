package engine

import (
	"sync"

	"github.com/roach88/glowprofile/internal/schema"
)

// Outcome describes what processing an event did.
type Outcome string

const (
	OutcomeApplied Outcome = "applied" // state changed
	OutcomeIgnored Outcome = "ignored" // legal call with no effect (jump ahead, retreat at 0)
	OutcomeBlocked Outcome = "blocked" // advance refused by validation
	OutcomeStale   Outcome = "stale"   // timer event superseded by a newer one
)

// TraceEntry records one processed event.
type TraceEntry struct {
	Seq         int64            `json:"seq"`
	RunID       string           `json:"run_id"`
	Section     schema.SectionID `json:"section"`
	Event       string           `json:"event"`
	QuestionID  string           `json:"question_id,omitempty"`
	Outcome     Outcome          `json:"outcome"`
	ActiveIndex int              `json:"active_index"`
	Merged      bool             `json:"merged,omitempty"`
}

// TraceSink receives trace entries from the processing goroutine.
type TraceSink interface {
	Record(TraceEntry)
}

// TraceRecorder is a TraceSink that keeps every entry in memory.
type TraceRecorder struct {
	mu      sync.Mutex
	entries []TraceEntry
}

// Record implements TraceSink.
func (r *TraceRecorder) Record(e TraceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of the recorded entries.
func (r *TraceRecorder) Entries() []TraceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TraceEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Observer receives navigation outcomes, for metrics.
type Observer interface {
	ObserveEvent(section schema.SectionID, event string, outcome Outcome)
}
