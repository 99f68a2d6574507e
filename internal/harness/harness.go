package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/completion"
	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/testutil"
)

// Harness executes one scenario.
type Harness struct {
	schema  *schema.Schema
	store   *profile.Memory
	sched   *testutil.ManualScheduler
	trace   *engine.TraceRecorder
	session *engine.Session
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory profile. Execution flow:
//  1. Load the schema and seed the profile
//  2. Start the run (which pulls from the profile)
//  3. Execute steps, draining the event queue after each
//  4. Evaluate assertions against the final state
//
// A returned error means the scenario could not be executed; assertion
// failures are reported in the Result instead.
func Run(sc *Scenario) (*Result, error) {
	s := schema.Default()
	if sc.Schema != "" {
		var err error
		if s, err = schema.CompileFile(sc.Schema); err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
	}

	store, err := seedProfile(sc.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to seed profile: %w", err)
	}

	layout, err := engine.ParseLayout(sc.Layout)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		schema: s,
		store:  store,
		sched:  testutil.NewManualScheduler(),
		trace:  &engine.TraceRecorder{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	h.session, err = engine.Start(s, schema.SectionID(sc.Section), sc.OnlyRequired, store,
		engine.WithLayout(layout),
		engine.WithScheduler(h.sched),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(sc.RunID)),
		engine.WithClock(engine.NewClock()),
		engine.WithTrace(h.trace),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	for i, step := range sc.Steps {
		if err := Apply(h.session, step, h.wait); err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
		}
		n := h.session.Drain()
		h.logger.Info("step executed", "step", i, "op", step.Op, "events", n)
	}

	result := NewResult()
	result.RunID = h.session.RunID()
	result.Trace = h.trace.Entries()
	result.State = h.session.State()
	result.Profile = store.Snapshot()
	result.Completion = completion.Compute(store, s)

	for _, msg := range EvaluateAssertions(result, sc.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// Apply performs one step against a run. Wait steps call wait with the
// parsed duration; the harness advances its manual scheduler, while the
// CLI sleeps.
func Apply(s *engine.Session, step Step, wait func(time.Duration) error) error {
	switch step.Op {
	case OpAnswer:
		v, err := answer.FromAny(step.Value)
		if err != nil {
			return err
		}
		return s.Answer(step.Question, v)
	case OpClear:
		return s.Answer(step.Question, nil)
	case OpToggle:
		return s.Toggle(step.Question, step.Item)
	case OpAdvance:
		return s.Advance()
	case OpRetreat:
		return s.Retreat()
	case OpJump:
		return s.JumpTo(step.Index)
	case OpPull:
		return s.Pull()
	case OpClose:
		return s.Close()
	case OpWait:
		d, err := step.Wait()
		if err != nil {
			return err
		}
		return wait(d)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func (h *Harness) wait(d time.Duration) error {
	h.sched.Advance(d)
	return nil
}

func seedProfile(seed map[string]map[string]any) (*profile.Memory, error) {
	store := profile.NewMemory()
	for section, fields := range seed {
		partial := make(profile.Section, len(fields))
		for name, raw := range fields {
			v, err := answer.FromAny(raw)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", section, name, err)
			}
			partial[name] = v
		}
		store.MergeSection(schema.SectionID(section), partial)
	}
	return store, nil
}
