package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/profilesync"
	"github.com/roach88/glowprofile/internal/question"
	"github.com/roach88/glowprofile/internal/rules"
	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/timer"
)

// State is an immutable snapshot of a run, published after every event.
// Readers must not modify its slices or maps.
type State struct {
	RunID   string
	Section schema.SectionID
	Layout  Layout

	// ActiveIndex is -1 when the run has no questions.
	ActiveIndex      int
	ActiveQuestionID string
	Completed        []string // question ids, in sequence order

	// Terminal is true once the last question is active; presentation
	// code shows its "Complete" affordance from here.
	Terminal    bool
	CanAdvance  bool
	CanComplete bool
	PendingPush bool
	Closed      bool

	Answers map[string]answer.Value
}

// Session is one questionnaire run over one section.
//
// Thread-safety model:
//   - Answer, Toggle, Advance, Retreat, JumpTo, Pull, Close, State: safe
//     from any goroutine
//   - Run or Drain: exactly one goroutine processes events; do not mix them
type Session struct {
	runID     string
	section   schema.SectionID
	questions []question.Question
	index     map[string]int

	layout       Layout
	autoDelay    time.Duration
	debounce     time.Duration
	sched        timer.Scheduler
	runIDs       RunIDGenerator
	clock        *Clock
	trace        TraceSink
	observer     Observer
	syncObserver profilesync.Observer

	// Owned by the processing goroutine.
	answers   *answer.Store
	cleared   map[string]bool // ids cleared in this run and not answered since
	nav       *Navigator
	syncer    *profilesync.Syncer
	autoGen   uint64
	autoTimer timer.Timer
	closed    bool

	queue *eventQueue
	state atomic.Pointer[State]
	done  chan struct{}
}

// Start generates the section's questions from the schema and starts a
// run over them. It fails with question.UnknownSectionError if the
// section is not in the schema.
func Start(
	s *schema.Schema,
	section schema.SectionID,
	onlyRequired bool,
	store profile.Store,
	opts ...Option,
) (*Session, error) {
	qs, err := question.Generate(s, section, onlyRequired)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	return New(section, qs, store, opts...)
}

// New starts a run over questions, which must all belong to section and
// have distinct ids. Prior answers are pulled from store before New
// returns.
func New(
	section schema.SectionID,
	questions []question.Question,
	store profile.Store,
	opts ...Option,
) (*Session, error) {
	s := &Session{
		section:   section,
		questions: make([]question.Question, len(questions)),
		index:     make(map[string]int, len(questions)),
		layout:    LayoutStepped,
		autoDelay: DefaultAutoAdvanceDelay,
		debounce:  profilesync.DefaultDebounce,
		sched:     timer.Real{},
		runIDs:    UUIDv7Generator{},
		answers:   answer.NewStore(),
		cleared:   make(map[string]bool),
		nav:       NewNavigator(len(questions)),
		queue:     newEventQueue(),
		done:      make(chan struct{}),
	}
	copy(s.questions, questions)

	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewClock()
	}
	if _, err := ParseLayout(string(s.layout)); err != nil {
		return nil, err
	}

	for i, q := range s.questions {
		if q.Section != section {
			return nil, fmt.Errorf("question %q belongs to section %q, not %q", q.ID, q.Section, section)
		}
		if _, dup := s.index[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		s.index[q.ID] = i
	}

	s.runID = s.runIDs.Generate()
	s.syncer = profilesync.New(section, store,
		profilesync.WithScheduler(s.sched),
		profilesync.WithDebounce(s.debounce),
		profilesync.WithObserver(s.syncObserver),
		profilesync.WithPoster(func(gen uint64) {
			s.queue.Enqueue(Event{Type: EventFlush, Generation: gen})
		}),
	)

	slog.Info("run started",
		"run_id", s.runID,
		"section", section,
		"questions", len(s.questions),
		"layout", s.layout,
	)

	// Pull before any event can be processed: the first push always
	// follows it.
	s.process(Event{Type: EventPull})

	return s, nil
}

// RunID returns the run's correlation id.
func (s *Session) RunID() string {
	return s.runID
}

// Section returns the run's section.
func (s *Session) Section() schema.SectionID {
	return s.section
}

// Questions returns a copy of the run's question sequence.
func (s *Session) Questions() []question.Question {
	out := make([]question.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// State returns the latest published snapshot.
func (s *Session) State() State {
	return *s.state.Load()
}

// Done is closed once the run has flushed and closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Answer submits an answer for a question. A nil value clears it.
func (s *Session) Answer(questionID string, v answer.Value) error {
	if _, err := s.lookup(questionID); err != nil {
		return err
	}
	return s.submit(Event{Type: EventAnswer, QuestionID: questionID, Value: answer.Clone(v)})
}

// Toggle adds item to a multi-choice answer, or removes it if selected.
func (s *Session) Toggle(questionID, item string) error {
	q, err := s.lookup(questionID)
	if err != nil {
		return err
	}
	if q.Type != question.MultiChoice {
		return &QuestionTypeError{ID: questionID, Type: q.Type, Op: "toggle"}
	}
	return s.submit(Event{Type: EventToggle, QuestionID: questionID, Item: item})
}

// Advance moves to the next question if the active answer is valid.
func (s *Session) Advance() error {
	return s.submit(Event{Type: EventAdvance})
}

// Retreat moves to the previous question.
func (s *Session) Retreat() error {
	return s.submit(Event{Type: EventRetreat})
}

// JumpTo activates a completed question. Other targets are ignored.
func (s *Session) JumpTo(index int) error {
	return s.submit(Event{Type: EventJump, Index: index})
}

// Pull asks for another pull from the shared profile. A run pulls once,
// when it starts, so this never overwrites local answers; it exists for
// presentation code that re-mounts mid-run.
func (s *Session) Pull() error {
	return s.submit(Event{Type: EventPull})
}

// Close flushes any pending push and ends the run.
func (s *Session) Close() error {
	return s.submit(Event{Type: EventClose})
}

func (s *Session) lookup(questionID string) (question.Question, error) {
	i, ok := s.index[questionID]
	if !ok {
		return question.Question{}, &UnknownQuestionError{ID: questionID}
	}
	return s.questions[i], nil
}

func (s *Session) submit(ev Event) error {
	if !s.queue.Enqueue(ev) {
		return ErrRunClosed
	}
	return nil
}

// Run processes events until the run is closed or ctx is cancelled.
// Cancellation closes the run, flushing any pending push, and returns
// ctx.Err().
//
// ERROR HANDLING: events carry no failure path of their own; illegal
// navigation is ignored and invalid answers block advancement. Both are
// visible in the trace and the debug log.
func (s *Session) Run(ctx context.Context) error {
	for {
		if s.closed {
			return nil
		}
		if ev, ok := s.queue.TryDequeue(); ok {
			s.process(ev)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("run stopping: context cancelled", "run_id", s.runID)
			s.process(Event{Type: EventClose})
			return ctx.Err()

		case <-s.queue.Wait():
			// Loop back to TryDequeue.
		}
	}
}

// Drain processes every queued event and returns how many it handled.
// Timer events only appear once their timer fires, so tests with a manual
// scheduler alternate Advance and Drain.
func (s *Session) Drain() int {
	n := 0
	for !s.closed {
		ev, ok := s.queue.TryDequeue()
		if !ok {
			break
		}
		s.process(ev)
		n++
	}
	return n
}

// process handles one event. Called only from the processing goroutine.
func (s *Session) process(ev Event) {
	seq := s.clock.Next()

	var (
		outcome Outcome
		merged  bool
	)
	if s.closed {
		outcome = OutcomeIgnored
	} else {
		switch ev.Type {
		case EventAnswer:
			outcome = s.applyAnswer(ev.QuestionID, ev.Value)
		case EventToggle:
			outcome = s.applyToggle(ev.QuestionID, ev.Item)
		case EventAdvance:
			outcome = s.advance()
		case EventRetreat:
			outcome = s.retreat()
		case EventJump:
			outcome = s.jump(ev.Index)
		case EventAutoAdvance:
			outcome = s.autoAdvance(ev.Index, ev.Generation)
		case EventFlush:
			merged = s.syncer.Fire(ev.Generation)
			outcome = OutcomeApplied
			if !merged {
				outcome = OutcomeStale
			}
		case EventPull:
			outcome = OutcomeIgnored
			if s.syncer.Pull(s.questions, s.answers) {
				outcome = OutcomeApplied
			}
		case EventClose:
			merged = s.shutdown()
			outcome = OutcomeApplied
		default:
			slog.Error("unknown event type", "run_id", s.runID, "type", int(ev.Type))
			outcome = OutcomeIgnored
		}
	}

	slog.Debug("event processed",
		"run_id", s.runID,
		"section", s.section,
		"seq", seq,
		"event", ev.Type.String(),
		"question_id", ev.QuestionID,
		"outcome", outcome,
		"active_index", s.nav.Active(),
	)
	if s.trace != nil {
		s.trace.Record(TraceEntry{
			Seq:         seq,
			RunID:       s.runID,
			Section:     s.section,
			Event:       ev.Type.String(),
			QuestionID:  ev.QuestionID,
			Outcome:     outcome,
			ActiveIndex: s.nav.Active(),
			Merged:      merged,
		})
	}
	if s.observer != nil {
		s.observer.ObserveEvent(s.section, ev.Type.String(), outcome)
	}

	s.publish()
}

func (s *Session) applyAnswer(id string, v answer.Value) Outcome {
	i := s.index[id]
	q := s.questions[i]

	if v == nil {
		s.answers.Delete(id)
		s.cleared[id] = true
	} else {
		v = rules.Normalize(q, v)
		s.answers.Set(id, v)
		delete(s.cleared, id)
	}
	s.schedulePush()

	if v != nil && !v.IsEmpty() {
		s.maybeAutoAdvance(i, q, v)
	}
	return OutcomeApplied
}

func (s *Session) applyToggle(id, item string) Outcome {
	q := s.questions[s.index[id]]
	current, _ := s.answers.Get(id)
	s.answers.Set(id, rules.Toggle(q, current, item))
	delete(s.cleared, id)
	s.schedulePush()
	return OutcomeApplied
}

func (s *Session) schedulePush() {
	s.syncer.Schedule(profilesync.SectionFromAnswers(s.questions, s.answers, s.cleared))
}

// maybeAutoAdvance schedules an advance after a single-choice answer on
// the active question in the stepped layout. Each schedule gets a new
// generation; the event it posts is dropped unless both its generation and
// its index are still current when it is processed.
func (s *Session) maybeAutoAdvance(i int, q question.Question, v answer.Value) {
	if s.layout != LayoutStepped || q.Type != question.SingleChoice {
		return
	}
	if i != s.nav.Active() || s.nav.Terminal() || !rules.IsAnswerValid(q, v) {
		return
	}

	s.cancelAutoAdvance()
	gen := s.autoGen
	s.autoTimer = s.sched.AfterFunc(s.autoDelay, func() {
		s.queue.Enqueue(Event{Type: EventAutoAdvance, Index: i, Generation: gen})
	})
}

// cancelAutoAdvance stops the pending auto-advance timer and invalidates
// any auto-advance event it already posted.
func (s *Session) cancelAutoAdvance() {
	if s.autoTimer != nil {
		s.autoTimer.Stop()
		s.autoTimer = nil
	}
	s.autoGen++
}

func (s *Session) autoAdvance(index int, gen uint64) Outcome {
	if gen != s.autoGen || index != s.nav.Active() {
		return OutcomeStale
	}
	s.autoTimer = nil
	return s.advance()
}

func (s *Session) advance() Outcome {
	if s.nav.Len() == 0 || s.nav.Terminal() {
		return OutcomeIgnored
	}
	if !s.activeValid() {
		return OutcomeBlocked
	}
	s.nav.Advance()
	s.cancelAutoAdvance()
	return OutcomeApplied
}

func (s *Session) retreat() Outcome {
	if !s.nav.Retreat() {
		return OutcomeIgnored
	}
	s.cancelAutoAdvance()
	return OutcomeApplied
}

func (s *Session) jump(index int) Outcome {
	if index == s.nav.Active() || !s.nav.JumpTo(index) {
		return OutcomeIgnored
	}
	s.cancelAutoAdvance()
	return OutcomeApplied
}

// shutdown flushes the pending push and closes the run. It reports
// whether a merge happened.
func (s *Session) shutdown() bool {
	if s.autoTimer != nil {
		s.autoTimer.Stop()
		s.autoTimer = nil
	}
	merged := s.syncer.Flush()
	s.closed = true
	s.queue.Close()
	close(s.done)

	slog.Info("run closed",
		"run_id", s.runID,
		"section", s.section,
		"answered", s.answers.Len(),
		"flushed", merged,
	)
	return merged
}

func (s *Session) activeValid() bool {
	i := s.nav.Active()
	if i < 0 {
		return false
	}
	q := s.questions[i]
	v, _ := s.answers.Get(q.ID)
	return rules.IsAnswerValid(q, v)
}

func (s *Session) publish() {
	st := &State{
		RunID:       s.runID,
		Section:     s.section,
		Layout:      s.layout,
		ActiveIndex: s.nav.Active(),
		Terminal:    s.nav.Terminal(),
		PendingPush: s.syncer.Pending(),
		Closed:      s.closed,
		Answers:     s.answers.Snapshot(),
	}
	if st.ActiveIndex >= 0 {
		st.ActiveQuestionID = s.questions[st.ActiveIndex].ID
	}
	for _, i := range s.nav.Completed() {
		st.Completed = append(st.Completed, s.questions[i].ID)
	}

	if !s.closed {
		st.CanAdvance = s.nav.Len() > 0 && !st.Terminal && s.activeValid()
		sectionValid := rules.IsSectionValid(s.questions, s.answers)
		switch s.layout {
		case LayoutAllAtOnce:
			st.CanComplete = sectionValid
		default:
			st.CanComplete = sectionValid && (st.Terminal || s.nav.Len() == 0)
		}
	}

	s.state.Store(st)
}
