// Package profilesync bridges one questionnaire run's answers and the shared
// profile.
//
// Data flows one way per operation. Pull copies the shared section into the
// run's answer store, at most once per run. Push collects local changes and
// merges them into the shared section after a quiet period. Pull is never
// triggered by a push; the only input to Pull is the start of a run.
//
// A Syncer is not safe for concurrent use. It is owned by the goroutine
// that processes a run's events; the debounce timer only posts a
// generation number back to that goroutine (see WithPoster).
package profilesync

import (
	"log/slog"
	"time"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/question"
	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/timer"
)

// DefaultDebounce is the quiet period before a pending push is merged.
const DefaultDebounce = 100 * time.Millisecond

// Cause records why a merge happened.
type Cause string

const (
	// CauseDebounce is a merge fired by the debounce timer.
	CauseDebounce Cause = "debounce"
	// CauseFlush is a merge forced by Flush (run closed or section left).
	CauseFlush Cause = "flush"
)

// Observer receives synchronizer events. Implementations must not call
// back into the Syncer.
type Observer interface {
	ObservePull(section schema.SectionID, restored int)
	ObserveMerge(section schema.SectionID, fields, writes int, cause Cause)
}

// NopObserver ignores every event.
type NopObserver struct{}

// ObservePull implements Observer.
func (NopObserver) ObservePull(schema.SectionID, int) {}

// ObserveMerge implements Observer.
func (NopObserver) ObserveMerge(schema.SectionID, int, int, Cause) {}

// Syncer synchronizes one section of one run with the shared profile.
type Syncer struct {
	section  schema.SectionID
	store    profile.Store
	sched    timer.Scheduler
	debounce time.Duration
	post     func(gen uint64)
	obs      Observer

	pulled  bool
	gen     uint64
	pending profile.Section
	writes  int // Schedule calls collapsed into pending
	timer   timer.Timer
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithScheduler replaces the runtime timer.
func WithScheduler(sched timer.Scheduler) Option {
	return func(s *Syncer) {
		s.sched = sched
	}
}

// WithPoster sets the function the debounce timer calls when it expires.
// The poster must arrange for Fire(gen) to run on the owning goroutine.
//
// Without a poster the timer calls Fire directly, which is only correct
// when the scheduler runs callbacks on the owner's goroutine (a manual
// scheduler in tests, for example).
func WithPoster(post func(gen uint64)) Option {
	return func(s *Syncer) {
		s.post = post
	}
}

// WithObserver installs an Observer.
func WithObserver(obs Observer) Option {
	return func(s *Syncer) {
		if obs != nil {
			s.obs = obs
		}
	}
}

// New creates a Syncer for one section of one run.
func New(section schema.SectionID, store profile.Store, opts ...Option) *Syncer {
	s := &Syncer{
		section:  section,
		store:    store,
		sched:    timer.Real{},
		debounce: DefaultDebounce,
		obs:      NopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.post == nil {
		s.post = func(gen uint64) { s.Fire(gen) }
	}
	return s
}

// Section returns the section this Syncer writes.
func (s *Syncer) Section() schema.SectionID {
	return s.section
}

// Pull copies the shared section's values into answers under each
// question's id. Fields the shared profile does not hold stay unanswered.
//
// Only the first call per Syncer has any effect; it reports whether it
// copied anything this time.
func (s *Syncer) Pull(questions []question.Question, answers *answer.Store) bool {
	if s.pulled {
		slog.Debug("pull skipped: already pulled", "section", s.section)
		return false
	}
	s.pulled = true

	shared := s.store.GetSection(s.section)
	restored := 0
	for _, q := range questions {
		v, ok := shared[q.FieldName]
		if !ok || v == nil {
			continue
		}
		answers.Set(q.ID, v)
		restored++
	}

	slog.Debug("profile pulled", "section", s.section, "restored", restored)
	s.obs.ObservePull(s.section, restored)
	return true
}

// Pulled reports whether Pull has run.
func (s *Syncer) Pulled() bool {
	return s.pulled
}

// Schedule records the run's current field values for this section and
// (re)starts the debounce timer. The latest snapshot replaces any earlier
// pending one.
func (s *Syncer) Schedule(snapshot profile.Section) {
	s.pending = snapshot.Clone()
	s.writes++
	s.gen++

	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	s.timer = s.sched.AfterFunc(s.debounce, func() { s.post(gen) })
}

// Fire merges the pending snapshot if gen is the latest scheduled
// generation. A stale generation, from a timer that expired while a newer
// Schedule was in flight, is ignored.
func (s *Syncer) Fire(gen uint64) bool {
	if gen != s.gen {
		slog.Debug("stale debounce ignored", "section", s.section, "gen", gen, "current", s.gen)
		return false
	}
	return s.merge(CauseDebounce)
}

// Flush merges any pending snapshot immediately and cancels the timer.
func (s *Syncer) Flush() bool {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.merge(CauseFlush)
}

// Pending reports whether a snapshot is waiting to be merged.
func (s *Syncer) Pending() bool {
	return s.pending != nil
}

func (s *Syncer) merge(cause Cause) bool {
	if s.pending == nil {
		return false
	}
	partial, writes := s.pending, s.writes
	s.pending, s.writes = nil, 0
	s.timer = nil

	s.store.MergeSection(s.section, partial)

	slog.Info("profile section merged",
		"section", s.section,
		"fields", len(partial),
		"writes", writes,
		"cause", cause,
	)
	s.obs.ObserveMerge(s.section, len(partial), writes, cause)
	return true
}

// SectionFromAnswers builds the field-name keyed mapping for a section from
// a run's answers. Questions whose id is in cleared and that are still
// unanswered map to nil, so the merge removes them from the shared
// profile. Other unanswered questions are left out.
func SectionFromAnswers(questions []question.Question, answers *answer.Store, cleared map[string]bool) profile.Section {
	out := make(profile.Section, len(questions))
	for _, q := range questions {
		if v, ok := answers.Get(q.ID); ok {
			out[q.FieldName] = v
			continue
		}
		if cleared[q.ID] {
			out[q.FieldName] = nil
		}
	}
	return out
}
