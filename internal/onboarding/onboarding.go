// Package onboarding walks a user through every schema section, one
// engine run per section, and submits the profile at the end.
//
// A Questionnaire drives its runs synchronously: after calling methods on
// the current run, callers invoke Process to handle the queued events.
// Leaving a section closes its run, which flushes any pending push before
// the next section's run pulls.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/glowprofile/internal/completion"
	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/submit"
)

// ErrFinished is returned by operations on a finished questionnaire.
var ErrFinished = errors.New("questionnaire finished")

// Questionnaire is a multi-section onboarding flow. It is not safe for
// concurrent use.
type Questionnaire struct {
	schema       *schema.Schema
	store        profile.Store
	submitter    submit.Submitter
	onlyRequired bool
	sections     []schema.SectionID
	engineOpts   []engine.Option
	clock        *engine.Clock

	pos      int
	current  *engine.Session
	finished bool
}

// Option configures a Questionnaire.
type Option func(*Questionnaire)

// WithOnlyRequired limits every section to its required fields.
func WithOnlyRequired(only bool) Option {
	return func(q *Questionnaire) {
		q.onlyRequired = only
	}
}

// WithSections overrides the section order. Default: schema order.
func WithSections(ids ...schema.SectionID) Option {
	return func(q *Questionnaire) {
		q.sections = append([]schema.SectionID(nil), ids...)
	}
}

// WithEngineOptions passes options to every section run.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(q *Questionnaire) {
		q.engineOpts = append(q.engineOpts, opts...)
	}
}

// New creates a questionnaire. Call Begin to start the first section.
func New(s *schema.Schema, store profile.Store, sub submit.Submitter, opts ...Option) *Questionnaire {
	q := &Questionnaire{
		schema:    s,
		store:     store,
		submitter: sub,
		sections:  s.SectionIDs(),
		clock:     engine.NewClock(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Sections returns the section order.
func (q *Questionnaire) Sections() []schema.SectionID {
	return append([]schema.SectionID(nil), q.sections...)
}

// Current returns the active section's run, or nil before Begin and after
// the last section.
func (q *Questionnaire) Current() *engine.Session {
	return q.current
}

// Begin starts the first section's run.
func (q *Questionnaire) Begin() (*engine.Session, error) {
	if q.finished {
		return nil, ErrFinished
	}
	if q.current != nil {
		return nil, errors.New("questionnaire already started")
	}
	if len(q.sections) == 0 {
		return nil, errors.New("questionnaire has no sections")
	}
	q.pos = 0
	return q.start()
}

// Process handles every event queued on the current run.
func (q *Questionnaire) Process() int {
	if q.current == nil {
		return 0
	}
	return q.current.Drain()
}

// Next closes the current section's run and starts the following one. It
// returns (nil, false, nil) after the last section.
func (q *Questionnaire) Next() (*engine.Session, bool, error) {
	if q.finished {
		return nil, false, ErrFinished
	}
	if q.current == nil {
		return nil, false, errors.New("questionnaire not started")
	}
	q.leave()

	q.pos++
	if q.pos >= len(q.sections) {
		return nil, false, nil
	}
	s, err := q.start()
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Progress reports completion of the whole schema from the shared profile.
func (q *Questionnaire) Progress() completion.Stat {
	return completion.Compute(q.store, q.schema)
}

// Finish closes any open run and submits every section, in order.
func (q *Questionnaire) Finish(ctx context.Context) (submit.Report, error) {
	if q.finished {
		return submit.Report{}, ErrFinished
	}
	if q.submitter == nil {
		return submit.Report{}, errors.New("no submitter configured")
	}
	if q.current != nil {
		q.leave()
	}
	q.finished = true

	report := submit.All(ctx, q.submitter, q.store, q.sections)
	slog.Info("questionnaire finished",
		"submitted", len(report.Submitted()),
		"ok", report.OK(),
		"percentage", q.Progress().Percentage,
	)
	return report, nil
}

func (q *Questionnaire) start() (*engine.Session, error) {
	id := q.sections[q.pos]
	opts := append([]engine.Option{engine.WithClock(q.clock)}, q.engineOpts...)

	s, err := engine.Start(q.schema, id, q.onlyRequired, q.store, opts...)
	if err != nil {
		return nil, fmt.Errorf("start section %s: %w", id, err)
	}
	q.current = s
	return s, nil
}

// leave closes the current run; closing flushes its pending push.
func (q *Questionnaire) leave() {
	s := q.current
	q.current = nil
	if err := s.Close(); err != nil && !errors.Is(err, engine.ErrRunClosed) {
		slog.Error("close section run", "section", s.Section(), "error", err)
	}
	s.Drain()
}
