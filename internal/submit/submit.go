// Package submit hands finished profile sections to the submission
// collaborator.
//
// Each non-empty section is submitted once, in the order given. Failures
// are reported as returned and never retried.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

// Submitter sends one profile section to its destination.
type Submitter interface {
	SubmitSection(ctx context.Context, section schema.SectionID, values profile.Section) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, section schema.SectionID, values profile.Section) error

// SubmitSection implements Submitter.
func (f SubmitterFunc) SubmitSection(ctx context.Context, section schema.SectionID, values profile.Section) error {
	return f(ctx, section, values)
}

// Status is the result of one section's submission.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped" // nothing to submit
)

// Outcome records what happened to one section.
type Outcome struct {
	Section schema.SectionID `json:"section"`
	Status  Status           `json:"status"`
	Fields  int              `json:"fields"`
	Err     error            `json:"-"`
	Error   string           `json:"error,omitempty"`
}

// Report lists one Outcome per requested section, in request order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// OK reports whether no submission failed.
func (r Report) OK() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Submitted returns the sections that were accepted.
func (r Report) Submitted() []schema.SectionID {
	var out []schema.SectionID
	for _, o := range r.Outcomes {
		if o.Status == StatusSubmitted {
			out = append(out, o.Section)
		}
	}
	return out
}

// Err joins every failure, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("submit %s: %w", o.Section, o.Err))
		}
	}
	return errors.Join(errs...)
}

// All submits each listed section of the profile. Sections without any
// non-empty value are skipped. Once ctx is done the remaining sections
// fail with ctx.Err() without being sent.
func All(ctx context.Context, sub Submitter, p profile.Reader, sections []schema.SectionID) Report {
	report := Report{Outcomes: make([]Outcome, 0, len(sections))}

	for _, id := range sections {
		values := p.GetSection(id)
		o := Outcome{Section: id, Fields: len(values)}

		switch {
		case !hasValue(values):
			o.Status = StatusSkipped
		case ctx.Err() != nil:
			o.Status, o.Err = StatusFailed, ctx.Err()
		default:
			if err := sub.SubmitSection(ctx, id, values); err != nil {
				o.Status, o.Err = StatusFailed, err
			} else {
				o.Status = StatusSubmitted
			}
		}

		if o.Err != nil {
			o.Error = o.Err.Error()
			slog.Warn("section submission failed", "section", id, "error", o.Err)
		} else {
			slog.Debug("section submission", "section", id, "status", o.Status, "fields", o.Fields)
		}
		report.Outcomes = append(report.Outcomes, o)
	}

	return report
}

func hasValue(values profile.Section) bool {
	for _, v := range values {
		if v != nil && !v.IsEmpty() {
			return true
		}
	}
	return false
}
