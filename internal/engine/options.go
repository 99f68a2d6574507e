package engine

import (
	"fmt"
	"time"

	"github.com/roach88/glowprofile/internal/profilesync"
	"github.com/roach88/glowprofile/internal/timer"
)

// Layout controls how questions are presented and when a run may complete.
type Layout string

const (
	// LayoutStepped shows one question at a time. Single-choice answers on
	// the active question advance automatically after a short delay.
	LayoutStepped Layout = "stepped"
	// LayoutAllAtOnce shows every question together. Nothing auto-advances
	// and the run may complete as soon as the whole section is valid.
	LayoutAllAtOnce Layout = "all_at_once"
)

// ParseLayout converts a configuration string to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutStepped, LayoutAllAtOnce:
		return Layout(s), nil
	case "":
		return LayoutStepped, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want %s or %s)", s, LayoutStepped, LayoutAllAtOnce)
	}
}

// DefaultAutoAdvanceDelay leaves the selection visible before moving on.
const DefaultAutoAdvanceDelay = 300 * time.Millisecond

// Option configures a Session.
type Option func(*Session)

// WithLayout sets the layout. Default: LayoutStepped.
func WithLayout(l Layout) Option {
	return func(s *Session) {
		s.layout = l
	}
}

// WithAutoAdvanceDelay sets the stepped-layout auto-advance delay.
// Non-positive values keep the default.
func WithAutoAdvanceDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.autoDelay = d
		}
	}
}

// WithScheduler sets the scheduler for auto-advance and push debounce.
func WithScheduler(sched timer.Scheduler) Option {
	return func(s *Session) {
		s.sched = sched
	}
}

// WithDebounce sets the push debounce period.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		s.debounce = d
	}
}

// WithRunIDGenerator sets the run id source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(s *Session) {
		s.runIDs = g
	}
}

// WithClock shares a logical clock between runs.
func WithClock(c *Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithTrace installs a trace sink.
func WithTrace(sink TraceSink) Option {
	return func(s *Session) {
		s.trace = sink
	}
}

// WithObserver installs a navigation observer.
func WithObserver(obs Observer) Option {
	return func(s *Session) {
		s.observer = obs
	}
}

// WithSyncObserver installs an observer on the run's profile synchronizer.
func WithSyncObserver(obs profilesync.Observer) Option {
	return func(s *Session) {
		s.syncObserver = obs
	}
}
