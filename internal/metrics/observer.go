// Package metrics exports questionnaire and synchronizer activity to
// Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/profilesync"
	"github.com/roach88/glowprofile/internal/schema"
)

const eventsName = "engine_events_total"

// IsEventsFamily reports whether a gathered metric family name is the
// engine event counter under any namespace.
func IsEventsFamily(name string) bool {
	return name == eventsName || strings.HasSuffix(name, "_"+eventsName)
}

// PrometheusObserver records engine events and profile merges.
// It implements engine.Observer and profilesync.Observer.
type PrometheusObserver struct {
	events        *promclient.CounterVec
	pulls         *promclient.CounterVec
	restored      *promclient.CounterVec
	merges        *promclient.CounterVec
	writesPerPush *promclient.HistogramVec
}

// NewPrometheusObserver registers the questionnaire metrics. Metrics
// already registered under the same name are reused, so several runs in
// one process can each construct an observer.
func NewPrometheusObserver(namespace string, reg promclient.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "glowprofile"
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	o := &PrometheusObserver{
		events: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      eventsName,
			Help:      "Questionnaire events processed, by outcome.",
		}, []string{"section", "event", "outcome"}),
		pulls: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "profile_pulls_total",
			Help:      "Runs that pulled prior answers from the shared profile.",
		}, []string{"section"}),
		restored: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "profile_restored_fields_total",
			Help:      "Fields copied from the shared profile into a run.",
		}, []string{"section"}),
		merges: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "profile_merges_total",
			Help:      "Section merges into the shared profile, by cause.",
		}, []string{"section", "cause"}),
		writesPerPush: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "profile_writes_per_merge",
			Help:      "Answer changes collapsed into one merge by the debounce.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}, []string{"section"}),
	}

	var err error
	if o.events, err = register(reg, o.events); err != nil {
		return nil, err
	}
	if o.pulls, err = register(reg, o.pulls); err != nil {
		return nil, err
	}
	if o.restored, err = register(reg, o.restored); err != nil {
		return nil, err
	}
	if o.merges, err = register(reg, o.merges); err != nil {
		return nil, err
	}
	if o.writesPerPush, err = register(reg, o.writesPerPush); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are promclient.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register metric: %w", err)
}

// ObserveEvent implements engine.Observer.
func (o *PrometheusObserver) ObserveEvent(section schema.SectionID, event string, outcome engine.Outcome) {
	if o == nil {
		return
	}
	o.events.WithLabelValues(string(section), event, string(outcome)).Inc()
}

// ObservePull implements profilesync.Observer.
func (o *PrometheusObserver) ObservePull(section schema.SectionID, restored int) {
	if o == nil {
		return
	}
	o.pulls.WithLabelValues(string(section)).Inc()
	o.restored.WithLabelValues(string(section)).Add(float64(restored))
}

// ObserveMerge implements profilesync.Observer.
func (o *PrometheusObserver) ObserveMerge(section schema.SectionID, _ int, writes int, cause profilesync.Cause) {
	if o == nil {
		return
	}
	o.merges.WithLabelValues(string(section), string(cause)).Inc()
	o.writesPerPush.WithLabelValues(string(section)).Observe(float64(writes))
}

var (
	_ engine.Observer      = (*PrometheusObserver)(nil)
	_ profilesync.Observer = (*PrometheusObserver)(nil)
)
