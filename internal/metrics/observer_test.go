package metrics

import (
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/profilesync"
	"github.com/roach88/glowprofile/internal/schema"
)

func family(t *testing.T, reg *promclient.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string)
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestPrometheusObserver_Records(t *testing.T) {
	reg := promclient.NewRegistry()
	o, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	o.ObserveEvent(schema.SectionSkin, "advance", engine.OutcomeBlocked)
	o.ObserveEvent(schema.SectionSkin, "advance", engine.OutcomeBlocked)
	o.ObservePull(schema.SectionSkin, 3)
	o.ObserveMerge(schema.SectionSkin, 2, 4, profilesync.CauseDebounce)

	events := family(t, reg, "test_engine_events_total")
	require.Len(t, events.GetMetric(), 1)
	assert.Equal(t, map[string]string{"section": "skin", "event": "advance", "outcome": "blocked"},
		labels(events.GetMetric()[0]))
	assert.Equal(t, 2.0, events.GetMetric()[0].GetCounter().GetValue())

	restored := family(t, reg, "test_profile_restored_fields_total")
	assert.Equal(t, 3.0, restored.GetMetric()[0].GetCounter().GetValue())

	merges := family(t, reg, "test_profile_merges_total")
	assert.Equal(t, "debounce", labels(merges.GetMetric()[0])["cause"])

	writes := family(t, reg, "test_profile_writes_per_merge")
	assert.Equal(t, uint64(1), writes.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 4.0, writes.GetMetric()[0].GetHistogram().GetSampleSum())
}

func TestPrometheusObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := promclient.NewRegistry()
	first, err := NewPrometheusObserver("", reg)
	require.NoError(t, err)
	second, err := NewPrometheusObserver("", reg)
	require.NoError(t, err)

	first.ObservePull(schema.SectionHair, 0)
	second.ObservePull(schema.SectionHair, 0)

	pulls := family(t, reg, "glowprofile_profile_pulls_total")
	assert.Equal(t, 2.0, pulls.GetMetric()[0].GetCounter().GetValue())
}

func TestPrometheusObserver_NilIsNoop(t *testing.T) {
	var o *PrometheusObserver
	assert.NotPanics(t, func() {
		o.ObserveEvent(schema.SectionSkin, "answer", engine.OutcomeApplied)
		o.ObservePull(schema.SectionSkin, 1)
		o.ObserveMerge(schema.SectionSkin, 1, 1, profilesync.CauseFlush)
	})
}

func TestIsEventsFamily(t *testing.T) {
	assert.True(t, IsEventsFamily("glowprofile_engine_events_total"))
	assert.True(t, IsEventsFamily("engine_events_total"))
	assert.False(t, IsEventsFamily("glowprofile_profile_merges_total"))
	assert.False(t, IsEventsFamily("xengine_events_total"))
}
