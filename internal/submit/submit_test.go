package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

type call struct {
	section schema.SectionID
	values  profile.Section
}

func recording(calls *[]call, fail map[schema.SectionID]error) Submitter {
	return SubmitterFunc(func(_ context.Context, id schema.SectionID, values profile.Section) error {
		*calls = append(*calls, call{id, values})
		return fail[id]
	})
}

func seeded() *profile.Memory {
	p := profile.NewMemory()
	p.MergeSection(schema.SectionSkin, profile.Section{"skin_type": answer.Text("oily")})
	p.MergeSection(schema.SectionHair, profile.Section{"hair_concerns": answer.List{}})
	p.MergeSection(schema.SectionLifestyle, profile.Section{"sleep_hours": answer.Text("7")})
	return p
}

func TestAll_SubmitsNonEmptySectionsOnce(t *testing.T) {
	var calls []call
	report := All(context.Background(), recording(&calls, nil), seeded(), schema.KnownSections())

	require.Len(t, calls, 2)
	assert.Equal(t, schema.SectionSkin, calls[0].section)
	assert.Equal(t, profile.Section{"skin_type": answer.Text("oily")}, calls[0].values)
	assert.Equal(t, schema.SectionLifestyle, calls[1].section)

	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
	assert.Equal(t, []schema.SectionID{schema.SectionSkin, schema.SectionLifestyle}, report.Submitted())
	require.Len(t, report.Outcomes, 6)
	assert.Equal(t, StatusSkipped, report.Outcomes[1].Status, "hair only holds an empty list")
}

func TestAll_FailureIsReportedNotRetried(t *testing.T) {
	var calls []call
	boom := errors.New("backend said no")
	report := All(context.Background(),
		recording(&calls, map[schema.SectionID]error{schema.SectionSkin: boom}),
		seeded(), schema.KnownSections())

	assert.Len(t, calls, 2, "each section submitted exactly once")
	assert.False(t, report.OK())
	assert.ErrorIs(t, report.Err(), boom)
	assert.Equal(t, StatusFailed, report.Outcomes[0].Status)
	assert.Equal(t, "backend said no", report.Outcomes[0].Error)
	assert.Equal(t, StatusSubmitted, report.Outcomes[2].Status, "later sections still submitted")
}

func TestAll_CancelledContext(t *testing.T) {
	var calls []call
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := All(ctx, recording(&calls, nil), seeded(), []schema.SectionID{schema.SectionSkin})
	assert.Empty(t, calls)
	assert.ErrorIs(t, report.Err(), context.Canceled)
}
