package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/submit"
)

const onboardScript = `
sections:
  skin:
    - op: answer
      question: skin.skin_type
      value: combination
    - op: toggle
      question: skin.primary_concerns
      item: dullness
  hair:
    - op: answer
      question: hair.hair_type
      value: curly
`

func TestOnboard_WalksAndSubmits(t *testing.T) {
	env := newRunEnv(t)
	script := env.script(t, "onboard.yaml", onboardScript)

	out, _, err := env.exec("onboard", "--script", script, "--required", "--format", "json")
	require.NoError(t, err)

	var result OnboardResult
	decodeData(t, out, &result)

	assert.Equal(t, []schema.SectionID{
		schema.SectionSkin, schema.SectionHair, schema.SectionLifestyle,
		schema.SectionHealth, schema.SectionMakeup, schema.SectionPreferences,
	}, result.Visited)
	assert.Equal(t, 3, result.Completion.FilledCount)

	require.Len(t, result.Submission.Outcomes, 6)
	assert.Equal(t, submit.StatusSubmitted, result.Submission.Outcomes[0].Status)
	assert.Equal(t, 2, result.Submission.Outcomes[0].Fields)
	assert.Equal(t, submit.StatusSubmitted, result.Submission.Outcomes[1].Status)
	assert.Equal(t, submit.StatusSkipped, result.Submission.Outcomes[2].Status)

	// The flushed answers are visible to later commands.
	out, _, err = env.exec("completion")
	require.NoError(t, err)
	assert.Contains(t, out, "(3/29 fields)")
}

func TestOnboard_Text(t *testing.T) {
	env := newRunEnv(t)
	script := env.script(t, "onboard.yaml", onboardScript)

	out, _, err := env.exec("onboard", "--script", script)
	require.NoError(t, err)
	assert.Contains(t, out, "2 field(s) submitted")
	assert.Contains(t, out, "lifestyle    skipped")
	assert.Contains(t, out, "10% (3/29 fields)")
}

func TestOnboard_Errors(t *testing.T) {
	env := newRunEnv(t)

	tests := []struct {
		name   string
		script string
		code   int
		want   string
	}{
		{"unknown section", "sections:\n  nails:\n    - op: close\n", ExitCommandError, "E004"},
		{"invalid step", "sections:\n  skin:\n    - op: wait\n", ExitCommandError, "E005"},
		{"unknown key", "steps: []\n", ExitCommandError, "E005"},
		{"wrong section question", "sections:\n  skin:\n    - op: toggle\n      question: skin.skin_type\n      item: oily\n", ExitFailure, "E005"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := env.exec("onboard", "--script", env.script(t, "bad.yaml", tt.script))
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}
