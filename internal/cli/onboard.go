package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/glowprofile/internal/completion"
	"github.com/roach88/glowprofile/internal/config"
	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/harness"
	"github.com/roach88/glowprofile/internal/onboarding"
	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/submit"
)

// OnboardOptions holds flags for the onboard command.
type OnboardOptions struct {
	*RootOptions
	Script string
}

// OnboardScript holds answer steps per section. Sections without steps
// are still visited.
type OnboardScript struct {
	Sections map[string][]harness.Step `yaml:"sections"`
}

// OnboardResult is the outcome of a full onboarding pass.
type OnboardResult struct {
	Visited    []schema.SectionID `json:"visited"`
	Completion completion.Stat    `json:"completion"`
	Submission submit.Report      `json:"submission"`
}

// NewOnboardCommand creates the onboard command.
func NewOnboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OnboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Walk every section in order and submit the profile",
		Long: `Run the full onboarding questionnaire: one run per section in schema
order, each closed (and flushed) before the next one pulls, followed by
submission of every non-empty section.

Script format:
  sections:
    skin:
      - op: answer
        question: skin.skin_type
        value: dry
    hair:
      - op: answer
        question: hair.hair_type
        value: curly

Example:
  glowprofile onboard --script onboarding.yaml --required`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnboard(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Script, "script", "", "path to the onboarding script (required)")
	_ = cmd.MarkFlagRequired("script")
	cmd.Flags().Bool("required", false, "only required questions")
	_ = rootOpts.v.BindPFlag(config.KeyOnlyRequired, cmd.Flags().Lookup("required"))

	return cmd
}

// LoadOnboardScript reads and validates an onboarding script.
func LoadOnboardScript(path string) (*OnboardScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var sc OnboardScript
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for section, steps := range sc.Sections {
		for i, step := range steps {
			if err := harness.ValidateStep(step); err != nil {
				return nil, fmt.Errorf("sections.%s[%d]: %w", section, i, err)
			}
		}
	}
	return &sc, nil
}

func runOnboard(opts *OnboardOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg := opts.Config
	ctx := commandContext(cmd.Context())

	script, err := LoadOnboardScript(opts.Script)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScript, "invalid script", err)
	}

	s, err := loadSchema(cfg.Schema)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSchemaCompile, "failed to load schema", err)
	}
	for name := range script.Sections {
		if _, ok := s.Section(schema.SectionID(name)); !ok {
			return f.Fail(ExitCommandError, ErrCodeUnknownSection,
				fmt.Sprintf("unknown section %q (known: %v)", name, s.SectionIDs()), nil)
		}
	}

	st, repo, err := openProfile(ctx, cfg.DB)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open profile database", err)
	}
	defer closeStore(st)

	q := onboarding.New(s, repo, st,
		onboarding.WithOnlyRequired(cfg.OnlyRequired),
		onboarding.WithEngineOptions(
			engine.WithLayout(cfg.EngineLayout()),
			engine.WithDebounce(cfg.Debounce),
			engine.WithAutoAdvanceDelay(cfg.AutoAdvanceDelay),
		),
	)

	// Timer callbacks only enqueue; sleeping and then processing lets
	// due debounce and auto-advance events run in order.
	wait := func(d time.Duration) error {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
		q.Process()
		return nil
	}

	var result OnboardResult
	sess, err := q.Begin()
	for sess != nil && err == nil {
		section := sess.Section()
		result.Visited = append(result.Visited, section)
		q.Process()

		for i, step := range script.Sections[string(section)] {
			f.VerboseLog("%s step %d: %s %s", section, i, step.Op, step.Question)
			if stepErr := harness.Apply(sess, step, wait); stepErr != nil && !errors.Is(stepErr, engine.ErrRunClosed) {
				return f.Fail(ExitFailure, ErrCodeScript, "script failed",
					fmt.Errorf("sections.%s[%d] (%s): %w", section, i, step.Op, stepErr))
			}
			q.Process()
		}
		sess, _, err = q.Next()
	}
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "onboarding failed", err)
	}

	report, err := q.Finish(ctx)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "onboarding failed", err)
	}
	result.Submission = report
	result.Completion = q.Progress()

	if !report.OK() {
		if outErr := f.Error(ErrCodeSubmitFailed, report.Err().Error(), result); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "submission failed", report.Err())
	}
	if n := repo.WriteErrors(); n > 0 {
		return f.Fail(ExitFailure, ErrCodeStore, fmt.Sprintf("%d profile write(s) failed", n), nil)
	}

	return f.Success(result, func(w io.Writer) {
		for _, o := range report.Outcomes {
			switch o.Status {
			case submit.StatusSubmitted:
				fmt.Fprintf(w, "%s %-12s %d field(s) submitted\n", passMark(), o.Section, o.Fields)
			default:
				fmt.Fprintf(w, "%s %s\n", dimColor.Sprint("-"), dimColor.Sprintf("%-12s skipped", o.Section))
			}
		}
		fmt.Fprintf(w, "Profile %s %d%% (%d/%d fields)\n", progressBar(result.Completion.Percentage),
			result.Completion.Percentage, result.Completion.FilledCount, result.Completion.TotalCount)
	})
}
