package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/submit"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Sections []string
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit profile sections",
		Long: `Submit profile sections to the submission outbox.

Each listed section (default: every schema section) is submitted once,
in schema order. Sections with no answers are skipped.

Exit codes:
  0 - Every non-empty section was submitted
  1 - One or more sections failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Sections, "section", nil, "sections to submit (repeatable)")
	return cmd
}

func runSubmit(opts *SubmitOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd.Context())

	s, err := loadSchema(opts.Config.Schema)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSchemaCompile, "failed to load schema", err)
	}

	sections := s.SectionIDs()
	if len(opts.Sections) > 0 {
		sections = make([]schema.SectionID, 0, len(opts.Sections))
		for _, name := range opts.Sections {
			id := schema.SectionID(name)
			if _, ok := s.Section(id); !ok {
				return f.Fail(ExitCommandError, ErrCodeUnknownSection,
					fmt.Sprintf("unknown section %q", name), nil)
			}
			sections = append(sections, id)
		}
	}

	st, repo, err := openProfile(ctx, opts.Config.DB)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open profile database", err)
	}
	defer closeStore(st)

	report := submit.All(ctx, st, repo, sections)
	if !report.OK() {
		if outErr := f.Error(ErrCodeSubmitFailed, report.Err().Error(), report); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "submission failed", report.Err())
	}

	return f.Success(report, func(w io.Writer) {
		for _, o := range report.Outcomes {
			switch o.Status {
			case submit.StatusSubmitted:
				fmt.Fprintf(w, "%s %s (%d fields)\n", passMark(), o.Section, o.Fields)
			default:
				fmt.Fprintf(w, "%s %s\n", dimColor.Sprint("-"), dimColor.Sprintf("%s skipped", o.Section))
			}
		}
		fmt.Fprintf(w, "Submitted %d of %d section(s)\n", len(report.Submitted()), len(report.Outcomes))
	})
}
