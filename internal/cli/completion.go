package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/glowprofile/internal/completion"
	"github.com/roach88/glowprofile/internal/schema"
)

// SectionCompletion is one section's completion.
type SectionCompletion struct {
	Section schema.SectionID `json:"section"`
	completion.Stat
}

// CompletionReport is the output of the completion command.
type CompletionReport struct {
	Overall  completion.Stat     `json:"overall"`
	Sections []SectionCompletion `json:"sections"`
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "completion",
		Short: "Show profile completion",
		Long: `Show how much of the profile is filled in, overall and per section.

A field counts as filled when it holds a non-empty value. The overall
percentage is taken over every field in the schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompletion(rootOpts, cmd)
		},
	}
}

func runCompletion(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd.Context())

	s, err := loadSchema(opts.Config.Schema)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSchemaCompile, "failed to load schema", err)
	}
	st, repo, err := openProfile(ctx, opts.Config.DB)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open profile database", err)
	}
	defer closeStore(st)

	report := CompletionReport{
		Overall:  completion.Compute(repo, s),
		Sections: make([]SectionCompletion, 0, len(s.Sections)),
	}
	for _, id := range s.SectionIDs() {
		report.Sections = append(report.Sections, SectionCompletion{
			Section: id,
			Stat:    completion.ForSection(repo, s, id),
		})
	}

	return f.Success(report, func(w io.Writer) {
		o := report.Overall
		fmt.Fprintf(w, "%s %s %d%% (%d/%d fields)\n",
			headColor.Sprint("Profile"), progressBar(o.Percentage), o.Percentage, o.FilledCount, o.TotalCount)
		for _, sc := range report.Sections {
			fmt.Fprintf(w, "  %-12s %s %3d%% (%d/%d)\n",
				sc.Section, progressBar(sc.Percentage), sc.Percentage, sc.FilledCount, sc.TotalCount)
		}
	})
}
