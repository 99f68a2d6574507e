package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/glowprofile/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out string
}

// ExportResult is the output of the export command.
type ExportResult struct {
	Path     string `json:"path"`
	Sections int    `json:"sections"`
	Percent  int    `json:"percentage"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the profile to a YAML file",
		Long: `Write the profile to a YAML file.

The file is replaced atomically while holding an exclusive lock on
<out>.lock, so concurrent exports never interleave.

Example:
  glowprofile export --out ./profile.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
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

	doc, err := export.WriteFile(ctx, opts.Out, repo, s)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeExportFailed, "export failed", err)
	}

	result := ExportResult{Path: opts.Out, Sections: len(doc.Sections), Percent: doc.Completion.Percentage}
	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s exported %d section(s) to %s (%d%% complete)\n",
			passMark(), result.Sections, result.Path, result.Percent)
	})
}
