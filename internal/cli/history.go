package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/glowprofile/internal/schema"
	"github.com/roach88/glowprofile/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Section string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the profile merge log",
		Long: `Show every merge written to the profile, oldest first.

Each run merges its answers once per debounce window and once more when
it closes; this log shows exactly which fields each merge carried. Fields a
merge removed are listed with a leading "-".

Examples:
  glowprofile history
  glowprofile history --section skin --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Section, "section", "", "only merges for this section")
	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd.Context())

	st, err := store.Open(opts.Config.DB)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open profile database", err)
	}
	defer closeStore(st)

	merges, err := st.ReadMerges(ctx, schema.SectionID(opts.Section))
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to read merge log", err)
	}
	if merges == nil {
		merges = []store.MergeRecord{}
	}

	return f.Success(merges, func(w io.Writer) {
		if len(merges) == 0 {
			fmt.Fprintln(w, "No merges recorded.")
			return
		}
		for _, m := range merges {
			fields := m.Fields.FieldNames()
			for _, c := range m.Cleared {
				fields = append(fields, failColor.Sprint("-"+c))
			}
			fmt.Fprintf(w, "%s %-12s %s\n",
				dimColor.Sprintf("#%d", m.Seq), m.Section, strings.Join(fields, ", "))
		}
	})
}
