package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/glowprofile/internal/question"
	"github.com/roach88/glowprofile/internal/schema"
)

// QuestionsOptions holds flags for the questions command.
type QuestionsOptions struct {
	*RootOptions
	Required bool
}

// NewQuestionsCommand creates the questions command.
func NewQuestionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuestionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "questions <section>",
		Short: "List the questions generated for a section",
		Long: `List the questions generated for a section, in run order.

Examples:
  glowprofile questions skin
  glowprofile questions lifestyle --required
  glowprofile questions hair --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuestions(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Required, "required", false, "only required questions")
	return cmd
}

func runQuestions(opts *QuestionsOptions, section string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := loadSchema(opts.Config.Schema)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSchemaCompile, "failed to load schema", err)
	}

	qs, err := question.Generate(s, schema.SectionID(section), opts.Required)
	if question.IsUnknownSection(err) {
		return f.Fail(ExitCommandError, ErrCodeUnknownSection,
			fmt.Sprintf("unknown section %q (known: %v)", section, s.SectionIDs()), nil)
	}
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to generate questions", err)
	}

	return f.Success(qs, func(w io.Writer) {
		if len(qs) == 0 {
			fmt.Fprintf(w, "No questions in %s.\n", section)
			return
		}
		for i, q := range qs {
			printQuestion(w, i, q)
		}
	})
}

func printQuestion(w io.Writer, i int, q question.Question) {
	marker := ""
	if q.Required {
		marker = failColor.Sprint(" *")
	}
	fmt.Fprintf(w, "%2d. %s%s\n", i, headColor.Sprint(q.Label), marker)
	fmt.Fprintf(w, "    %s  %s\n", q.ID, dimColor.Sprint(string(q.Type)))

	var constraints []string
	if q.MinItems != nil {
		constraints = append(constraints, fmt.Sprintf("min %d", *q.MinItems))
	}
	if q.MaxItems != nil {
		constraints = append(constraints, fmt.Sprintf("max %d", *q.MaxItems))
	}
	if q.Min != nil || q.Max != nil {
		constraints = append(constraints, "range "+formatBound(q.Min)+".."+formatBound(q.Max))
	}
	if len(constraints) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(constraints, ", "))
	}

	if len(q.Options) > 0 {
		values := make([]string, len(q.Options))
		for j, o := range q.Options {
			values[j] = o.Value
		}
		fmt.Fprintf(w, "    options: %s\n", strings.Join(values, ", "))
	}
}

func formatBound(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%g", *p)
}
