package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/glowprofile/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                     `json:"valid"`
	Source   string                   `json:"source"`
	Sections int                      `json:"sections"`
	Fields   int                      `json:"fields"`
	Errors   []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [schema.cue]",
		Short: "Validate a profile schema",
		Long: `Compile a CUE profile schema and check its structural rules.

Without an argument, validates the configured schema (--schema) or the
built-in one. All violations are reported, not just the first.

Exit codes:
  0 - Schema is valid
  1 - Schema does not compile or violates a rule
  2 - Schema file cannot be read`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.Schema
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	source := path
	s := schema.Default()
	if path == "" {
		source = "built-in"
	} else {
		var err error
		s, err = schema.CompileFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return f.Fail(ExitCommandError, ErrCodeSchemaRead, "cannot read schema", err)
		}
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeSchemaCompile, "schema does not compile", err)
		}
	}
	f.VerboseLog("Validating %s: %d section(s), %d field(s)", source, len(s.Sections), s.FieldCount())

	result := ValidationResult{
		Valid:    true,
		Source:   source,
		Sections: len(s.Sections),
		Fields:   s.FieldCount(),
		Errors:   schema.Validate(s),
	}
	if len(result.Errors) > 0 {
		result.Valid = false
		if f.JSON() {
			if err := f.encode(CLIResponse{
				Status: "error",
				Data:   result,
				Error: &CLIError{
					Code:    ErrCodeSchemaInvalid,
					Message: fmt.Sprintf("%d validation error(s)", len(result.Errors)),
				},
			}); err != nil {
				return err
			}
		} else {
			w := f.Writer
			fmt.Fprintf(w, "%s %s: %d validation error(s)\n", failMark(), source, len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  %s\n", e.Error())
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
	}

	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s is valid (%d sections, %d fields)\n",
			passMark(), source, result.Sections, result.Fields)
	})
}
