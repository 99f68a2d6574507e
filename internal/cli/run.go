package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/completion"
	"github.com/roach88/glowprofile/internal/config"
	"github.com/roach88/glowprofile/internal/engine"
	"github.com/roach88/glowprofile/internal/harness"
	"github.com/roach88/glowprofile/internal/metrics"
	"github.com/roach88/glowprofile/internal/schema"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Script string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// Script is an answer script for the run command. Its steps use the
// scenario step format.
type Script struct {
	Steps []harness.Step `yaml:"steps"`
}

// RunSummary is the outcome of a scripted run.
type RunSummary struct {
	RunID          string           `json:"run_id"`
	Section        schema.SectionID `json:"section"`
	Layout         engine.Layout    `json:"layout"`
	ActiveIndex    int              `json:"active_index"`
	ActiveQuestion string           `json:"active_question,omitempty"`
	Completed      []string         `json:"completed"`
	Answers        map[string]any   `json:"answers"`
	Merges         int              `json:"merges"`
	Events         map[string]int   `json:"events"` // outcome -> count
	Completion     completion.Stat  `json:"completion"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <section>",
		Short: "Run a scripted questionnaire over one section",
		Long: `Start a questionnaire run over one section and apply an answer script.

The run pulls prior answers from the profile database once, applies the
script's steps in order with real timers, and closes, which flushes any
pending profile write.

Script format:
  steps:
    - op: answer
      question: skin.skin_type
      value: oily
    - op: wait
      duration: 400ms
    - op: toggle
      question: skin.primary_concerns
      item: acne

Example:
  glowprofile run skin --script answers.yaml --db ./profile.db
  glowprofile run lifestyle --script answers.yaml --layout all_at_once`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSection(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Script, "script", "", "path to the answer script (required)")
	_ = cmd.MarkFlagRequired("script")
	cmd.Flags().String("layout", "", "question layout (stepped|all_at_once)")
	cmd.Flags().Bool("required", false, "only required questions")
	cmd.Flags().Duration("debounce", 0, "profile write debounce")
	_ = rootOpts.v.BindPFlag(config.KeyLayout, cmd.Flags().Lookup("layout"))
	_ = rootOpts.v.BindPFlag(config.KeyOnlyRequired, cmd.Flags().Lookup("required"))
	_ = rootOpts.v.BindPFlag(config.KeyDebounce, cmd.Flags().Lookup("debounce"))

	return cmd
}

// LoadScript reads and validates an answer script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var sc Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range sc.Steps {
		if err := harness.ValidateStep(step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return &sc, nil
}

func runSection(opts *RunOptions, section string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg := opts.Config

	script, err := LoadScript(opts.Script)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScript, "invalid script", err)
	}

	s, err := loadSchema(cfg.Schema)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSchemaCompile, "failed to load schema", err)
	}
	if _, ok := s.Section(schema.SectionID(section)); !ok {
		return f.Fail(ExitCommandError, ErrCodeUnknownSection,
			fmt.Sprintf("unknown section %q (known: %v)", section, s.SectionIDs()), nil)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd.Context()))
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, closing run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	st, repo, err := openProfile(ctx, cfg.DB)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open profile database", err)
	}
	defer closeStore(st)

	reg := prometheus.NewRegistry()
	obs, err := metrics.NewPrometheusObserver(cfg.MetricsNamespace, reg)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to register metrics", err)
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	sess, err := engine.Start(s, schema.SectionID(section), cfg.OnlyRequired, repo,
		engine.WithLayout(cfg.EngineLayout()),
		engine.WithDebounce(cfg.Debounce),
		engine.WithAutoAdvanceDelay(cfg.AutoAdvanceDelay),
		engine.WithRunIDGenerator(runIDs),
		engine.WithObserver(obs),
		engine.WithSyncObserver(obs),
	)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to start run", err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	wait := func(d time.Duration) error {
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var stepErr error
	for i, step := range script.Steps {
		f.VerboseLog("step %d: %s %s", i, step.Op, step.Question)
		if err := harness.Apply(sess, step, wait); err != nil {
			stepErr = fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
			break
		}
	}

	// Close flushes; a script that already closed gets ErrRunClosed here.
	if err := sess.Close(); err != nil && !errors.Is(err, engine.ErrRunClosed) {
		slog.Warn("close failed", "run_id", sess.RunID(), "error", err)
	}
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return f.Fail(ExitFailure, ErrCodeGeneric, "run failed", err)
	}
	if stepErr != nil {
		return f.Fail(ExitFailure, ErrCodeScript, "script failed", stepErr)
	}

	merges, err := st.CountMerges(ctx, schema.SectionID(section))
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to read merge log", err)
	}
	if n := repo.WriteErrors(); n > 0 {
		return f.Fail(ExitFailure, ErrCodeStore, fmt.Sprintf("%d profile write(s) failed", n), nil)
	}

	state := sess.State()
	summary := RunSummary{
		RunID:          state.RunID,
		Section:        state.Section,
		Layout:         state.Layout,
		ActiveIndex:    state.ActiveIndex,
		ActiveQuestion: state.ActiveQuestionID,
		Completed:      state.Completed,
		Answers:        make(map[string]any, len(state.Answers)),
		Merges:         merges,
		Events:         eventOutcomes(reg),
		Completion:     completion.Compute(repo, s),
	}
	if summary.Completed == nil {
		summary.Completed = []string{}
	}
	for id, v := range state.Answers {
		summary.Answers[id] = answer.ToAny(v)
	}

	return f.Success(summary, func(w io.Writer) { printRunSummary(w, summary) })
}

// eventOutcomes sums the engine event counter by outcome label.
func eventOutcomes(reg prometheus.Gatherer) map[string]int {
	out := make(map[string]int)
	families, err := reg.Gather()
	if err != nil {
		slog.Warn("gather metrics failed", "error", err)
		return out
	}
	for _, fam := range families {
		if !metrics.IsEventsFamily(fam.GetName()) {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					out[l.GetValue()] += int(m.GetCounter().GetValue())
				}
			}
		}
	}
	return out
}

func printRunSummary(w io.Writer, s RunSummary) {
	fmt.Fprintf(w, "%s run %s over %s closed\n", passMark(), dimColor.Sprint(s.RunID), headColor.Sprint(s.Section))
	if s.ActiveQuestion != "" {
		fmt.Fprintf(w, "  active:    %d (%s)\n", s.ActiveIndex, s.ActiveQuestion)
	}
	fmt.Fprintf(w, "  completed: %d question(s)\n", len(s.Completed))

	ids := make([]string, 0, len(s.Answers))
	for id := range s.Answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %s = %v\n", id, s.Answers[id])
	}

	fmt.Fprintf(w, "  merges:    %d\n", s.Merges)
	fmt.Fprintf(w, "  profile:   %s %d%%\n", progressBar(s.Completion.Percentage), s.Completion.Percentage)
}
