package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/glowprofile/internal/engine"
)

// Scenario is one scripted questionnaire run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is an optional path to a CUE schema file, resolved relative
	// to the scenario file. Empty means the built-in schema.
	Schema string `yaml:"schema,omitempty"`

	Section      string `yaml:"section"`
	Layout       string `yaml:"layout,omitempty"`
	OnlyRequired bool   `yaml:"only_required,omitempty"`

	// RunID fixes the run id. If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Profile seeds the shared profile before the run starts, keyed by
	// section and then field name.
	Profile map[string]map[string]any `yaml:"profile,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted interaction.
type Step struct {
	Op       string `yaml:"op"`
	Question string `yaml:"question,omitempty"`
	Value    any    `yaml:"value,omitempty"`
	Item     string `yaml:"item,omitempty"`
	Index    int    `yaml:"index,omitempty"`
	Duration string `yaml:"duration,omitempty"`
}

// Step operations.
const (
	OpAnswer  = "answer"
	OpClear   = "clear"
	OpToggle  = "toggle"
	OpAdvance = "advance"
	OpRetreat = "retreat"
	OpJump    = "jump"
	OpWait    = "wait"
	OpPull    = "pull"
	OpClose   = "close"
)

// Wait returns the parsed duration of a wait step.
func (s Step) Wait() (time.Duration, error) {
	d, err := time.ParseDuration(s.Duration)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s.Duration)
	}
	return d, nil
}

// Assertion checks the final state of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Index is the expected active index (active_index).
	Index *int `yaml:"index,omitempty"`

	// Question names the question (answer).
	Question string `yaml:"question,omitempty"`

	// Section and Field name the profile field (profile).
	Section string `yaml:"section,omitempty"`
	Field   string `yaml:"field,omitempty"`

	// Value is the expected value (answer, profile). Absent asserts that
	// there is no value at all.
	Value  any  `yaml:"value,omitempty"`
	Absent bool `yaml:"absent,omitempty"`

	// Percentage is the expected profile completion (completion).
	Percentage *int `yaml:"percentage,omitempty"`

	// Count is the expected number of occurrences (merge_count, trace_count).
	Count *int `yaml:"count,omitempty"`

	// Event and Outcome select trace entries (trace_count).
	Event   string `yaml:"event,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`

	// Flag names a boolean of the final state and Is its expected value
	// (state).
	Flag string `yaml:"flag,omitempty"`
	Is   *bool  `yaml:"is,omitempty"`
}

// Assertion type constants.
const (
	AssertActiveIndex = "active_index"
	AssertAnswer      = "answer"
	AssertProfile     = "profile"
	AssertCompletion  = "completion"
	AssertMergeCount  = "merge_count"
	AssertTraceCount  = "trace_count"
	AssertState       = "state"
)

// State flags usable in state assertions.
var stateFlags = map[string]func(engine.State) bool{
	"can_advance":  func(s engine.State) bool { return s.CanAdvance },
	"can_complete": func(s engine.State) bool { return s.CanComplete },
	"terminal":     func(s engine.State) bool { return s.Terminal },
	"pending_push": func(s engine.State) bool { return s.PendingPush },
	"closed":       func(s engine.State) bool { return s.Closed },
}

// LoadScenario reads and parses a scenario YAML file. A relative schema
// path is resolved against the scenario's directory.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if sc.Schema != "" && !filepath.IsAbs(sc.Schema) {
		sc.Schema = filepath.Join(filepath.Dir(path), sc.Schema)
	}
	if sc.Schema != "" {
		if _, err := os.Stat(sc.Schema); err != nil {
			return nil, fmt.Errorf("invalid scenario: schema file not found: %s", sc.Schema)
		}
	}
	return sc, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Section == "" {
		return fmt.Errorf("section is required")
	}
	if _, err := engine.ParseLayout(s.Layout); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := ValidateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

// ValidateStep checks that a step names a known op and carries the fields
// that op needs.
func ValidateStep(s Step) error {
	switch s.Op {
	case OpAnswer:
		if s.Question == "" {
			return fmt.Errorf("question is required for answer")
		}
		if s.Value == nil {
			return fmt.Errorf("value is required for answer (use op: clear to remove)")
		}
	case OpClear:
		if s.Question == "" {
			return fmt.Errorf("question is required for clear")
		}
	case OpToggle:
		if s.Question == "" || s.Item == "" {
			return fmt.Errorf("question and item are required for toggle")
		}
	case OpWait:
		if _, err := s.Wait(); err != nil {
			return fmt.Errorf("wait: invalid duration %q: %w", s.Duration, err)
		}
	case OpAdvance, OpRetreat, OpJump, OpPull, OpClose:
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertActiveIndex:
		if a.Index == nil {
			return fmt.Errorf("index is required for active_index")
		}
	case AssertAnswer:
		if a.Question == "" {
			return fmt.Errorf("question is required for answer")
		}
		if err := valueOrAbsent(a); err != nil {
			return err
		}
	case AssertProfile:
		if a.Section == "" || a.Field == "" {
			return fmt.Errorf("section and field are required for profile")
		}
		if err := valueOrAbsent(a); err != nil {
			return err
		}
	case AssertCompletion:
		if a.Percentage == nil {
			return fmt.Errorf("percentage is required for completion")
		}
	case AssertMergeCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("non-negative count is required for merge_count")
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("event is required for trace_count")
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("non-negative count is required for trace_count")
		}
	case AssertState:
		if _, ok := stateFlags[a.Flag]; !ok {
			return fmt.Errorf("unknown state flag %q", a.Flag)
		}
		if a.Is == nil {
			return fmt.Errorf("is is required for state")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func valueOrAbsent(a Assertion) error {
	if (a.Value == nil) == !a.Absent {
		return fmt.Errorf("exactly one of value or absent is required for %s", a.Type)
	}
	return nil
}
