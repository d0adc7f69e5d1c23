package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a story test over a recorded trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Chart is the path to a .yaml or .cue chart definition.
	// Relative paths are resolved against the scenario file location.
	Chart string `yaml:"chart"`

	// ExemptInternal makes validation ignore internal transitions for C6.
	ExemptInternal bool `yaml:"exempt_internal,omitempty"`

	// Trace is the recorded run, in time order.
	Trace []MacroStepDef `yaml:"trace"`

	// Assertions validate the story and final configuration.
	Assertions []Assertion `yaml:"assertions"`
}

// MacroStepDef is one macro step of a scenario trace.
type MacroStepDef struct {
	// At places the step at an absolute time since the start.
	At string `yaml:"at,omitempty"`

	// After places the step a delay after the previous one.
	After string `yaml:"after,omitempty"`

	Steps []MicroStepDef `yaml:"steps"`
}

// MicroStepDef is one micro step. Event names the consumed event; Data is
// its payload.
type MicroStepDef struct {
	Event      string         `yaml:"event,omitempty"`
	Data       map[string]any `yaml:"data,omitempty"`
	Transition *TransitionRef `yaml:"transition,omitempty"`
	Exited     []string       `yaml:"exited,omitempty"`
	Entered    []string       `yaml:"entered,omitempty"`
}

// TransitionRef identifies a chart transition by its structural fields.
type TransitionRef struct {
	From   string `yaml:"from"`
	To     string `yaml:"to,omitempty"`
	Event  string `yaml:"event,omitempty"`
	Guard  string `yaml:"guard,omitempty"`
	Action string `yaml:"action,omitempty"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "story_contains": Line appears in the story
	// - "story_order": Lines appear in order
	// - "story_count": Event appears exactly Count times
	// - "final_configuration": States are exactly the active states
	// - "validation": chart validates, or fails with Rule
	Type string `yaml:"type"`

	// Line is a rendered story line (used by story_contains).
	Line string `yaml:"line,omitempty"`

	// Lines are rendered story lines (used by story_order).
	Lines []string `yaml:"lines,omitempty"`

	// Event is a story event name (used by story_count).
	Event string `yaml:"event,omitempty"`

	// Count is the expected number of occurrences (used by story_count).
	Count int `yaml:"count,omitempty"`

	// States is the expected configuration (used by final_configuration).
	States []string `yaml:"states,omitempty"`

	// Rule is the expected violated rule, empty for a valid chart
	// (used by validation).
	Rule string `yaml:"rule,omitempty"`
}

// Assertion type constants.
const (
	AssertStoryContains      = "story_contains"
	AssertStoryOrder         = "story_order"
	AssertStoryCount         = "story_count"
	AssertFinalConfiguration = "final_configuration"
	AssertValidation         = "validation"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// The chart path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Chart != "" && !filepath.IsAbs(scenario.Chart) {
		scenario.Chart = filepath.Join(filepath.Dir(path), scenario.Chart)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Chart == "" {
		return fmt.Errorf("chart is required")
	}

	if err := validateTrace(s.Trace); err != nil {
		return err
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

// TraceFile is a standalone recorded trace, as read by LoadTrace.
type TraceFile struct {
	Trace []MacroStepDef `yaml:"trace"`
}

// LoadTrace reads a YAML file holding a trace key in scenario form.
func LoadTrace(path string) ([]MacroStepDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}

	var file TraceFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateTrace(file.Trace); err != nil {
		return nil, fmt.Errorf("invalid trace: %w", err)
	}
	return file.Trace, nil
}

func validateTrace(defs []MacroStepDef) error {
	for i, macro := range defs {
		if macro.At != "" && macro.After != "" {
			return fmt.Errorf("trace[%d]: at and after are mutually exclusive", i)
		}
		for _, d := range []string{macro.At, macro.After} {
			if d == "" {
				continue
			}
			if _, err := parseDuration(d); err != nil {
				return fmt.Errorf("trace[%d]: %w", i, err)
			}
		}
		for j, micro := range macro.Steps {
			if micro.Data != nil && micro.Event == "" {
				return fmt.Errorf("trace[%d].steps[%d]: data requires event", i, j)
			}
			if micro.Transition != nil && micro.Transition.From == "" {
				return fmt.Errorf("trace[%d].steps[%d]: transition.from is required", i, j)
			}
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertStoryContains:
		if a.Line == "" {
			return fmt.Errorf("story_contains requires line")
		}
	case AssertStoryOrder:
		if len(a.Lines) < 2 {
			return fmt.Errorf("story_order requires at least two lines")
		}
	case AssertStoryCount:
		if a.Event == "" {
			return fmt.Errorf("story_count requires event")
		}
		if a.Count < 0 {
			return fmt.Errorf("story_count requires a non-negative count")
		}
	case AssertFinalConfiguration, AssertValidation:
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	return d, nil
}
