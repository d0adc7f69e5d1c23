package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/statecore/internal/chart"
)

// AssertionError is returned when an assertion fails.
// It includes the story to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Story    []string // Full story for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Story) > 0 {
		fmt.Fprintf(&buf, "\nFull story:\n")
		for i, line := range e.Story {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}
	return buf.String()
}

// assertStoryContains checks that a line appears in the story.
func assertStoryContains(lines []string, assertion Assertion) error {
	if slices.Contains(lines, assertion.Line) {
		return nil
	}
	return &AssertionError{
		Type:     AssertStoryContains,
		Expected: fmt.Sprintf("line %q", assertion.Line),
		Actual:   "not found in story",
		Story:    lines,
	}
}

// assertStoryOrder checks that lines appear in the specified order.
// Lines don't need to be consecutive.
func assertStoryOrder(lines []string, assertion Assertion) error {
	pos := 0
	for _, want := range assertion.Lines {
		idx := slices.Index(lines[pos:], want)
		if idx < 0 {
			actual := "not found in story"
			if slices.Contains(lines, want) {
				actual = "found out of order"
			}
			return &AssertionError{
				Type:     AssertStoryOrder,
				Expected: fmt.Sprintf("lines in order %q", assertion.Lines),
				Actual:   fmt.Sprintf("%q %s", want, actual),
				Story:    lines,
			}
		}
		pos += idx + 1
	}
	return nil
}

// assertStoryCount checks that an event name appears exactly Count times.
func assertStoryCount(result *Result, assertion Assertion) error {
	count := 0
	for _, name := range result.Story.Names() {
		if name == assertion.Event {
			count++
		}
	}
	if count == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertStoryCount,
		Expected: fmt.Sprintf("%s exactly %d times", assertion.Event, assertion.Count),
		Actual:   fmt.Sprintf("%d times", count),
		Story:    result.Lines,
	}
}

// assertFinalConfiguration compares the active states, ignoring order.
func assertFinalConfiguration(result *Result, assertion Assertion) error {
	want := slices.Sorted(slices.Values(assertion.States))
	got := slices.Sorted(slices.Values(result.Configuration))
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalConfiguration,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Story:    result.Lines,
	}
}

// assertValidation checks the chart validation outcome.
func assertValidation(result *Result, assertion Assertion) error {
	switch {
	case assertion.Rule == "" && result.Validation == nil:
		return nil
	case assertion.Rule != "" && chart.IsRule(result.Validation, chart.Rule(assertion.Rule)):
		return nil
	}

	expected := "valid chart"
	if assertion.Rule != "" {
		expected = fmt.Sprintf("violation of %s", assertion.Rule)
	}
	actual := "valid chart"
	if result.Validation != nil {
		actual = result.Validation.Error()
	}
	return &AssertionError{Type: AssertValidation, Expected: expected, Actual: actual}
}

// EvaluateAssertions runs every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertStoryContains:
			err = assertStoryContains(result.Lines, assertion)
		case AssertStoryOrder:
			err = assertStoryOrder(result.Lines, assertion)
		case AssertStoryCount:
			err = assertStoryCount(result, assertion)
		case AssertFinalConfiguration:
			err = assertFinalConfiguration(result, assertion)
		case AssertValidation:
			err = assertValidation(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
