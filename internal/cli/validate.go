package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/statecore/internal/chart"
	"github.com/roach88/statecore/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ExemptInternal bool     // skip internal transitions when checking C6
	Skip           []string // rule tags to leave unchecked
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                    `json:"valid"`
	Chart    string                  `json:"chart,omitempty"`
	Hash     string                  `json:"hash,omitempty"`
	Errors   []ValidationIssue       `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning `json:"warnings,omitempty"`
}

// ValidationIssue is one definition error (E1xx) or rule violation (C1-C6).
type ValidationIssue struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Line       int    `json:"line,omitempty"`
	State      string `json:"state,omitempty"`
	Transition string `json:"transition,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <chart>",
		Short: "Check a chart definition and the rules C1-C6",
		Long: `Check a statechart definition (.yaml, .yml or .cue).

The definition is checked first (names, state types, misplaced fields).
The compiled chart is then checked against every rule C1-C6 and all
violations are reported in rule order. Eventless cycles are reported as
warnings and never fail validation.

Exit codes:
  0 - Chart is valid
  1 - Definition errors or rule violations
  2 - Command error (file not found, parse error)

Examples:
  statecore validate door.yaml
  statecore validate door.cue --exempt-internal
  statecore validate door.yaml --skip C6 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ExemptInternal, "exempt-internal", false, "do not check internal transitions against C6")
	cmd.Flags().StringSliceVar(&opts.Skip, "skip", nil, "rule tags to skip (e.g. C6)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	validateOpts, err := validateOptions(opts)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	def, err := loadDefinition(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded definition %s from %s", def.Name, path)

	c, err := compiler.Compile(def)
	if err != nil {
		var defErrs compiler.ValidationErrors
		if errors.As(err, &defErrs) {
			return outputValidationErrors(formatter, ValidationResult{
				Chart:  def.Name,
				Errors: definitionIssues(defErrs),
			})
		}
		return commandError(formatter, ErrCodeBuildFailed, fmt.Sprintf("failed to compile %s", path), err)
	}

	result := ValidationResult{
		Chart:    c.Name(),
		Hash:     c.Hash(),
		Errors:   ruleIssues(c.Check(validateOpts...)),
		Warnings: compiler.AnalyzeEventlessCycles(c),
	}
	formatter.VerboseLog("Checked %d state(s) and %d transition(s)", len(c.States()), len(c.Transitions()))

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}
	result.Valid = true
	return outputValidateSuccess(formatter, result)
}

// validateOptions translates flags into chart validation options.
func validateOptions(opts *ValidateOptions) ([]chart.ValidateOption, error) {
	var out []chart.ValidateOption
	if opts.ExemptInternal {
		out = append(out, chart.ExemptInternalTransitions())
	}
	for _, tag := range opts.Skip {
		rule := chart.Rule(tag)
		if !slices.Contains(chart.Rules, rule) {
			return nil, fmt.Errorf("unknown rule %q: must be one of %v", tag, chart.Rules)
		}
		out = append(out, chart.WithoutRule(rule))
	}
	return out, nil
}

func definitionIssues(errs compiler.ValidationErrors) []ValidationIssue {
	issues := make([]ValidationIssue, len(errs))
	for i, e := range errs {
		issues[i] = ValidationIssue{Code: e.Code, Message: e.Message, Field: e.Field, Line: e.Line}
	}
	return issues
}

func ruleIssues(violations []*chart.InvalidStatechartError) []ValidationIssue {
	issues := make([]ValidationIssue, len(violations))
	for i, v := range violations {
		issues[i] = ValidationIssue{Code: string(v.Rule), Message: v.Message, State: v.State}
		if v.Transition != nil {
			issues[i].Transition = v.Transition.String()
		}
	}
	return issues
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Chart %s is valid\n", result.Chart)
	formatter.VerboseLog("hash %s", result.Hash)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  %s: %s\n", warning.Level, warning.Message)
	}
	return nil
}

// outputValidationErrors outputs every definition error or rule violation.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.JSON() {
		first := result.Errors[0]
		if err := formatter.Failure(first.Code, first.Message, result); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, issue := range result.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(w, "line %d\n", issue.Line)
		}
		fmt.Fprintf(w, "  %s: %s\n\n", issue.Code, issue.Message)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  %s: %s\n", warning.Level, warning.Message)
	}
	return exitErr
}
