package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidChart(t *testing.T) {
	out, _, err := execute(t, "validate", chartPath("door.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Chart door is valid")
}

func TestValidateValidChartJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", chartPath("door.yaml"))
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, "door", result.Chart)
	assert.Len(t, result.Hash, 64)
	assert.Empty(t, result.Errors)
}

func TestValidateRuleViolation(t *testing.T) {
	out, _, err := execute(t, "validate", chartPath("broken.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "C6: compound state busy is targeted by idle+start -> busy but has no initial state")
}

func TestValidateRuleViolationJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", chartPath("broken.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "C6", resp.Error.Code)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ValidationIssue{
		Code:       "C6",
		Message:    "compound state busy is targeted by idle+start -> busy but has no initial state",
		State:      "busy",
		Transition: "idle+start -> busy",
	}, result.Errors[0])
}

func TestValidateSkipRule(t *testing.T) {
	out, _, err := execute(t, "validate", chartPath("broken.yaml"), "--skip", "C6")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Chart broken is valid")
}

func TestValidateSkipUnknownRule(t *testing.T) {
	_, _, err := execute(t, "validate", chartPath("door.yaml"), "--skip", "C9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown rule "C9"`)
}

func TestValidateExemptInternal(t *testing.T) {
	_, _, err := execute(t, "validate", chartPath("internal.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, _, err := execute(t, "validate", chartPath("internal.yaml"), "--exempt-internal")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Chart internal is valid")
}

func TestValidateDefinitionErrors(t *testing.T) {
	out, _, err := execute(t, "validate", chartPath("duplicate.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E103")
}

func TestValidateReportsEventlessCycles(t *testing.T) {
	out, _, err := execute(t, "validate", chartPath("loop.cue"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Chart loop is valid")
	assert.Contains(t, out, "warning: Eventless transitions may loop: a → b → a")
}

func TestValidateNonExistentFile(t *testing.T) {
	out, _, err := execute(t, "validate", chartPath("missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "chart not found")
}

func TestValidateVerboseGoesToStderr(t *testing.T) {
	out, errOut, err := execute(t, "--format", "json", "-v", "validate", chartPath("door.yaml"))
	require.NoError(t, err)
	decodeResponse(t, out, nil)
	assert.Contains(t, errOut, "Loaded definition door")
}
