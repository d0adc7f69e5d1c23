package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "testdata/scenarios"

// writeDoorScenario writes a door scenario into dir with an absolute chart
// path and the given extra assertion lines.
func writeDoorScenario(t *testing.T, dir, name, assertions string) string {
	t.Helper()
	chart, err := filepath.Abs(chartPath("door.yaml"))
	require.NoError(t, err)

	content := strings.Join([]string{
		"name: " + name,
		"description: door opens",
		"chart: " + chart,
		"trace:",
		"  - steps:",
		"      - entered: [root, closed]",
		"  - after: 1s",
		"    steps:",
		"      - event: open",
		"        transition: {from: closed, to: opened, event: open}",
		"        exited: [closed]",
		"        entered: [opened]",
		"assertions:",
		assertions,
	}, "\n")
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTestCommandPasses(t *testing.T) {
	out, _, err := execute(t, "test", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ door_cycle")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", scenariosDir)
	require.NoError(t, err)

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, result.Passed)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "door_cycle", result.Scenarios[0].Name)
	assert.Equal(t, "trace-0001", result.Scenarios[0].TraceID)
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", t.TempDir())
	require.NoError(t, err)

	var result TestResult
	decodeResponse(t, out, &result)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Scenarios)
}

func TestTestCommandFilter(t *testing.T) {
	out, _, err := execute(t, "test", scenariosDir, "--filter", "elevator*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	_, _, err = execute(t, "test", scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeDoorScenario(t, dir, "door_fail", "  - type: story_contains\n    line: \"entered state=ajar\"\n")

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ door_fail")
	assert.Contains(t, out, `line "entered state=ajar"`)
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeDoorScenario(t, dir, "door_fail", "  - type: final_configuration\n    states: [root, closed]\n")

	out, _, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Scenarios[0].Errors, 1)
	assert.Contains(t, result.Scenarios[0].Errors[0], "final_configuration")
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: bad\n"), 0o644))

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandUpdateGolden(t *testing.T) {
	dir := t.TempDir()
	writeDoorScenario(t, dir, "door_open", "  - type: final_configuration\n    states: [root, opened]\n")

	out, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ door_open (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "door_open.golden"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(golden), `{"configuration":["root","opened"],"scenario_name":"door_open"`))

	out, _, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ door_open\n")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeDoorScenario(t, dir, "door_open", "  - type: validation\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "door_open.golden"), []byte("{}"), 0o644))

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "story does not match golden file")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "golden", "door.golden"), goldenFilePath(filepath.Join("a", "door.yaml")))
}
