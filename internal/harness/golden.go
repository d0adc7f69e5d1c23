package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/statecore/internal/ir"
)

// Snapshot renders the golden form of a result as canonical JSON: the
// story and the final configuration. Trace IDs and chart hashes are left
// out so unrelated chart edits do not churn golden files.
func Snapshot(name string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(ir.NewObject(
		ir.O("scenario_name", ir.String(name)),
		ir.O("story", result.Story.Value()),
		ir.O("configuration", ir.Strings(result.Configuration)),
	))
}

// RunWithGolden executes a scenario and compares its story against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the story doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
