package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectChart(t *testing.T) {
	out, _, err := execute(t, "inspect", chartPath("door.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "Chart: door\n  A door that can be opened and closed\n")
	assert.Contains(t, out, "States:\n  root (compound)\n    closed (basic)\n    opened (basic)\n")
	assert.Contains(t, out, "Transitions:\n  closed+open -> opened\n  opened+close -> closed\n  opened+tick -> [opened]\n")
}

func TestInspectChartJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "inspect", chartPath("door.yaml"))
	require.NoError(t, err)

	var info ChartInfo
	decodeResponse(t, out, &info)
	assert.Equal(t, "door", info.Name)
	assert.Equal(t, "root", info.Root)
	require.Len(t, info.States, 3)
	assert.Equal(t, StateInfo{Name: "root", Kind: "compound", Depth: 1, Children: []string{"closed", "opened"}}, info.States[0])
	assert.Equal(t, StateInfo{Name: "opened", Kind: "basic", Parent: "root", Depth: 2}, info.States[2])
	assert.Len(t, info.Transitions, 3)
}

func TestInspectState(t *testing.T) {
	out, _, err := execute(t, "inspect", chartPath("door.yaml"), "--state", "opened")
	require.NoError(t, err)

	assert.Contains(t, out, "State: opened (basic)")
	assert.Contains(t, out, "depth:       2")
	assert.Contains(t, out, "parent:      root")
	assert.Contains(t, out, "descendants: -")
	assert.Contains(t, out, "events:      close, tick")
	assert.Contains(t, out, "transition:  opened+tick -> [opened]")
}

func TestInspectStateJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "inspect", chartPath("door.yaml"), "--state", "root")
	require.NoError(t, err)

	var info StateInfo
	decodeResponse(t, out, &info)
	assert.Equal(t, "compound", info.Kind)
	assert.Empty(t, info.Ancestors)
	assert.Equal(t, []string{"closed", "opened"}, info.Descendants)
	assert.Empty(t, info.Events)
}

func TestInspectUnknownState(t *testing.T) {
	_, _, err := execute(t, "inspect", chartPath("door.yaml"), "--state", "ajar")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown state "ajar"`)
}

func TestInspectLCA(t *testing.T) {
	tests := []struct {
		name string
		lca  string
		want string
	}{
		{"siblings", "closed,opened", "lca(closed, opened) = root\n"},
		{"root has no strict ancestor", "root,closed", "root and closed have no common ancestor\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "inspect", chartPath("door.yaml"), "--lca", tt.lca)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestInspectLCANeedsTwoStates(t *testing.T) {
	_, _, err := execute(t, "inspect", chartPath("door.yaml"), "--lca", "closed")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "exactly two states")
}

func TestInspectInvalidDefinition(t *testing.T) {
	_, _, err := execute(t, "inspect", chartPath("duplicate.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeBuildFailed)
}
