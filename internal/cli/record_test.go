package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracePath(name string) string {
	return filepath.Join("testdata", "traces", name)
}

// recordDoorTrace stores the door_open trace in db and returns its ID.
func recordDoorTrace(t *testing.T, db string) string {
	t.Helper()
	out, _, err := execute(t, "--format", "json", "record", chartPath("door.yaml"), tracePath("door_open.yaml"), "--db", db)
	require.NoError(t, err)
	resp := decodeResponse(t, out, nil)
	require.NotEmpty(t, resp.TraceID)
	return resp.TraceID
}

func TestRecordJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")

	out, _, err := execute(t, "--format", "json", "record", chartPath("door.yaml"), tracePath("door_open.yaml"), "--db", db)
	require.NoError(t, err)

	var result RecordResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, resp.TraceID, result.TraceID)
	assert.Equal(t, "door", result.Chart)
	assert.Len(t, result.ChartHash, 64)
	assert.Len(t, result.StoryHash, 64)
	assert.Equal(t, 3, result.MacroSteps)
	assert.Equal(t, []string{"root", "opened"}, result.Configuration)
}

func TestRecordText(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")

	out, _, err := execute(t, "record", chartPath("door.yaml"), tracePath("door_open.yaml"), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Recorded trace ")
	assert.Contains(t, out, "(3 macro step(s))")
}

func TestRecordUsesDatabaseEnv(t *testing.T) {
	db := filepath.Join(t.TempDir(), "env.db")
	t.Setenv(DatabaseEnv, db)

	_, _, err := execute(t, "record", chartPath("door.yaml"), tracePath("door_open.yaml"))
	require.NoError(t, err)

	out, _, err := execute(t, "story", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "door")
}

func TestRecordWithoutDatabase(t *testing.T) {
	t.Setenv(DatabaseEnv, "")

	_, _, err := execute(t, "record", chartPath("door.yaml"), tracePath("door_open.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no database")
}

func TestRecordTraceNotInChart(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")

	_, _, err := execute(t, "record", chartPath("broken.yaml"), tracePath("door_open.yaml"), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "trace does not match chart")
}

func TestRecordMissingTraceFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")

	_, _, err := execute(t, "record", chartPath("door.yaml"), tracePath("missing.yaml"), "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
}

func TestStoryOfRecordedTrace(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")
	id := recordDoorTrace(t, db)

	out, _, err := execute(t, "story", id, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "started\n"+
		"entered state=root\n"+
		"entered state=closed\n"+
		"pause 2s\n"+
		"consumed event=Event(open)\n"+
		"exited state=closed\n"+
		"processed event=Event(open) source=closed target=opened\n"+
		"entered state=opened\n"+
		"pause 250ms\n"+
		"consumed event=Event(tick)\n"+
		"processed event=Event(tick) source=opened target=None\n"+
		"stopped\n", out)
}

func TestStoryJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")
	id := recordDoorTrace(t, db)

	out, _, err := execute(t, "--format", "json", "story", id, "--db", db)
	require.NoError(t, err)

	var result StoryResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, id, resp.TraceID)
	assert.Equal(t, id, result.ID)
	assert.Equal(t, "door", result.ChartName)
	assert.Equal(t, int64(1), result.Seq)
	assert.Len(t, result.Story, 12)
	assert.Equal(t, []string{"root", "opened"}, result.Configuration)
}

func TestStoryUnknownTrace(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")

	out, _, err := execute(t, "story", "nope", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "trace not found: nope")
}

func TestStoryListFilters(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")
	first := recordDoorTrace(t, db)
	second := recordDoorTrace(t, db)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", nil, []string{first, second}},
		{"by chart", []string{"--chart", "door"}, []string{first, second}},
		{"other chart", []string{"--chart", "elevator"}, nil},
		{"by consumed event", []string{"--event", "open"}, []string{first, second}},
		{"event never consumed", []string{"--event", "close"}, nil},
		{"event and chart", []string{"--event", "tick", "--chart", "elevator"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "story", "--db", db}, tt.args...)
			out, _, err := execute(t, args...)
			require.NoError(t, err)

			var list TraceList
			decodeResponse(t, out, &list)
			var ids []string
			for _, s := range list.Traces {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStoryListEmptyText(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")

	out, _, err := execute(t, "story", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No traces found.\n", out)
}
