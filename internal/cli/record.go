package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/statecore/internal/harness"
	"github.com/roach88/statecore/internal/store"
	"github.com/roach88/statecore/internal/trace"
)

// DatabaseEnv names the environment variable that supplies the default --db.
const DatabaseEnv = "STATECORE_DB"

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string
}

// RecordResult describes a stored trace.
type RecordResult struct {
	TraceID       string   `json:"trace_id"`
	Chart         string   `json:"chart"`
	ChartHash     string   `json:"chart_hash"`
	StoryHash     string   `json:"story_hash"`
	MacroSteps    int      `json:"macro_steps"`
	Configuration []string `json:"configuration"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <chart> <trace>",
		Short: "Store an execution trace of a chart",
		Long: `Store an execution trace in a SQLite database.

The trace file uses the scenario trace format: a list of macro steps
timed with "at" or "after", each holding micro steps that name the
consumed event, the chart transition, and the exited and entered states.
Every transition and state must belong to the chart.

Examples:
  statecore record door.yaml run.yaml --db ./statecore.db
  STATECORE_DB=./statecore.db statecore record door.yaml run.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], args[1], cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)

	return cmd
}

func runRecord(opts *RecordOptions, chartPath, tracePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	c, err := loadChart(chartPath)
	if err != nil {
		return loadFailure(formatter, err)
	}

	defs, err := harness.LoadTrace(tracePath)
	if err != nil {
		return commandError(formatter, ErrCodeLoadFailed, fmt.Sprintf("failed to load trace %s", tracePath), err)
	}
	steps, err := harness.BuildTrace(c, defs)
	if err != nil {
		return commandError(formatter, ErrCodeLoadFailed, "trace does not match chart", err)
	}
	formatter.VerboseLog("Built %d macro step(s) for chart %s", len(steps), c.Name())

	st, err := openStore(opts.RootOptions, opts.Database, cmd)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to open database", err)
	}
	defer st.Close()

	id, err := st.WriteTrace(cmdContext(cmd), c, steps)
	if err != nil {
		return commandError(formatter, ErrCodeWriteFailed, "failed to write trace", err)
	}

	configuration := trace.Configuration(steps)
	if configuration == nil {
		configuration = []string{}
	}
	result := RecordResult{
		TraceID:       id,
		Chart:         c.Name(),
		ChartHash:     c.Hash(),
		StoryHash:     trace.FromTrace(steps).Hash(),
		MacroSteps:    len(steps),
		Configuration: configuration,
	}

	if formatter.JSON() {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, TraceID: id})
	}
	fmt.Fprintf(formatter.Writer, "✓ Recorded trace %s (%d macro step(s))\n", id, result.MacroSteps)
	formatter.VerboseLog("story hash %s", result.StoryHash)
	return nil
}

// addDatabaseFlag registers --db, defaulting to $STATECORE_DB.
func addDatabaseFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "db", os.Getenv(DatabaseEnv), "path to SQLite database (default $"+DatabaseEnv+")")
}

// openStore opens the trace database with a logger on the command's stderr.
func openStore(opts *RootOptions, path string, cmd *cobra.Command) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no database: pass --db or set %s", DatabaseEnv)
	}
	return store.Open(path, store.WithLogger(newLogger(opts, cmd.ErrOrStderr())))
}

// cmdContext returns the command context, or Background when the command
// runs outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
