package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statecore/internal/store"
	"github.com/roach88/statecore/internal/trace"
)

// StoryOptions holds flags for the story command.
type StoryOptions struct {
	*RootOptions
	Database string
	Chart    string // list filter: chart name
	Event    string // list filter: story event name
}

// StoryResult is the story reconstructed from one stored trace.
type StoryResult struct {
	store.Summary
	Story         []string `json:"story"`
	Configuration []string `json:"configuration"`
}

// TraceList is the result of listing stored traces.
type TraceList struct {
	Traces []store.Summary `json:"traces"`
}

// NewStoryCommand creates the story command.
func NewStoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "story [trace-id]",
		Short: "Reconstruct the story of a stored trace",
		Long: `Reconstruct the story told by a stored trace.

The story starts with "started", has a pause wherever time advances,
then per macro step the consumed event, and per micro step the exited
states, the processed transition and the entered states. It ends with
"stopped".

Without a trace ID, lists stored traces in recording order, optionally
filtered by chart name or by the name of a consumed event.

Examples:
  statecore story 0192f0c1-... --db ./statecore.db
  statecore story --db ./statecore.db --chart door
  statecore story --db ./statecore.db --event open --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListTraces(opts, cmd)
			}
			return runStory(opts, args[0], cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)
	cmd.Flags().StringVar(&opts.Chart, "chart", "", "list only traces of this chart")
	cmd.Flags().StringVar(&opts.Event, "event", "", "list only traces that consumed this event")

	return cmd
}

func runStory(opts *StoryOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.RootOptions, opts.Database, cmd)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to open database", err)
	}
	defer st.Close()

	rec, err := st.ReadTrace(cmdContext(cmd), id)
	if errors.Is(err, store.ErrTraceNotFound) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("trace not found: %s", id), nil)
	}
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to read trace", err)
	}

	configuration := trace.Configuration(rec.Steps)
	if configuration == nil {
		configuration = []string{}
	}
	result := StoryResult{
		Summary:       rec.Summary,
		Story:         rec.Story().Lines(),
		Configuration: configuration,
	}

	if formatter.JSON() {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, TraceID: id})
	}

	w := formatter.Writer
	formatter.VerboseLog("Trace %s of chart %s (seq %d)", rec.ID, rec.ChartName, rec.Seq)
	for _, line := range result.Story {
		fmt.Fprintln(w, line)
	}
	return nil
}

func runListTraces(opts *StoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.RootOptions, opts.Database, cmd)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	var summaries []store.Summary
	if opts.Event != "" {
		summaries, err = st.TracesWithEvent(ctx, opts.Event)
		summaries = filterByChart(summaries, opts.Chart)
	} else {
		summaries, err = st.ListTraces(ctx, opts.Chart)
	}
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to list traces", err)
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}

	if formatter.JSON() {
		return formatter.Success(TraceList{Traces: summaries})
	}

	w := formatter.Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No traces found.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.Seq, s.ID, s.ChartName)
	}
	return nil
}

func filterByChart(summaries []store.Summary, chartName string) []store.Summary {
	if chartName == "" {
		return summaries
	}
	var out []store.Summary
	for _, s := range summaries {
		if s.ChartName == chartName {
			out = append(out, s)
		}
	}
	return out
}
