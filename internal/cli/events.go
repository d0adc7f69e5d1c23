package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// EventsResult lists the event names a chart, or some of its states, react to.
type EventsResult struct {
	Chart  string   `json:"chart"`
	States []string `json:"states,omitempty"`
	Events []string `json:"events"`
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events <chart> [state...]",
		Short: "List the event names that trigger transitions",
		Long: `List the sorted, distinct event names of a chart.

With states, only transitions leaving those states are considered.
Eventless transitions contribute nothing.

Examples:
  statecore events door.yaml
  statecore events door.yaml opened closed`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runEvents(opts *RootOptions, path string, states []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	c, err := loadChart(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	if err := requireStates(c, states...); err != nil {
		return loadFailure(formatter, err)
	}

	result := EventsResult{Chart: c.Name(), States: states, Events: c.Events()}
	if len(states) > 0 {
		result.Events = c.EventsFor(states...)
	}
	if result.Events == nil {
		result.Events = []string{}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	for _, name := range result.Events {
		fmt.Fprintln(formatter.Writer, name)
	}
	return nil
}
