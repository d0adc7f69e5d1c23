package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/statecore/internal/chart"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	State string   // show structural queries for one state
	LCA   []string // two states whose least common ancestor to show
}

// ChartInfo is the structure of a whole chart.
type ChartInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Root        string      `json:"root"`
	Hash        string      `json:"hash"`
	States      []StateInfo `json:"states"`
	Transitions []string    `json:"transitions"`
}

// StateInfo describes one state and its position in the hierarchy.
type StateInfo struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Parent      string   `json:"parent,omitempty"`
	Depth       int      `json:"depth"`
	Children    []string `json:"children,omitempty"`
	Ancestors   []string `json:"ancestors,omitempty"`
	Descendants []string `json:"descendants,omitempty"`
	Transitions []string `json:"transitions,omitempty"`
	Events      []string `json:"events,omitempty"`
}

// LCAInfo is the least common ancestor of two states.
type LCAInfo struct {
	States   []string `json:"states"`
	Ancestor string   `json:"ancestor,omitempty"`
	Found    bool     `json:"found"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <chart>",
		Short: "Show the state hierarchy and structural queries",
		Long: `Show the structure of a statechart.

Without flags, prints every state in registration order, indented by
depth, followed by every transition. --state prints the ancestors,
descendants, depth and outgoing transitions of one state. --lca prints
the least common ancestor of two states.

Examples:
  statecore inspect door.yaml
  statecore inspect door.yaml --state opened
  statecore inspect door.yaml --lca opened,closed --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "state to query")
	cmd.Flags().StringSliceVar(&opts.LCA, "lca", nil, "two states whose least common ancestor to show")
	cmd.MarkFlagsMutuallyExclusive("state", "lca")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	c, err := loadChart(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	switch {
	case opts.State != "":
		if err := requireStates(c, opts.State); err != nil {
			return loadFailure(formatter, err)
		}
		return outputState(formatter, stateDetail(c, opts.State))
	case len(opts.LCA) > 0:
		if len(opts.LCA) != 2 {
			return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("--lca needs exactly two states, got %d", len(opts.LCA)), nil)
		}
		if err := requireStates(c, opts.LCA...); err != nil {
			return loadFailure(formatter, err)
		}
		ancestor, ok := c.LeastCommonAncestor(opts.LCA[0], opts.LCA[1])
		return outputLCA(formatter, LCAInfo{States: opts.LCA, Ancestor: ancestor, Found: ok})
	default:
		return outputChart(formatter, chartInfo(c))
	}
}

func stateInfo(c *chart.Chart, name string) StateInfo {
	state, _ := c.StateFor(name)
	parent, _ := c.ParentFor(name)
	return StateInfo{
		Name:     name,
		Kind:     state.Kind().String(),
		Parent:   parent,
		Depth:    c.DepthFor(name),
		Children: c.ChildrenFor(name),
	}
}

func stateDetail(c *chart.Chart, name string) StateInfo {
	info := stateInfo(c, name)
	info.Ancestors = c.AncestorsFor(name)
	info.Descendants = c.DescendantsFor(name)
	info.Transitions = transitionStrings(c.TransitionsFrom(name))
	info.Events = c.EventsFor(name)
	return info
}

func chartInfo(c *chart.Chart) ChartInfo {
	states := make([]StateInfo, 0, len(c.States()))
	for _, name := range c.States() {
		states = append(states, stateInfo(c, name))
	}
	return ChartInfo{
		Name:        c.Name(),
		Description: c.Description(),
		Root:        c.Root(),
		Hash:        c.Hash(),
		States:      states,
		Transitions: transitionStrings(c.Transitions()),
	}
}

func transitionStrings(ts []*chart.Transition) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func outputChart(formatter *OutputFormatter, info ChartInfo) error {
	if formatter.JSON() {
		return formatter.Success(info)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Chart: %s\n", info.Name)
	if info.Description != "" {
		fmt.Fprintf(w, "  %s\n", info.Description)
	}
	fmt.Fprintf(w, "Hash: %s\n", info.Hash)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "States:")
	for _, s := range info.States {
		fmt.Fprintf(w, "  %s%s (%s)\n", strings.Repeat("  ", s.Depth-1), s.Name, s.Kind)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Transitions:")
	for _, t := range info.Transitions {
		fmt.Fprintf(w, "  %s\n", t)
	}
	return nil
}

func outputState(formatter *OutputFormatter, info StateInfo) error {
	if formatter.JSON() {
		return formatter.Success(info)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "State: %s (%s)\n", info.Name, info.Kind)
	fmt.Fprintf(w, "  depth:       %d\n", info.Depth)
	fmt.Fprintf(w, "  parent:      %s\n", orNone(info.Parent))
	fmt.Fprintf(w, "  ancestors:   %s\n", joinOrNone(info.Ancestors))
	fmt.Fprintf(w, "  children:    %s\n", joinOrNone(info.Children))
	fmt.Fprintf(w, "  descendants: %s\n", joinOrNone(info.Descendants))
	fmt.Fprintf(w, "  events:      %s\n", joinOrNone(info.Events))
	for _, t := range info.Transitions {
		fmt.Fprintf(w, "  transition:  %s\n", t)
	}
	return nil
}

func outputLCA(formatter *OutputFormatter, info LCAInfo) error {
	if formatter.JSON() {
		return formatter.Success(info)
	}

	if !info.Found {
		fmt.Fprintf(formatter.Writer, "%s and %s have no common ancestor\n", info.States[0], info.States[1])
		return nil
	}
	fmt.Fprintf(formatter.Writer, "lca(%s, %s) = %s\n", info.States[0], info.States[1], info.Ancestor)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrNone(names []string) string {
	return orNone(strings.Join(names, ", "))
}
