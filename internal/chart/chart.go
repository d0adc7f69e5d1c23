package chart

import (
	"fmt"
	"slices"

	"github.com/roach88/statecore/internal/ir"
)

// Chart is a frozen statechart: a tree of uniquely named states plus a flat
// list of transitions in registration order.
//
// A Chart is read-only after Build and safe for concurrent use. Hierarchy
// queries are memoized on first use.
type Chart struct {
	name        string
	description string
	bootstrap   string
	root        string

	states      map[string]State
	order       []string
	parent      map[string]string
	transitions []*Transition

	ancestors   memo[string, []string]
	descendants memo[string, []string]
	depth       memo[string, int]
	lca         memo[[2]string, lcaResult]
	events      memo[string, []string]
}

// Name returns the chart name.
func (c *Chart) Name() string { return c.name }

// Description returns the chart description, possibly empty.
func (c *Chart) Description() string { return c.description }

// Bootstrap returns the opaque code run before the root is entered.
func (c *Chart) Bootstrap() string { return c.bootstrap }

// Root returns the name of the root state.
func (c *Chart) Root() string { return c.root }

// States returns state names in registration order, root first.
func (c *Chart) States() []string { return slices.Clone(c.order) }

// StateFor looks up a state by name.
func (c *Chart) StateFor(name string) (State, bool) {
	s, ok := c.states[name]
	return s, ok
}

// ParentFor returns the parent of name. The root and unknown names report
// false.
func (c *Chart) ParentFor(name string) (string, bool) {
	p, ok := c.parent[name]
	if !ok || p == "" {
		return "", false
	}
	return p, true
}

// ChildrenFor returns the direct children of name in registration order.
func (c *Chart) ChildrenFor(name string) []string {
	if cs, ok := c.states[name].(CompositeState); ok {
		return cs.Children()
	}
	return nil
}

// Transitions returns copies of every transition in registration order.
func (c *Chart) Transitions() []*Transition { return cloneTransitions(c.transitions) }

// TransitionsFrom returns copies of the transitions whose source is name.
func (c *Chart) TransitionsFrom(name string) []*Transition {
	var out []*Transition
	for _, t := range c.transitions {
		if t.From == name {
			out = append(out, t.clone())
		}
	}
	return out
}

// Events returns the distinct event names used by any transition, sorted.
func (c *Chart) Events() []string {
	return c.EventsFor(c.order...)
}

// EventsFor returns the distinct event names of transitions leaving any
// of the given states, sorted. Eventless transitions contribute nothing.
func (c *Chart) EventsFor(states ...string) []string {
	var out []string
	for _, name := range states {
		out = append(out, c.eventsOf(name)...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (c *Chart) eventsOf(name string) []string {
	return c.events.get(name, func() []string {
		var names []string
		for _, t := range c.transitions {
			if t.From == name && t.Event != "" {
				names = append(names, t.Event)
			}
		}
		return names
	})
}

// Value returns the canonical description of the chart.
func (c *Chart) Value() ir.Object {
	states := make(ir.Array, 0, len(c.order))
	for _, name := range c.order {
		states = append(states, c.stateValue(c.states[name]))
	}
	transitions := make(ir.Array, 0, len(c.transitions))
	for _, t := range c.transitions {
		transitions = append(transitions, t.Value())
	}
	return ir.NewObject(
		ir.O("name", ir.String(c.name)),
		ir.O("description", ir.OptionalString(c.description)),
		ir.O("bootstrap", ir.OptionalString(c.bootstrap)),
		ir.O("root", ir.String(c.root)),
		ir.O("states", states),
		ir.O("transitions", transitions),
	)
}

func (c *Chart) stateValue(s State) ir.Object {
	parent, _ := c.ParentFor(s.Name())
	obj := ir.NewObject(
		ir.O("name", ir.String(s.Name())),
		ir.O("kind", ir.String(s.Kind().String())),
		ir.O("parent", ir.OptionalString(parent)),
		ir.O("contract", s.Contract().Value()),
	)
	if as, ok := s.(ActionState); ok {
		obj["on_entry"] = ir.OptionalString(as.OnEntry())
		obj["on_exit"] = ir.OptionalString(as.OnExit())
	}
	switch st := s.(type) {
	case *CompoundState:
		obj["initial"] = ir.OptionalString(st.Initial())
	case *HistoryState:
		obj["initial"] = ir.OptionalString(st.Initial())
		obj["deep"] = ir.Bool(st.Deep())
	}
	return obj
}

// Hash fingerprints the chart structure. Two charts with the same states,
// transitions and metadata in the same order hash equal.
func (c *Chart) Hash() string {
	return ir.MustHash(ir.DomainChart, c.Value())
}

func (c *Chart) String() string {
	return fmt.Sprintf("statechart %q", c.name)
}

// Warm populates every memoized query. Optional; queries fill caches lazily.
func (c *Chart) Warm() {
	for _, name := range c.order {
		c.AncestorsFor(name)
		c.DescendantsFor(name)
		c.DepthFor(name)
		c.eventsOf(name)
	}
}
