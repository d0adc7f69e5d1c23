package compiler

import (
	"fmt"

	"github.com/roach88/statecore/internal/chart"
)

// Compile validates def and builds the chart it describes.
//
// States are registered depth first in document order, each followed by
// its own transitions, so chart registration order matches the source.
// Compile does not run chart validation; call Chart.Validate on the result.
func Compile(def *Definition) (*chart.Chart, error) {
	if errs := Validate(def); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	root := newState(&def.Root)
	b, err := chart.NewBuilder(def.Name, root,
		chart.WithDescription(def.Description),
		chart.WithBootstrap(def.Preamble))
	if err != nil {
		return nil, fmt.Errorf("root_state: %w", err)
	}

	if err := registerTransitions(b, &def.Root, "root_state"); err != nil {
		return nil, err
	}
	if err := registerChildren(b, &def.Root, "root_state"); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func registerChildren(b *chart.Builder, parent *StateDef, path string) error {
	children := parent.children()
	for i := range children {
		child := &children[i]
		childPath := fmt.Sprintf("%s.%s[%d]", path, parent.childrenField(), i)
		if err := b.RegisterState(newState(child), parent.Name); err != nil {
			return fmt.Errorf("%s: %w", childPath, err)
		}
		if err := registerTransitions(b, child, childPath); err != nil {
			return err
		}
		if err := registerChildren(b, child, childPath); err != nil {
			return err
		}
	}
	return nil
}

func registerTransitions(b *chart.Builder, s *StateDef, path string) error {
	for i, td := range s.Transitions {
		t := &chart.Transition{
			From:     s.Name,
			To:       td.Target,
			Event:    td.Event,
			Guard:    td.Guard,
			Action:   td.Action,
			Contract: newContract(td.Contract),
		}
		if err := b.RegisterTransition(t); err != nil {
			return fmt.Errorf("%s.transitions[%d]: %w", path, i, err)
		}
	}
	return nil
}

// newState maps a definition to its state variant.
func newState(s *StateDef) chart.State {
	opts := []chart.StateOption{chart.WithContract(newContract(s.Contract))}
	if s.OnEntry != "" {
		opts = append(opts, chart.OnEntry(s.OnEntry))
	}
	if s.OnExit != "" {
		opts = append(opts, chart.OnExit(s.OnExit))
	}

	switch {
	case s.Type == TypeFinal:
		return chart.NewFinalState(s.Name, opts...)
	case s.IsHistory():
		return chart.NewHistoryState(s.Name, s.Memory, s.Type == TypeDeepHistory, opts...)
	case s.ParallelStates != nil:
		return chart.NewOrthogonalState(s.Name, opts...)
	case s.States != nil:
		return chart.NewCompoundState(s.Name, s.Initial, opts...)
	default:
		return chart.NewBasicState(s.Name, opts...)
	}
}

func newContract(clauses []ContractDef) chart.Contract {
	var c chart.Contract
	for _, clause := range clauses {
		switch {
		case clause.Before != "":
			c.Preconditions = append(c.Preconditions, clause.Before)
		case clause.After != "":
			c.Postconditions = append(c.Postconditions, clause.After)
		case clause.Always != "":
			c.Invariants = append(c.Invariants, clause.Always)
		}
	}
	return c
}

// Decompile converts a chart back to its source form.
// For a chart produced by Compile, compiling the result yields the same
// chart hash.
func Decompile(c *chart.Chart) *Definition {
	return &Definition{
		Name:        c.Name(),
		Description: c.Description(),
		Preamble:    c.Bootstrap(),
		Root:        decompileState(c, c.Root()),
	}
}

func decompileState(c *chart.Chart, name string) StateDef {
	state, _ := c.StateFor(name)
	def := StateDef{Name: name, Contract: contractDefs(state.Contract())}

	if as, ok := state.(chart.ActionState); ok {
		def.OnEntry = as.OnEntry()
		def.OnExit = as.OnExit()
	}

	children := []StateDef{}
	for _, child := range c.ChildrenFor(name) {
		children = append(children, decompileState(c, child))
	}

	switch s := state.(type) {
	case *chart.CompoundState:
		def.Initial = s.Initial()
		def.States = children
	case *chart.OrthogonalState:
		def.ParallelStates = children
	case *chart.HistoryState:
		def.Type = TypeShallowHistory
		if s.Deep() {
			def.Type = TypeDeepHistory
		}
		def.Memory = s.Initial()
	case *chart.FinalState:
		def.Type = TypeFinal
	}

	for _, t := range c.TransitionsFrom(name) {
		def.Transitions = append(def.Transitions, TransitionDef{
			Target:   t.To,
			Event:    t.Event,
			Guard:    t.Guard,
			Action:   t.Action,
			Contract: contractDefs(t.Contract),
		})
	}
	return def
}

func contractDefs(c chart.Contract) []ContractDef {
	var out []ContractDef
	for _, s := range c.Preconditions {
		out = append(out, ContractDef{Before: s})
	}
	for _, s := range c.Postconditions {
		out = append(out, ContractDef{After: s})
	}
	for _, s := range c.Invariants {
		out = append(out, ContractDef{Always: s})
	}
	return out
}
