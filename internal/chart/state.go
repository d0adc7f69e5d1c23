package chart

import (
	"fmt"
	"slices"

	"github.com/roach88/statecore/internal/ir"
)

// Kind identifies one of the five state variants.
type Kind int

const (
	KindBasic Kind = iota + 1
	KindCompound
	KindOrthogonal
	KindHistory
	KindFinal
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindCompound:
		return "compound"
	case KindOrthogonal:
		return "orthogonal"
	case KindHistory:
		return "history"
	case KindFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Contract holds preconditions, postconditions and invariants as opaque code.
type Contract struct {
	Preconditions  []string `json:"preconditions,omitempty"`
	Postconditions []string `json:"postconditions,omitempty"`
	Invariants     []string `json:"invariants,omitempty"`
}

// Empty reports whether no clause is set.
func (c Contract) Empty() bool {
	return len(c.Preconditions) == 0 && len(c.Postconditions) == 0 && len(c.Invariants) == 0
}

// Value encodes the contract as an object of string arrays.
func (c Contract) Value() ir.Object {
	return ir.NewObject(
		ir.O("preconditions", ir.Strings(c.Preconditions)),
		ir.O("postconditions", ir.Strings(c.Postconditions)),
		ir.O("invariants", ir.Strings(c.Invariants)),
	)
}

func (c Contract) clone() Contract {
	return Contract{
		Preconditions:  slices.Clone(c.Preconditions),
		Postconditions: slices.Clone(c.Postconditions),
		Invariants:     slices.Clone(c.Invariants),
	}
}

// State is a sealed interface over BasicState, CompoundState,
// OrthogonalState, HistoryState and FinalState.
//
// Capabilities are expressed by the narrower interfaces ActionState,
// TransitionState and CompositeState; dispatch with a type switch on the
// concrete variants.
type State interface {
	Name() string
	Kind() Kind
	Contract() Contract
	sealed()
}

// ActionState is a state with entry and exit code.
// Implemented by BasicState, CompoundState, OrthogonalState and FinalState.
type ActionState interface {
	State
	OnEntry() string
	OnExit() string
}

// TransitionState is a state that can be the source of transitions.
// Implemented by BasicState, CompoundState and OrthogonalState.
type TransitionState interface {
	State
	Transitions() []*Transition
	addTransition(t *Transition)
}

// CompositeState is a state with children, in registration order.
// Implemented by CompoundState and OrthogonalState.
type CompositeState interface {
	State
	Children() []string
	addChild(name string)
}

// StateOption configures a state at construction.
// Entry and exit options are ignored by HistoryState.
type StateOption func(*stateConfig)

type stateConfig struct {
	onEntry  string
	onExit   string
	contract Contract
}

// OnEntry sets the code run when the state is entered.
func OnEntry(code string) StateOption {
	return func(c *stateConfig) { c.onEntry = code }
}

// OnExit sets the code run when the state is exited.
func OnExit(code string) StateOption {
	return func(c *stateConfig) { c.onExit = code }
}

// WithContract attaches a contract.
func WithContract(contract Contract) StateOption {
	return func(c *stateConfig) { c.contract = contract.clone() }
}

func newStateConfig(opts []StateOption) stateConfig {
	var cfg stateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Shared capability fields, embedded by the variants.

type named struct {
	name     string
	contract Contract
}

func (n *named) Name() string { return n.name }
func (n *named) Contract() Contract { return n.contract.clone() }

type actions struct {
	onEntry string
	onExit  string
}

func (a *actions) OnEntry() string { return a.onEntry }
func (a *actions) OnExit() string { return a.onExit }

type transitions struct {
	list []*Transition
}

// Transitions returns copies of the outgoing transitions in registration
// order.
func (t *transitions) Transitions() []*Transition { return cloneTransitions(t.list) }
func (t *transitions) addTransition(tr *Transition) { t.list = append(t.list, tr) }

type children struct {
	names []string
}

// Children returns child names in registration order.
func (c *children) Children() []string { return slices.Clone(c.names) }
func (c *children) addChild(name string) { c.names = append(c.names, name) }

// BasicState is a leaf behavior state.
type BasicState struct {
	named
	actions
	transitions
}

// NewBasicState creates a basic state.
func NewBasicState(name string, opts ...StateOption) *BasicState {
	cfg := newStateConfig(opts)
	return &BasicState{
		named:   named{name: name, contract: cfg.contract},
		actions: actions{onEntry: cfg.onEntry, onExit: cfg.onExit},
	}
}

func (*BasicState) Kind() Kind { return KindBasic }
func (*BasicState) sealed() {}

// CompoundState is an exclusive composite: exactly one child is active.
type CompoundState struct {
	named
	actions
	transitions
	children

	initial string
}

// NewCompoundState creates a compound state. An empty initial means none.
func NewCompoundState(name, initial string, opts ...StateOption) *CompoundState {
	cfg := newStateConfig(opts)
	return &CompoundState{
		named:   named{name: name, contract: cfg.contract},
		actions: actions{onEntry: cfg.onEntry, onExit: cfg.onExit},
		initial: initial,
	}
}

// Initial is the default child entered with the state, or "".
func (s *CompoundState) Initial() string { return s.initial }
func (*CompoundState) Kind() Kind { return KindCompound }
func (*CompoundState) sealed() {}

// OrthogonalState is a parallel composite: all children are active.
type OrthogonalState struct {
	named
	actions
	transitions
	children
}

// NewOrthogonalState creates an orthogonal state.
func NewOrthogonalState(name string, opts ...StateOption) *OrthogonalState {
	cfg := newStateConfig(opts)
	return &OrthogonalState{
		named:   named{name: name, contract: cfg.contract},
		actions: actions{onEntry: cfg.onEntry, onExit: cfg.onExit},
	}
}

func (*OrthogonalState) Kind() Kind { return KindOrthogonal }
func (*OrthogonalState) sealed() {}

// HistoryState restores the previously active child of its parent.
// A deep history restores recursively. It hosts no transitions and is only
// legal as a direct child of a CompoundState.
type HistoryState struct {
	named

	initial string
	deep    bool
}

// NewHistoryState creates a history state. initial is the default memory
// used before the parent was ever exited, or "".
func NewHistoryState(name, initial string, deep bool, opts ...StateOption) *HistoryState {
	cfg := newStateConfig(opts)
	return &HistoryState{
		named:   named{name: name, contract: cfg.contract},
		initial: initial,
		deep:    deep,
	}
}

// Initial is the default memory, or "".
func (s *HistoryState) Initial() string { return s.initial }

// Deep reports deep (true) or shallow (false) semantics.
func (s *HistoryState) Deep() bool { return s.deep }
func (*HistoryState) Kind() Kind { return KindHistory }
func (*HistoryState) sealed() {}

// FinalState marks termination of its region. It has no outgoing transitions.
type FinalState struct {
	named
	actions
}

// NewFinalState creates a final state.
func NewFinalState(name string, opts ...StateOption) *FinalState {
	cfg := newStateConfig(opts)
	return &FinalState{
		named:   named{name: name, contract: cfg.contract},
		actions: actions{onEntry: cfg.onEntry, onExit: cfg.onExit},
	}
}

func (*FinalState) Kind() Kind { return KindFinal }
func (*FinalState) sealed() {}

// cloneState copies s so the chart owns its states. Children and
// transitions start empty; the builder records them as they register.
func cloneState(s State) State {
	n := func(in named) named { return named{name: in.name, contract: in.contract.clone()} }
	switch v := s.(type) {
	case *BasicState:
		return &BasicState{named: n(v.named), actions: v.actions}
	case *CompoundState:
		return &CompoundState{named: n(v.named), actions: v.actions, initial: v.initial}
	case *OrthogonalState:
		return &OrthogonalState{named: n(v.named), actions: v.actions}
	case *HistoryState:
		return &HistoryState{named: n(v.named), initial: v.initial, deep: v.deep}
	case *FinalState:
		return &FinalState{named: n(v.named), actions: v.actions}
	default:
		panic(fmt.Sprintf("chart: unknown state type %T", s))
	}
}

// Compile-time capability checks.
var (
	_ ActionState     = (*BasicState)(nil)
	_ TransitionState = (*BasicState)(nil)
	_ ActionState     = (*CompoundState)(nil)
	_ TransitionState = (*CompoundState)(nil)
	_ CompositeState  = (*CompoundState)(nil)
	_ ActionState     = (*OrthogonalState)(nil)
	_ TransitionState = (*OrthogonalState)(nil)
	_ CompositeState  = (*OrthogonalState)(nil)
	_ State           = (*HistoryState)(nil)
	_ ActionState     = (*FinalState)(nil)
)
