package compiler

// Document is the top level of a chart file.
type Document struct {
	Statechart Definition `yaml:"statechart" json:"statechart"`
}

// Definition is the source form of a statechart.
//
// YAML keys follow the space-separated style ("root state", "on entry");
// CUE and JSON use snake_case through the json tags.
type Definition struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Preamble    string   `yaml:"preamble,omitempty" json:"preamble,omitempty"`
	Root        StateDef `yaml:"root state" json:"root_state"`
}

// State types accepted in StateDef.Type. Composite and basic states are
// inferred from the presence of a children key, even an empty one.
const (
	TypeFinal          = "final"
	TypeShallowHistory = "shallow history"
	TypeDeepHistory    = "deep history"
)

// StateDef describes one state and, recursively, its children.
//
// A nil States or ParallelStates means the key is absent; a non-nil empty
// slice means it was given as an empty list.
type StateDef struct {
	Name           string          `yaml:"name" json:"name"`
	Type           string          `yaml:"type,omitempty" json:"type,omitempty"`
	Initial        string          `yaml:"initial,omitempty" json:"initial,omitempty"`
	Memory         string          `yaml:"memory,omitempty" json:"memory,omitempty"`
	OnEntry        string          `yaml:"on entry,omitempty" json:"on_entry,omitempty"`
	OnExit         string          `yaml:"on exit,omitempty" json:"on_exit,omitempty"`
	Transitions    []TransitionDef `yaml:"transitions,omitempty" json:"transitions,omitempty"`
	States         []StateDef      `yaml:"states,omitempty" json:"states,omitempty"`
	ParallelStates []StateDef      `yaml:"parallel states,omitempty" json:"parallel_states,omitempty"`
	Contract       []ContractDef   `yaml:"contract,omitempty" json:"contract,omitempty"`
}

// TransitionDef describes a transition leaving the enclosing state. An
// empty Target makes it internal.
type TransitionDef struct {
	Target   string        `yaml:"target,omitempty" json:"target,omitempty"`
	Event    string        `yaml:"event,omitempty" json:"event,omitempty"`
	Guard    string        `yaml:"guard,omitempty" json:"guard,omitempty"`
	Action   string        `yaml:"action,omitempty" json:"action,omitempty"`
	Contract []ContractDef `yaml:"contract,omitempty" json:"contract,omitempty"`
}

// ContractDef is one contract clause. Exactly one field is set.
type ContractDef struct {
	Before string `yaml:"before,omitempty" json:"before,omitempty"`
	After  string `yaml:"after,omitempty" json:"after,omitempty"`
	Always string `yaml:"always,omitempty" json:"always,omitempty"`
}

// IsHistory reports whether the state is a shallow or deep history.
func (s *StateDef) IsHistory() bool {
	return s.Type == TypeShallowHistory || s.Type == TypeDeepHistory
}

// IsComposite reports whether a states or parallel states key is present.
func (s *StateDef) IsComposite() bool {
	return s.States != nil || s.ParallelStates != nil
}

// children returns whichever child list is set.
func (s *StateDef) children() []StateDef {
	if s.ParallelStates != nil {
		return s.ParallelStates
	}
	return s.States
}

// childrenField names the key holding the children, for error paths.
func (s *StateDef) childrenField() string {
	if s.ParallelStates != nil {
		return "parallel_states"
	}
	return "states"
}
