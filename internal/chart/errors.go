package chart

import (
	"errors"
	"fmt"
)

// Build-time errors returned by Builder.
var (
	ErrEmptyName        = errors.New("state name must not be empty")
	ErrRootNotComposite = errors.New("root must be a compound or orthogonal state")
	ErrUnknownParent    = errors.New("unknown parent state")
	ErrNotComposite     = errors.New("parent state cannot have children")
	ErrNoTransitions    = errors.New("state cannot be the source of a transition")
	ErrBuilt            = errors.New("chart already built")
)

// DuplicateNameError is returned when a state name is registered twice.
// State names are unique across the whole hierarchy.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("state name %q is already used", e.Name)
}

// Rule tags one of the structural well-formedness rules.
type Rule string

const (
	// RuleC1: transitions refer to registered states.
	RuleC1 Rule = "C1"
	// RuleC2: a history state is a direct child of a compound state.
	RuleC2 Rule = "C2"
	// RuleC3: a compound state's initial names one of its children.
	RuleC3 Rule = "C3"
	// RuleC4: compound and orthogonal states have at least one child.
	RuleC4 Rule = "C4"
	// RuleC5: no transition is internal, eventless and guardless at once.
	RuleC5 Rule = "C5"
	// RuleC6: a compound state targeted by a transition declares initial.
	RuleC6 Rule = "C6"
)

// Rules lists every rule in tag order.
var Rules = []Rule{RuleC1, RuleC2, RuleC3, RuleC4, RuleC5, RuleC6}

// Description is a one-line summary of the rule.
func (r Rule) Description() string {
	switch r {
	case RuleC1:
		return "transitions refer to existing states"
	case RuleC2:
		return "history states are children of compound states"
	case RuleC3:
		return "initial states refer to a child of their parent"
	case RuleC4:
		return "composite states have at least one child"
	case RuleC5:
		return "no internal, eventless and guardless transition"
	case RuleC6:
		return "compound states with an incoming transition declare an initial state"
	default:
		return "unknown rule"
	}
}

// InvalidStatechartError reports a violated rule with the offending
// transition or state.
type InvalidStatechartError struct {
	Rule       Rule
	Message    string
	Transition *Transition // set by C1, C5, C6
	State      string      // set by C2, C3, C4, C6
}

func (e *InvalidStatechartError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Rule, e.Message)
}

// IsRule reports whether err is an InvalidStatechartError tagged rule.
// Uses errors.As to handle wrapped errors.
func IsRule(err error, rule Rule) bool {
	var ie *InvalidStatechartError
	if errors.As(err, &ie) {
		return ie.Rule == rule
	}
	return false
}
