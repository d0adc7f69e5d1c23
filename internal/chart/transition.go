package chart

import (
	"fmt"

	"github.com/roach88/statecore/internal/ir"
)

// Transition connects a source state to an optional target.
//
// An empty To makes the transition internal (no exit or entry); an empty
// Event makes it eventless. Guard and Action are opaque code.
type Transition struct {
	From     string
	To       string
	Event    string
	Guard    string
	Action   string
	Contract Contract
}

// Internal reports whether the transition has no target.
func (t *Transition) Internal() bool {
	return t.To == ""
}

// Eventless reports whether the transition needs no triggering event.
func (t *Transition) Eventless() bool {
	return t.Event == ""
}

// Target is the effective target: To, or the source for internal transitions.
func (t *Transition) Target() string {
	if t.To == "" {
		return t.From
	}
	return t.To
}

// Equal compares the five structural fields. Contracts are not compared.
func (t *Transition) Equal(other *Transition) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.From == other.From &&
		t.To == other.To &&
		t.Event == other.Event &&
		t.Guard == other.Guard &&
		t.Action == other.Action
}

// Value encodes the structural fields; absent fields are ir.Null.
func (t *Transition) Value() ir.Object {
	return ir.Object{
		"from":   ir.String(t.From),
		"to":     ir.OptionalString(t.To),
		"event":  ir.OptionalString(t.Event),
		"guard":  ir.OptionalString(t.Guard),
		"action": ir.OptionalString(t.Action),
	}
}

// Hash is a structural hash over the same fields as Equal, so equal
// transitions always hash alike.
func (t *Transition) Hash() string {
	return ir.MustHash(ir.DomainTransition, t.Value())
}

// String renders "from+event -> to", with "[from]" as target when internal.
func (t *Transition) String() string {
	to := t.To
	if to == "" {
		to = "[" + t.From + "]"
	}
	event := ""
	if t.Event != "" {
		event = "+" + t.Event
	}
	return t.From + event + " -> " + to
}

// TransitionFromValue decodes the output of Transition.Value.
func TransitionFromValue(v ir.Value) (*Transition, error) {
	obj, ok := v.(ir.Object)
	if !ok {
		return nil, fmt.Errorf("transition: expected object, got %T", v)
	}
	t := &Transition{}
	fields := []struct {
		key string
		dst *string
	}{
		{"from", &t.From},
		{"to", &t.To},
		{"event", &t.Event},
		{"guard", &t.Guard},
		{"action", &t.Action},
	}
	for _, f := range fields {
		switch s := obj[f.key].(type) {
		case nil, ir.Null:
		case ir.String:
			*f.dst = string(s)
		default:
			return nil, fmt.Errorf("transition: %s must be a string, got %T", f.key, s)
		}
	}
	if t.From == "" {
		return nil, fmt.Errorf("transition: missing from")
	}
	return t, nil
}

func (t *Transition) clone() *Transition {
	c := *t
	c.Contract = t.Contract.clone()
	return &c
}

func cloneTransitions(list []*Transition) []*Transition {
	if list == nil {
		return nil
	}
	out := make([]*Transition, len(list))
	for i, t := range list {
		out[i] = t.clone()
	}
	return out
}
