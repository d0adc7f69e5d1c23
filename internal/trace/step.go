package trace

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/statecore/internal/chart"
	"github.com/roach88/statecore/internal/ir"
)

// MicroStep is one atomic hierarchy change. Event and Transition are nil
// when absent; a step without a transition is a stabilization step.
type MicroStep struct {
	Event      *chart.Event
	Transition *chart.Transition
	Exited     []string
	Entered    []string
}

// Value encodes the step; absent fields are ir.Null.
func (m MicroStep) Value() ir.Object {
	obj := ir.NewObject(
		ir.O("event", ir.Null{}),
		ir.O("transition", ir.Null{}),
		ir.O("exited", ir.Strings(m.Exited)),
		ir.O("entered", ir.Strings(m.Entered)),
	)
	if m.Event != nil {
		obj["event"] = m.Event.Value()
	}
	if m.Transition != nil {
		obj["transition"] = m.Transition.Value()
	}
	return obj
}

func (m MicroStep) String() string {
	event, transition := "None", "None"
	if m.Event != nil {
		event = m.Event.String()
	}
	if m.Transition != nil {
		transition = m.Transition.String()
	}
	return fmt.Sprintf("MicroStep(%s, %s, >%v, <%v)", event, transition, m.Entered, m.Exited)
}

// MacroStep is the ordered micro steps produced at Time.
//
// Derived accessors are recomputed on every call.
type MacroStep struct {
	Time  time.Duration
	Steps []MicroStep
}

// Event returns the first event among the steps, or nil.
func (m MacroStep) Event() *chart.Event {
	for _, s := range m.Steps {
		if s.Event != nil {
			return s.Event
		}
	}
	return nil
}

// Transitions returns the fired transitions in step order.
func (m MacroStep) Transitions() []*chart.Transition {
	var out []*chart.Transition
	for _, s := range m.Steps {
		if s.Transition != nil {
			out = append(out, s.Transition)
		}
	}
	return out
}

// EnteredStates concatenates the entered states of every step.
func (m MacroStep) EnteredStates() []string {
	var out []string
	for _, s := range m.Steps {
		out = append(out, s.Entered...)
	}
	return out
}

// ExitedStates concatenates the exited states of every step.
func (m MacroStep) ExitedStates() []string {
	var out []string
	for _, s := range m.Steps {
		out = append(out, s.Exited...)
	}
	return out
}

// Value encodes the macro step with Time in nanoseconds.
func (m MacroStep) Value() ir.Object {
	steps := make(ir.Array, len(m.Steps))
	for i, s := range m.Steps {
		steps[i] = s.Value()
	}
	return ir.NewObject(
		ir.O("time_ns", ir.Int(m.Time.Nanoseconds())),
		ir.O("steps", steps),
	)
}

func (m MacroStep) String() string {
	event := "None"
	if e := m.Event(); e != nil {
		event = e.String()
	}
	transitions := make([]string, 0, len(m.Steps))
	for _, t := range m.Transitions() {
		transitions = append(transitions, t.String())
	}
	return fmt.Sprintf("MacroStep@%s(%s, [%s], >%v, <%v)",
		m.Time, event, strings.Join(transitions, ", "), m.EnteredStates(), m.ExitedStates())
}

// MicroStepFromValue decodes the output of MicroStep.Value.
func MicroStepFromValue(v ir.Value) (MicroStep, error) {
	obj, ok := v.(ir.Object)
	if !ok {
		return MicroStep{}, fmt.Errorf("micro step: expected object, got %T", v)
	}
	var m MicroStep
	if raw, ok := obj["event"]; ok && !isNull(raw) {
		e, err := chart.EventFromValue(raw)
		if err != nil {
			return MicroStep{}, fmt.Errorf("micro step: %w", err)
		}
		m.Event = &e
	}
	if raw, ok := obj["transition"]; ok && !isNull(raw) {
		t, err := chart.TransitionFromValue(raw)
		if err != nil {
			return MicroStep{}, fmt.Errorf("micro step: %w", err)
		}
		m.Transition = t
	}
	var err error
	if m.Exited, err = stringsOf(obj["exited"]); err != nil {
		return MicroStep{}, fmt.Errorf("micro step exited: %w", err)
	}
	if m.Entered, err = stringsOf(obj["entered"]); err != nil {
		return MicroStep{}, fmt.Errorf("micro step entered: %w", err)
	}
	return m, nil
}

func isNull(v ir.Value) bool {
	_, ok := v.(ir.Null)
	return ok
}

func stringsOf(v ir.Value) ([]string, error) {
	if v == nil || isNull(v) {
		return nil, nil
	}
	arr, ok := v.(ir.Array)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(ir.String)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", item)
		}
		out = append(out, string(s))
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// Configuration replays exits and entries over trace and returns the
// states active at the end, in order of entry.
func Configuration(trace []MacroStep) []string {
	var active []string
	for _, macro := range trace {
		for _, micro := range macro.Steps {
			for _, name := range micro.Exited {
				if i := slices.Index(active, name); i >= 0 {
					active = slices.Delete(active, i, i+1)
				}
			}
			for _, name := range micro.Entered {
				if !slices.Contains(active, name) {
					active = append(active, name)
				}
			}
		}
	}
	return active
}
