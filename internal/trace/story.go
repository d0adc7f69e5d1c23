package trace

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/statecore/internal/chart"
	"github.com/roach88/statecore/internal/ir"
)

// Names of the events a story is made of.
const (
	EventStarted   = "started"
	EventConsumed  = "consumed"
	EventExited    = "exited"
	EventProcessed = "processed"
	EventEntered   = "entered"
	EventStopped   = "stopped"
)

// Item is a sealed interface over EventItem and Pause.
type Item interface {
	storyItem()
	Value() ir.Object
	String() string
}

// EventItem is a story event such as entered(state=A1).
type EventItem struct {
	chart.Event
}

func (EventItem) storyItem() {}

// Value encodes the item as {"event": ...}.
func (e EventItem) Value() ir.Object {
	return ir.NewObject(ir.O("event", e.Event.Value()))
}

func (e EventItem) String() string {
	if len(e.Data) == 0 {
		return e.Name
	}
	parts := make([]string, 0, len(e.Data))
	for _, k := range e.Data.SortedKeys() {
		parts = append(parts, k+"="+describe(e.Data[k]))
	}
	return e.Name + " " + strings.Join(parts, " ")
}

// describe renders nested events by their String form and null as None.
func describe(v ir.Value) string {
	switch val := v.(type) {
	case ir.Null:
		return "None"
	case ir.String:
		return string(val)
	case ir.Object:
		if e, err := chart.EventFromValue(val); err == nil {
			return e.String()
		}
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// Pause is a delay between two story events.
type Pause struct {
	Duration time.Duration
}

func (Pause) storyItem() {}

// Value encodes the pause as {"pause_ns": n}.
func (p Pause) Value() ir.Object {
	return ir.NewObject(ir.O("pause_ns", ir.Int(p.Duration.Nanoseconds())))
}

func (p Pause) String() string {
	return "pause " + p.Duration.String()
}

// Story is an ordered narrative of events and pauses.
type Story []Item

// FromTrace reconstructs the story of trace, which must be sorted by
// non-decreasing Time.
//
// The story opens with started and closes with stopped. A pause precedes
// every macro step whose time is ahead of the clock. Within a macro step
// the consumed event comes first, then per micro step the exits, the
// processed transition and the entries.
func FromTrace(trace []MacroStep) Story {
	story := Story{EventItem{chart.NewEvent(EventStarted)}}
	var clock time.Duration

	for _, macro := range trace {
		if macro.Time > clock {
			story = append(story, Pause{Duration: macro.Time - clock})
			clock = macro.Time
		}

		consumed := ir.Value(ir.Null{})
		if e := macro.Event(); e != nil {
			consumed = e.Value()
			story = append(story, EventItem{chart.NewEvent(EventConsumed, ir.O("event", consumed))})
		}

		for _, micro := range macro.Steps {
			for _, name := range micro.Exited {
				story = append(story, EventItem{chart.NewEvent(EventExited, ir.O("state", ir.String(name)))})
			}
			if t := micro.Transition; t != nil {
				story = append(story, EventItem{chart.NewEvent(EventProcessed,
					ir.O("source", ir.String(t.From)),
					ir.O("target", ir.OptionalString(t.To)),
					ir.O("event", consumed),
				)})
			}
			for _, name := range micro.Entered {
				story = append(story, EventItem{chart.NewEvent(EventEntered, ir.O("state", ir.String(name)))})
			}
		}
	}

	return append(story, EventItem{chart.NewEvent(EventStopped)})
}

// Events returns the event items, dropping pauses.
func (s Story) Events() []chart.Event {
	var out []chart.Event
	for _, item := range s {
		if e, ok := item.(EventItem); ok {
			out = append(out, e.Event)
		}
	}
	return out
}

// Names lists each item: event names, and "pause" for pauses.
func (s Story) Names() []string {
	out := make([]string, len(s))
	for i, item := range s {
		switch it := item.(type) {
		case EventItem:
			out[i] = it.Name
		case Pause:
			out[i] = "pause"
		}
	}
	return out
}

// Lines renders one item per line.
func (s Story) Lines() []string {
	out := make([]string, len(s))
	for i, item := range s {
		out[i] = item.String()
	}
	return out
}

func (s Story) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Value encodes the story as an array of item objects.
func (s Story) Value() ir.Array {
	arr := make(ir.Array, len(s))
	for i, item := range s {
		arr[i] = item.Value()
	}
	return arr
}

// Hash fingerprints the story for snapshot comparison.
func (s Story) Hash() string {
	return ir.MustHash(ir.DomainStory, s.Value())
}
