package chart

import (
	"fmt"
	"strings"

	"github.com/roach88/statecore/internal/ir"
)

// Event is a named message with an optional payload.
// Equality and hashing depend on Name only.
type Event struct {
	Name string
	Data ir.Object

	internal bool
}

// NewEvent creates an externally injected event.
func NewEvent(name string, data ...ir.Pair) Event {
	return Event{Name: name, Data: eventData(data)}
}

// NewInternalEvent creates a machine-generated event.
func NewInternalEvent(name string, data ...ir.Pair) Event {
	return Event{Name: name, Data: eventData(data), internal: true}
}

func eventData(pairs []ir.Pair) ir.Object {
	if len(pairs) == 0 {
		return nil
	}
	return ir.NewObject(pairs...)
}

// Internal reports whether the event was generated by the machine itself.
func (e Event) Internal() bool {
	return e.internal
}

// Equal compares names only; payloads are ignored.
func (e Event) Equal(other Event) bool {
	return e.Name == other.Name
}

// Key is the hash key of the event, consistent with Equal.
func (e Event) Key() string {
	return e.Name
}

// Get returns a payload entry.
func (e Event) Get(key string) (ir.Value, bool) {
	v, ok := e.Data[key]
	return v, ok
}

// Value encodes the event as an ir.Object: {"name", "data"} plus
// "internal": true for internal events.
func (e Event) Value() ir.Object {
	data := e.Data
	if data == nil {
		data = ir.Object{}
	}
	obj := ir.Object{
		"name": ir.String(e.Name),
		"data": data,
	}
	if e.internal {
		obj["internal"] = ir.Bool(true)
	}
	return obj
}

// String renders Event(name) or Event(name, k=v, ...) with keys in canonical order.
func (e Event) String() string {
	kind := "Event"
	if e.internal {
		kind = "InternalEvent"
	}
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s(%s)", kind, e.Name)
	}
	parts := make([]string, 0, len(e.Data))
	for _, k := range e.Data.SortedKeys() {
		parts = append(parts, k+"="+renderValue(e.Data[k]))
	}
	return fmt.Sprintf("%s(%s, %s)", kind, e.Name, strings.Join(parts, ", "))
}

// renderValue prints strings bare and everything else as canonical JSON.
func renderValue(v ir.Value) string {
	if s, ok := v.(ir.String); ok {
		return string(s)
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// EventFromValue decodes the output of Event.Value.
func EventFromValue(v ir.Value) (Event, error) {
	obj, ok := v.(ir.Object)
	if !ok {
		return Event{}, fmt.Errorf("event: expected object, got %T", v)
	}
	name, ok := obj["name"].(ir.String)
	if !ok || name == "" {
		return Event{}, fmt.Errorf("event: missing name")
	}
	e := Event{Name: string(name)}
	switch data := obj["data"].(type) {
	case nil, ir.Null:
	case ir.Object:
		if len(data) > 0 {
			e.Data = data.Clone()
		}
	default:
		return Event{}, fmt.Errorf("event %s: data must be an object, got %T", name, data)
	}
	if internal, ok := obj["internal"].(ir.Bool); ok {
		e.internal = bool(internal)
	}
	return e, nil
}
