package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statecore/internal/ir"
)

func TestStateCapabilities(t *testing.T) {
	states := []State{
		NewBasicState("basic"),
		NewCompoundState("compound", ""),
		NewOrthogonalState("orthogonal"),
		NewHistoryState("history", "", true),
		NewFinalState("final"),
	}

	for _, s := range states {
		_, actions := s.(ActionState)
		_, transitions := s.(TransitionState)
		_, composite := s.(CompositeState)

		switch s.(type) {
		case *BasicState:
			assert.Equal(t, [3]bool{true, true, false}, [3]bool{actions, transitions, composite})
		case *CompoundState, *OrthogonalState:
			assert.Equal(t, [3]bool{true, true, true}, [3]bool{actions, transitions, composite})
		case *HistoryState:
			assert.Equal(t, [3]bool{false, false, false}, [3]bool{actions, transitions, composite})
		case *FinalState:
			assert.Equal(t, [3]bool{true, false, false}, [3]bool{actions, transitions, composite})
		}
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "basic", KindBasic.String())
	assert.Equal(t, "compound", KindCompound.String())
	assert.Equal(t, "orthogonal", KindOrthogonal.String())
	assert.Equal(t, "history", KindHistory.String())
	assert.Equal(t, "final", KindFinal.String())
}

func TestStateOptions(t *testing.T) {
	contract := Contract{Preconditions: []string{"x > 0"}, Invariants: []string{"y"}}
	s := NewBasicState("s", OnEntry("x = 1"), OnExit("x = 0"), WithContract(contract))

	assert.Equal(t, "x = 1", s.OnEntry())
	assert.Equal(t, "x = 0", s.OnExit())
	assert.Equal(t, contract, s.Contract())
	assert.False(t, s.Contract().Empty())
	assert.True(t, NewFinalState("f").Contract().Empty())

	got := s.Contract()
	got.Preconditions[0] = "mutated"
	assert.Equal(t, "x > 0", s.Contract().Preconditions[0])
}

func TestHistoryState(t *testing.T) {
	h := NewHistoryState("h", "a", true)
	assert.Equal(t, "a", h.Initial())
	assert.True(t, h.Deep())
	assert.False(t, NewHistoryState("h", "", false).Deep())
}

func TestTransitionDerived(t *testing.T) {
	external := &Transition{From: "a", To: "b", Event: "go"}
	internal := &Transition{From: "a", Guard: "x"}

	assert.False(t, external.Internal())
	assert.False(t, external.Eventless())
	assert.Equal(t, "b", external.Target())

	assert.True(t, internal.Internal())
	assert.True(t, internal.Eventless())
	assert.Equal(t, "a", internal.Target())
}

func TestTransitionString(t *testing.T) {
	assert.Equal(t, "A1+go -> A2", (&Transition{From: "A1", To: "A2", Event: "go"}).String())
	assert.Equal(t, "A1 -> A2", (&Transition{From: "A1", To: "A2"}).String())
	assert.Equal(t, "A1+tick -> [A1]", (&Transition{From: "A1", Event: "tick"}).String())
}

func TestTransitionEqualAndHash(t *testing.T) {
	a := &Transition{From: "a", To: "b", Event: "go", Guard: "g", Action: "x"}
	b := &Transition{From: "a", To: "b", Event: "go", Guard: "g", Action: "x"}
	c := &Transition{From: "a", To: "b", Event: "go", Guard: "g"}

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Hash(), c.Hash())

	var nilT *Transition
	assert.False(t, a.Equal(nil))
	assert.True(t, nilT.Equal(nil))
}

func TestTransitionFromValue(t *testing.T) {
	for _, tr := range []*Transition{
		{From: "a", To: "b", Event: "go", Guard: "g", Action: "x"},
		{From: "a", Event: "tick"},
	} {
		got, err := TransitionFromValue(tr.Value())
		require.NoError(t, err)
		assert.True(t, tr.Equal(got), tr.String())
	}

	_, err := TransitionFromValue(ir.Object{"to": ir.String("b")})
	assert.Error(t, err)
	_, err = TransitionFromValue(ir.String("a"))
	assert.Error(t, err)
	_, err = TransitionFromValue(ir.Object{"from": ir.Int(1)})
	assert.Error(t, err)
}

func TestEvent(t *testing.T) {
	e := NewEvent("go", ir.O("speed", ir.Int(3)), ir.O("who", ir.String("bob")))

	assert.Equal(t, "Event(go, speed=3, who=bob)", e.String())
	assert.Equal(t, "Event(go)", NewEvent("go").String())
	assert.Equal(t, "InternalEvent(done)", NewInternalEvent("done").String())

	v, ok := e.Get("speed")
	assert.True(t, ok)
	assert.Equal(t, ir.Int(3), v)
	_, ok = e.Get("missing")
	assert.False(t, ok)

	assert.True(t, e.Equal(NewEvent("go")), "payload is ignored")
	assert.Equal(t, NewEvent("go").Key(), e.Key())
	assert.False(t, e.Internal())
	assert.True(t, NewInternalEvent("x").Internal())
}

func TestEventValueRoundTrip(t *testing.T) {
	for _, e := range []Event{
		NewEvent("go"),
		NewEvent("go", ir.O("n", ir.Int(1))),
		NewInternalEvent("done", ir.O("ok", ir.Bool(true))),
	} {
		got, err := EventFromValue(e.Value())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := EventFromValue(ir.Object{"data": ir.Object{}})
	assert.Error(t, err)
	_, err = EventFromValue(ir.Object{"name": ir.String("x"), "data": ir.Int(1)})
	assert.Error(t, err)
}
