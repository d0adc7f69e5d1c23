package testutil

import (
	"time"

	"github.com/roach88/statecore/internal/chart"
	"github.com/roach88/statecore/internal/trace"
)

// ExampleChart builds R (orthogonal) with compound regions A and B.
// A holds A1 and A2 with A1 initial, B holds B1; A1 -> A2 on go.
//
// Panics on builder errors, which would be a bug in this helper.
func ExampleChart() *chart.Chart {
	b, err := chart.NewBuilder("example", chart.NewOrthogonalState("R"))
	must(err)
	must(b.RegisterState(chart.NewCompoundState("A", "A1"), "R"))
	must(b.RegisterState(chart.NewCompoundState("B", "B1"), "R"))
	must(b.RegisterState(chart.NewBasicState("A1"), "A"))
	must(b.RegisterState(chart.NewBasicState("A2"), "A"))
	must(b.RegisterState(chart.NewBasicState("B1"), "B"))
	must(b.RegisterTransition(&chart.Transition{From: "A1", To: "A2", Event: "go"}))
	return b.Build()
}

// ExampleTrace is a run of ExampleChart: the initial entry at 0, then go
// consumed at 1.5s moving A1 to A2.
func ExampleTrace() []trace.MacroStep {
	goEvent := chart.NewEvent("go")
	return []trace.MacroStep{
		{Steps: []trace.MicroStep{{Entered: []string{"R", "A", "A1", "B", "B1"}}}},
		{
			Time: 1500 * time.Millisecond,
			Steps: []trace.MicroStep{{
				Event:      &goEvent,
				Transition: &chart.Transition{From: "A1", To: "A2", Event: "go"},
				Exited:     []string{"A1"},
				Entered:    []string{"A2"},
			}},
		},
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
