// Package chart is the structural core of statecore: the statechart data
// model, the structural query engine, and the static validation rules.
//
// # Lifecycle
//
// A chart is assembled with a Builder and frozen by Build:
//
//	b, err := chart.NewBuilder("door", chart.NewCompoundState("root", "closed"))
//	_ = b.RegisterState(chart.NewBasicState("closed"), "root")
//	_ = b.RegisterState(chart.NewBasicState("open"), "root")
//	_ = b.RegisterTransition(&chart.Transition{From: "closed", To: "open", Event: "push"})
//	c := b.Build()
//	if err := c.Validate(); err != nil {
//	    // reject the chart before it reaches an interpreter
//	}
//
// After Build the hierarchy never changes, which is what makes the memoized
// queries (AncestorsFor, DescendantsFor, DepthFor, LeastCommonAncestor)
// sound without invalidation.
//
// # Opaque code
//
// Guards, actions, entry/exit code, bootstrap code and contract clauses are
// carried as uninterpreted strings. An interpreter supplies an Evaluator to
// give them meaning; nothing in this package evaluates them.
//
// This package performs no I/O, never logs and never blocks.
package chart
