// Package trace records what an interpreter did and projects it into a
// story.
//
// A MicroStep is one atomic exit/transition/entry unit. A MacroStep groups
// the micro steps produced while processing one event, or one eventless
// stabilization round, at a point in time relative to the start of the
// run. FromTrace turns a sequence of macro steps into a Story: a flat list
// of events interleaved with pauses, suitable for snapshot testing.
//
// All values in this package are immutable after construction.
package trace
