// Package harness runs scenario tests against statecharts.
//
// A scenario names a chart file, a recorded trace of macro steps, and
// assertions over the story reconstructed from that trace.
//
// # Scenario Format
//
//	name: door_cycle
//	description: "Door opens and closes"
//	chart: charts/door.yaml
//	trace:
//	  - steps:
//	      - entered: [root, closed]
//	  - at: 1.5s
//	    steps:
//	      - event: open
//	        transition: {from: closed, to: opened, event: open}
//	        exited: [closed]
//	        entered: [opened]
//	assertions:
//	  - type: story_contains
//	    line: "entered state=opened"
//	  - type: final_configuration
//	    states: [root, opened]
//
// Each macro step is placed either at an absolute time (at) or after a
// delay from the previous step (after); durations use Go syntax.
//
// A file holding only a trace key can be read with LoadTrace and turned
// into macro steps of a chart with BuildTrace.
//
// # Assertion Types
//
//   - story_contains: a story line is present
//   - story_order: story lines appear in order, not necessarily adjacent
//   - story_count: an event name appears exactly N times
//   - final_configuration: the active states after replay, in any order
//   - validation: the chart passes validation, or fails with a given rule
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store with sequential
// trace IDs and a manual clock, so stories are identical across runs and
// can be compared to golden files with RunWithGolden.
package harness
