package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/statecore/internal/chart"
	"github.com/roach88/statecore/internal/compiler"
	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
	"github.com/roach88/statecore/internal/testutil"
	"github.com/roach88/statecore/internal/trace"
)

// Harness is the scenario execution engine.
// It builds traces with a manual clock and stores them with sequential IDs.
type Harness struct {
	store  *store.Store
	chart  *chart.Chart
	clock  *testutil.StepClock
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Load and compile the chart, then validate it
//  2. Build the trace, resolving transitions against the chart
//  3. Store the trace and read it back
//  4. Reconstruct the story and replay the configuration
//  5. Evaluate assertions
//
// A scenario that cannot be executed (missing chart, unknown transition)
// returns an error; failed assertions are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with a logger for progress output.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	def, err := compiler.LoadFile(scenario.Chart)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}
	c, err := compiler.Compile(def)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chart: %w", err)
	}

	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("trace")),
		store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		chart:  c,
		clock:  testutil.NewStepClock(),
		logger: logger,
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()
	result.ChartHash = h.chart.Hash()

	var opts []chart.ValidateOption
	if scenario.ExemptInternal {
		opts = append(opts, chart.ExemptInternalTransitions())
	}
	result.Validation = h.chart.Validate(opts...)

	steps, err := h.buildTrace(scenario.Trace)
	if err != nil {
		return nil, err
	}

	id, err := h.store.WriteTrace(ctx, h.chart, steps)
	if err != nil {
		return nil, fmt.Errorf("failed to write trace: %w", err)
	}
	rec, err := h.store.ReadTrace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	result.TraceID = id
	result.Story = rec.Story()
	result.Lines = result.Story.Lines()
	result.Configuration = trace.Configuration(rec.Steps)
	if result.Configuration == nil {
		result.Configuration = []string{}
	}

	h.logger.Debug("scenario executed",
		"scenario", scenario.Name,
		"trace_id", id,
		"story_items", len(result.Story))

	if result.Validation != nil && !expectsValidationFailure(scenario.Assertions) {
		result.AddError(fmt.Sprintf("chart is invalid: %v", result.Validation))
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func expectsValidationFailure(assertions []Assertion) bool {
	return slices.ContainsFunc(assertions, func(a Assertion) bool {
		return a.Type == AssertValidation && a.Rule != ""
	})
}

// BuildTrace converts trace definitions into macro steps of c. Every
// referenced transition and state must belong to c.
func BuildTrace(c *chart.Chart, defs []MacroStepDef) ([]trace.MacroStep, error) {
	h := &Harness{chart: c, clock: testutil.NewStepClock()}
	return h.buildTrace(defs)
}

// buildTrace converts scenario steps into macro steps, timing them with
// the harness clock.
func (h *Harness) buildTrace(defs []MacroStepDef) ([]trace.MacroStep, error) {
	steps := make([]trace.MacroStep, 0, len(defs))
	for i, def := range defs {
		at, err := h.advance(def)
		if err != nil {
			return nil, fmt.Errorf("trace[%d]: %w", i, err)
		}

		macro := trace.MacroStep{Time: at}
		for j, m := range def.Steps {
			micro, err := h.buildMicroStep(m)
			if err != nil {
				return nil, fmt.Errorf("trace[%d].steps[%d]: %w", i, j, err)
			}
			macro.Steps = append(macro.Steps, micro)
		}
		steps = append(steps, macro)
	}
	return steps, nil
}

func (h *Harness) advance(def MacroStepDef) (time.Duration, error) {
	switch {
	case def.At != "":
		target, err := parseDuration(def.At)
		if err != nil {
			return 0, err
		}
		if target < h.clock.Now() {
			return 0, fmt.Errorf("at %s is before the previous step at %s", target, h.clock.Now())
		}
		return h.clock.Advance(target - h.clock.Now()), nil
	case def.After != "":
		delay, err := parseDuration(def.After)
		if err != nil {
			return 0, err
		}
		return h.clock.Advance(delay), nil
	default:
		return h.clock.Now(), nil
	}
}

func (h *Harness) buildMicroStep(def MicroStepDef) (trace.MicroStep, error) {
	micro := trace.MicroStep{Exited: def.Exited, Entered: def.Entered}

	if def.Event != "" {
		data, err := ir.ObjectFromMap(def.Data)
		if err != nil {
			return trace.MicroStep{}, fmt.Errorf("event %s: %w", def.Event, err)
		}
		e := chart.Event{Name: def.Event}
		if len(data) > 0 {
			e.Data = data
		}
		micro.Event = &e
	}

	if ref := def.Transition; ref != nil {
		want := &chart.Transition{From: ref.From, To: ref.To, Event: ref.Event, Guard: ref.Guard, Action: ref.Action}
		idx := slices.IndexFunc(h.chart.Transitions(), want.Equal)
		if idx < 0 {
			return trace.MicroStep{}, fmt.Errorf("transition %s is not defined by chart %s", want, h.chart.Name())
		}
		micro.Transition = h.chart.Transitions()[idx]
	}

	for _, name := range slices.Concat(def.Exited, def.Entered) {
		if _, ok := h.chart.StateFor(name); !ok {
			return trace.MicroStep{}, fmt.Errorf("unknown state %q", name)
		}
	}
	return micro, nil
}
