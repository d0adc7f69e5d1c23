package harness

import (
	"github.com/roach88/statecore/internal/trace"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// TraceID is the ID the trace was stored under.
	TraceID string `json:"trace_id"`

	// ChartHash fingerprints the chart under test.
	ChartHash string `json:"chart_hash"`

	// Story is reconstructed from the stored trace.
	Story trace.Story `json:"-"`

	// Lines renders Story one item per line.
	Lines []string `json:"story"`

	// Configuration is the set of active states after replay.
	Configuration []string `json:"configuration"`

	// Validation is the chart validation error, nil when valid.
	Validation error `json:"-"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:          true,
		Lines:         []string{},
		Configuration: []string{},
		Errors:        []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
