package chart

import (
	"context"
	"errors"
	"fmt"
)

// Evaluator interprets the opaque code carried by states and transitions.
// The chart never evaluates code itself; an interpreter supplies an
// Evaluator for its guard and action language.
type Evaluator interface {
	// EvaluateCondition evaluates a guard or contract clause.
	EvaluateCondition(ctx context.Context, code string, event *Event) (bool, error)
	// ExecuteAction runs an entry, exit or transition action.
	ExecuteAction(ctx context.Context, code string, event *Event) error
}

// ContractPhase selects which clauses of a Contract are checked.
type ContractPhase string

const (
	PhaseBefore ContractPhase = "before"
	PhaseAfter  ContractPhase = "after"
	PhaseAlways ContractPhase = "always"
)

// ConditionFailedError reports a contract clause that evaluated to false.
type ConditionFailedError struct {
	Owner     string
	Phase     ContractPhase
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("%s condition failed on %s: %s", e.Phase, e.Owner, e.Condition)
}

// Clauses returns the clauses of c for phase.
func (c Contract) Clauses(phase ContractPhase) []string {
	switch phase {
	case PhaseBefore:
		return c.Preconditions
	case PhaseAfter:
		return c.Postconditions
	case PhaseAlways:
		return c.Invariants
	}
	return nil
}

// CheckContract evaluates every clause of contract for phase, in order.
// Failed clauses are joined into the returned error; evaluator errors
// abort immediately.
func CheckContract(ctx context.Context, ev Evaluator, owner string, contract Contract, phase ContractPhase, event *Event) error {
	var failed []error
	for _, clause := range contract.Clauses(phase) {
		ok, err := ev.EvaluateCondition(ctx, clause, event)
		if err != nil {
			return fmt.Errorf("evaluate %s condition on %s: %w", phase, owner, err)
		}
		if !ok {
			failed = append(failed, &ConditionFailedError{Owner: owner, Phase: phase, Condition: clause})
		}
	}
	return errors.Join(failed...)
}

// GuardAllows reports whether t may fire. Transitions without a guard
// always may.
func GuardAllows(ctx context.Context, ev Evaluator, t *Transition, event *Event) (bool, error) {
	if t.Guard == "" {
		return true, nil
	}
	return ev.EvaluateCondition(ctx, t.Guard, event)
}
