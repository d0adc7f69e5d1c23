package chart

import (
	"fmt"
	"slices"
)

// ValidateOption adjusts which rules Validate and Check apply.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	exemptInternal bool
	skip           []Rule
}

// ExemptInternalTransitions makes C6 ignore internal transitions. By
// default an internal transition targets its own source, so a compound
// source without initial is reported even though it is never re-entered.
func ExemptInternalTransitions() ValidateOption {
	return func(c *validateConfig) { c.exemptInternal = true }
}

// WithoutRule disables a rule.
func WithoutRule(rule Rule) ValidateOption {
	return func(c *validateConfig) { c.skip = append(c.skip, rule) }
}

func (c *validateConfig) enabled(rule Rule) bool {
	return !slices.Contains(c.skip, rule)
}

// Validate checks the well-formedness rules and returns the first
// violation as *InvalidStatechartError, or nil.
//
// Rules run in a fixed order: C1 and C5 per transition, then C2, C4 and
// C3 per state, then C6 per transition. Validate never mutates the chart.
func (c *Chart) Validate(opts ...ValidateOption) error {
	var first *InvalidStatechartError
	c.check(opts, func(e *InvalidStatechartError) bool {
		first = e
		return false
	})
	if first == nil {
		return nil
	}
	return first
}

// Check is like Validate but reports every violation, in the same order.
func (c *Chart) Check(opts ...ValidateOption) []*InvalidStatechartError {
	var all []*InvalidStatechartError
	c.check(opts, func(e *InvalidStatechartError) bool {
		all = append(all, e)
		return true
	})
	return all
}

// check runs the rules, handing each violation to report until it
// returns false.
func (c *Chart) check(opts []ValidateOption, report func(*InvalidStatechartError) bool) {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	for _, t := range c.transitions {
		if cfg.enabled(RuleC1) {
			if e := c.checkReferences(t); e != nil && !report(e) {
				return
			}
		}
		if cfg.enabled(RuleC5) && t.Internal() && t.Eventless() && t.Guard == "" {
			e := &InvalidStatechartError{
				Rule:       RuleC5,
				Transition: t.clone(),
				Message:    fmt.Sprintf("transition %s is internal, eventless and guardless", t),
			}
			if !report(e) {
				return
			}
		}
	}

	for _, name := range c.order {
		for _, e := range c.checkState(cfg, name) {
			if !report(e) {
				return
			}
		}
	}

	if !cfg.enabled(RuleC6) {
		return
	}
	for _, t := range c.transitions {
		if cfg.exemptInternal && t.Internal() {
			continue
		}
		targetName := t.From
		if _, ok := c.states[t.To]; ok {
			targetName = t.To
		}
		target, ok := c.states[targetName].(*CompoundState)
		if !ok || target.Initial() != "" {
			continue
		}
		e := &InvalidStatechartError{
			Rule:       RuleC6,
			Transition: t.clone(),
			State:      target.Name(),
			Message:    fmt.Sprintf("compound state %s is targeted by %s but has no initial state", target.Name(), t),
		}
		if !report(e) {
			return
		}
	}
}

func (c *Chart) checkReferences(t *Transition) *InvalidStatechartError {
	if _, ok := c.states[t.From]; !ok {
		return &InvalidStatechartError{
			Rule:       RuleC1,
			Transition: t.clone(),
			Message:    fmt.Sprintf("transition %s refers to unknown source state %s", t, t.From),
		}
	}
	if t.Internal() {
		return nil
	}
	if _, ok := c.states[t.To]; !ok {
		return &InvalidStatechartError{
			Rule:       RuleC1,
			Transition: t.clone(),
			Message:    fmt.Sprintf("transition %s refers to unknown target state %s", t, t.To),
		}
	}
	return nil
}

// checkState applies C2, C4 and C3 to one state, in that order.
func (c *Chart) checkState(cfg *validateConfig, name string) []*InvalidStatechartError {
	var errs []*InvalidStatechartError
	state := c.states[name]

	if h, ok := state.(*HistoryState); ok && cfg.enabled(RuleC2) {
		parent, _ := c.ParentFor(name)
		if _, compound := c.states[parent].(*CompoundState); !compound {
			errs = append(errs, &InvalidStatechartError{
				Rule:    RuleC2,
				State:   h.Name(),
				Message: fmt.Sprintf("history state %s can only be defined in a compound state, not in %s", h.Name(), parent),
			})
		}
	}

	if cs, ok := state.(CompositeState); ok && cfg.enabled(RuleC4) && len(cs.Children()) == 0 {
		errs = append(errs, &InvalidStatechartError{
			Rule:    RuleC4,
			State:   name,
			Message: fmt.Sprintf("%s state %s must have at least one child", state.Kind(), name),
		})
	}

	if cs, ok := state.(*CompoundState); ok && cfg.enabled(RuleC3) && cs.Initial() != "" {
		if !slices.Contains(cs.Children(), cs.Initial()) {
			errs = append(errs, &InvalidStatechartError{
				Rule:    RuleC3,
				State:   name,
				Message: fmt.Sprintf("initial state %s of %s must be one of its children", cs.Initial(), name),
			})
		}
	}
	return errs
}
