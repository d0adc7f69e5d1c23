package compiler

import (
	"fmt"
	"strings"
)

// Validation error codes (E100-E199)
const (
	ErrChartNameEmpty      = "E101" // statechart name is required
	ErrStateNameEmpty      = "E102" // every state needs a name
	ErrDuplicateName       = "E103" // state names are unique across the chart
	ErrInvalidStateType    = "E104" // unknown type value
	ErrMixedChildren       = "E105" // states and parallel states together
	ErrPseudoStateChildren = "E106" // history or final state with children
	ErrPseudoStateOutgoing = "E107" // history or final state with transitions
	ErrInvalidContract     = "E108" // clause must set exactly one of before/after/always
	ErrInvalidRoot         = "E109" // root must be composite
	ErrMisplacedField      = "E110" // initial/memory on the wrong kind of state
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is returned by Compile when a definition is malformed.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Validate checks a definition against the schema rules.
// Returns all errors found (does not fail-fast).
//
// Structural rules over the compiled chart (dangling targets, initial
// states) are left to chart validation.
func Validate(def *Definition) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(def.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "statechart name is required",
			Code:    ErrChartNameEmpty,
		})
	}

	root := &def.Root
	if root.Type != "" || !root.IsComposite() {
		errs = append(errs, ValidationError{
			Field:   "root_state",
			Message: "root state must be a compound or parallel state",
			Code:    ErrInvalidRoot,
		})
	}

	seen := make(map[string]string)
	validateState(root, "root_state", seen, &errs)
	return errs
}

func validateState(s *StateDef, path string, seen map[string]string, errs *[]ValidationError) {
	add := func(field, code, format string, args ...any) {
		*errs = append(*errs, ValidationError{
			Field:   path + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	// E102, E103
	if strings.TrimSpace(s.Name) == "" {
		add(".name", ErrStateNameEmpty, "state name is required")
	} else if first, dup := seen[s.Name]; dup {
		add(".name", ErrDuplicateName, "duplicate state name %q, first defined at %s", s.Name, first)
	} else {
		seen[s.Name] = path
	}

	// E104
	switch s.Type {
	case "", TypeFinal, TypeShallowHistory, TypeDeepHistory:
	default:
		add(".type", ErrInvalidStateType, "invalid type %q, must be %q, %q or %q",
			s.Type, TypeFinal, TypeShallowHistory, TypeDeepHistory)
	}

	// E105
	if s.States != nil && s.ParallelStates != nil {
		add("", ErrMixedChildren, "state %q cannot have both states and parallel states", s.Name)
	}

	if s.Type == TypeFinal || s.IsHistory() {
		// E106, E107
		if s.IsComposite() {
			add("."+s.childrenField(), ErrPseudoStateChildren, "%s state %q cannot have children", s.Type, s.Name)
		}
		if len(s.Transitions) > 0 {
			add(".transitions", ErrPseudoStateOutgoing, "%s state %q cannot have outgoing transitions", s.Type, s.Name)
		}
	}

	// E110
	if s.Initial != "" && s.States == nil {
		add(".initial", ErrMisplacedField, "initial is only allowed on compound states")
	}
	if s.Memory != "" && !s.IsHistory() {
		add(".memory", ErrMisplacedField, "memory is only allowed on history states")
	}
	if s.IsHistory() && (s.OnEntry != "" || s.OnExit != "") {
		add("", ErrMisplacedField, "history state %q cannot have entry or exit actions", s.Name)
	}

	validateContract(s.Contract, path+".contract", errs)
	for i := range s.Transitions {
		validateContract(s.Transitions[i].Contract, fmt.Sprintf("%s.transitions[%d].contract", path, i), errs)
	}

	children := s.children()
	field := s.childrenField()
	for i := range children {
		validateState(&children[i], fmt.Sprintf("%s.%s[%d]", path, field, i), seen, errs)
	}
}

// validateContract checks E108 for each clause.
func validateContract(clauses []ContractDef, path string, errs *[]ValidationError) {
	for i, c := range clauses {
		set := 0
		for _, v := range []string{c.Before, c.After, c.Always} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			*errs = append(*errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", path, i),
				Message: "contract clause must set exactly one of before, after or always",
				Code:    ErrInvalidContract,
			})
		}
	}
}
