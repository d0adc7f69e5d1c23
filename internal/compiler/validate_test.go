package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() *Definition {
	return &Definition{
		Name: "door",
		Root: StateDef{
			Name:    "root",
			Initial: "closed",
			States: []StateDef{
				{Name: "closed", Transitions: []TransitionDef{{Target: "opened", Event: "open"}}},
				{Name: "opened", Transitions: []TransitionDef{{Target: "closed", Event: "close"}}},
			},
		},
	}
}

func codesOf(errs []ValidationError) []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}

func TestValidateValid(t *testing.T) {
	assert.Empty(t, Validate(validDefinition()))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		code   string
		field  string
	}{
		{
			name:   "missing chart name",
			mutate: func(d *Definition) { d.Name = "  " },
			code:   ErrChartNameEmpty,
			field:  "name",
		},
		{
			name:   "missing state name",
			mutate: func(d *Definition) { d.Root.States[1].Name = "" },
			code:   ErrStateNameEmpty,
			field:  "root_state.states[1].name",
		},
		{
			name:   "duplicate state name",
			mutate: func(d *Definition) { d.Root.States[1].Name = "closed" },
			code:   ErrDuplicateName,
			field:  "root_state.states[1].name",
		},
		{
			name:   "unknown type",
			mutate: func(d *Definition) { d.Root.States[0].Type = "history" },
			code:   ErrInvalidStateType,
			field:  "root_state.states[0].type",
		},
		{
			name: "mixed children",
			mutate: func(d *Definition) {
				d.Root.States[0].States = []StateDef{{Name: "a"}}
				d.Root.States[0].ParallelStates = []StateDef{{Name: "b"}}
			},
			code:  ErrMixedChildren,
			field: "root_state.states[0]",
		},
		{
			name: "final with children",
			mutate: func(d *Definition) {
				d.Root.States = append(d.Root.States, StateDef{
					Name:   "done",
					Type:   TypeFinal,
					States: []StateDef{{Name: "inner"}},
				})
			},
			code:  ErrPseudoStateChildren,
			field: "root_state.states[2].states",
		},
		{
			name: "history with transitions",
			mutate: func(d *Definition) {
				d.Root.States = append(d.Root.States, StateDef{
					Name:        "h",
					Type:        TypeDeepHistory,
					Transitions: []TransitionDef{{Target: "closed", Event: "x"}},
				})
			},
			code:  ErrPseudoStateOutgoing,
			field: "root_state.states[2].transitions",
		},
		{
			name: "contract clause with two phases",
			mutate: func(d *Definition) {
				d.Root.States[0].Transitions[0].Contract = []ContractDef{{Before: "a", After: "b"}}
			},
			code:  ErrInvalidContract,
			field: "root_state.states[0].transitions[0].contract[0]",
		},
		{
			name:   "empty contract clause",
			mutate: func(d *Definition) { d.Root.Contract = []ContractDef{{}} },
			code:   ErrInvalidContract,
			field:  "root_state.contract[0]",
		},
		{
			name:   "initial on basic state",
			mutate: func(d *Definition) { d.Root.States[0].Initial = "x" },
			code:   ErrMisplacedField,
			field:  "root_state.states[0].initial",
		},
		{
			name:   "memory on basic state",
			mutate: func(d *Definition) { d.Root.States[0].Memory = "x" },
			code:   ErrMisplacedField,
			field:  "root_state.states[0].memory",
		},
		{
			name: "history with entry action",
			mutate: func(d *Definition) {
				d.Root.States = append(d.Root.States, StateDef{Name: "h", Type: TypeShallowHistory, OnEntry: "x"})
			},
			code:  ErrMisplacedField,
			field: "root_state.states[2]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(def)

			errs := Validate(def)
			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateRoot(t *testing.T) {
	def := validDefinition()
	def.Root.States = nil
	def.Root.Initial = ""
	assert.Equal(t, []string{ErrInvalidRoot}, codesOf(Validate(def)))

	def = validDefinition()
	def.Root.Type = TypeFinal
	assert.Contains(t, codesOf(Validate(def)), ErrInvalidRoot)
}

func TestValidateEmptyChildrenKey(t *testing.T) {
	def := validDefinition()
	def.Root.States = []StateDef{}
	def.Root.Initial = ""
	assert.Empty(t, codesOf(Validate(def)), "an empty states list is left to chart validation")

	def = validDefinition()
	def.Root.States[0].Type = TypeFinal
	def.Root.States[0].Initial = ""
	def.Root.States[0].States = []StateDef{}
	def.Root.States[0].Transitions = nil
	assert.Equal(t, []string{ErrPseudoStateChildren}, codesOf(Validate(def)))

	def = validDefinition()
	def.Root.States[0].States = []StateDef{}
	def.Root.States[0].ParallelStates = []StateDef{}
	assert.Contains(t, codesOf(Validate(def)), ErrMixedChildren)
}

func TestValidateAccumulates(t *testing.T) {
	def := validDefinition()
	def.Name = ""
	def.Root.States[0].Type = "bogus"
	def.Root.States[1].Name = "closed"

	assert.Equal(t, []string{ErrChartNameEmpty, ErrInvalidStateType, ErrDuplicateName}, codesOf(Validate(def)))
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "name", Message: "statechart name is required", Code: ErrChartNameEmpty}
	assert.Equal(t, "[E101] name: statechart name is required", e.Error())

	e.Line = 4
	assert.Equal(t, "[E101] line 4: name: statechart name is required", e.Error())

	errs := ValidationErrors{e, {Field: "x", Message: "y", Code: "E102"}}
	assert.Equal(t, "[E101] line 4: name: statechart name is required\n[E102] x: y", errs.Error())
}
