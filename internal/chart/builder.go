package chart

import "fmt"

// ChartOption configures chart metadata.
type ChartOption func(*Chart)

// WithDescription sets the chart description.
func WithDescription(description string) ChartOption {
	return func(c *Chart) { c.description = description }
}

// WithBootstrap sets opaque code an interpreter runs before entering the root.
func WithBootstrap(code string) ChartOption {
	return func(c *Chart) { c.bootstrap = code }
}

// Builder assembles a Chart. States and transitions are append-only; once
// Build is called every registration fails with ErrBuilt.
//
// The builder copies every state and transition it is given, so later
// changes to the caller's values do not reach the chart.
//
// Builder is not safe for concurrent use.
type Builder struct {
	chart *Chart
	built bool

	// pending holds transitions whose source is not registered yet, by source.
	pending map[string][]*Transition
}

// NewBuilder starts a chart rooted at root, which must be a CompoundState
// or an OrthogonalState.
func NewBuilder(name string, root State, opts ...ChartOption) (*Builder, error) {
	if root == nil || root.Name() == "" {
		return nil, ErrEmptyName
	}
	if _, ok := root.(CompositeState); !ok {
		return nil, fmt.Errorf("%w: %s is a %s state", ErrRootNotComposite, root.Name(), root.Kind())
	}

	root = cloneState(root)
	c := &Chart{
		name:   name,
		root:   root.Name(),
		states: map[string]State{root.Name(): root},
		order:  []string{root.Name()},
		parent: map[string]string{root.Name(): ""},
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Builder{chart: c, pending: map[string][]*Transition{}}, nil
}

// RegisterState adds state as the last child of parent.
//
// Transitions registered earlier with state as their source are attached
// to it in their original order. If state cannot host them the call fails
// with ErrNoTransitions and nothing is registered.
//
// Returns *DuplicateNameError if the name is taken, ErrUnknownParent if the
// parent is not registered and ErrNotComposite if it cannot have children.
func (b *Builder) RegisterState(state State, parent string) error {
	if b.built {
		return ErrBuilt
	}
	if state == nil || state.Name() == "" {
		return ErrEmptyName
	}
	c := b.chart
	if _, exists := c.states[state.Name()]; exists {
		return &DuplicateNameError{Name: state.Name()}
	}
	p, ok := c.states[parent]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParent, parent)
	}
	composite, ok := p.(CompositeState)
	if !ok {
		return fmt.Errorf("%w: %s is a %s state", ErrNotComposite, parent, p.Kind())
	}

	state = cloneState(state)
	early := b.pending[state.Name()]
	ts, hosts := state.(TransitionState)
	if len(early) > 0 && !hosts {
		return fmt.Errorf("%w: %s is a %s state with %d transitions", ErrNoTransitions, state.Name(), state.Kind(), len(early))
	}

	c.states[state.Name()] = state
	c.order = append(c.order, state.Name())
	c.parent[state.Name()] = parent
	composite.addChild(state.Name())
	for _, t := range early {
		ts.addTransition(t)
	}
	delete(b.pending, state.Name())
	return nil
}

// RegisterTransition appends a copy of t to the chart and to its source
// state.
//
// The source is not required to exist yet: the transition is attached when
// the source registers, and a source still missing at Build is reported by
// rule C1 at validation. A source that exists but cannot host transitions
// (history or final) fails with ErrNoTransitions.
func (b *Builder) RegisterTransition(t *Transition) error {
	if b.built {
		return ErrBuilt
	}
	if t == nil {
		return fmt.Errorf("nil transition")
	}
	c := b.chart
	t = t.clone()
	if source, ok := c.states[t.From]; ok {
		ts, ok := source.(TransitionState)
		if !ok {
			return fmt.Errorf("%w: %s is a %s state", ErrNoTransitions, t.From, source.Kind())
		}
		ts.addTransition(t)
	} else {
		b.pending[t.From] = append(b.pending[t.From], t)
	}
	c.transitions = append(c.transitions, t)
	return nil
}

// Build freezes the chart. The builder is unusable afterwards.
func (b *Builder) Build() *Chart {
	b.built = true
	return b.chart
}
