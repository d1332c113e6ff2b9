package fsm

import (
	"fmt"
	"sort"
)

// Spec is a validated machine specification. It is never mutated after
// Validate returns it and is shared read-only by the runtime.
type Spec struct {
	states  map[string]StateSpec
	start   string
	end     string
	pass    any
	options Options
}

// Start returns the initial state name
func (s *Spec) Start() string { return s.start }

// End returns the terminal state name
func (s *Spec) End() string { return s.end }

// Options returns the runtime options
func (s *Spec) Options() Options { return s.options }

// HasState reports whether name has an explicit entry in the spec
func (s *Spec) HasState(name string) bool {
	_, ok := s.states[name]
	return ok
}

// States returns the explicitly declared state names in sorted order
func (s *Spec) States() []string {
	return sortedKeys(s.states)
}

// Validate fills in defaults and checks cfg, in order:
// the start state exists, every next state exists (or is the end state),
// the end state has no transitions and no exit callback.
// The first violation is returned as a *StructuralError.
func Validate(cfg Config) (*Spec, error) {
	s := &Spec{
		states:  make(map[string]StateSpec, len(cfg.Spec)),
		start:   cfg.Start,
		end:     cfg.End,
		pass:    cfg.Pass,
		options: cfg.Options,
	}
	if s.start == "" {
		s.start = DefaultStart
	}
	if s.end == "" {
		s.end = DefaultEnd
	}
	for name, st := range cfg.Spec {
		s.states[name] = st.clone()
	}

	if _, ok := s.states[s.start]; !ok {
		return nil, newStructuralError(MissingStartState, "missing start state %s", s.start)
	}

	// Sorted walk keeps the reported offender stable across runs
	for _, name := range sortedKeys(s.states) {
		st := s.states[name]
		for _, ev := range sortedKeys(st.Transitions) {
			next := st.Transitions[ev].NextState
			if next == s.end {
				continue
			}
			if _, ok := s.states[next]; !ok {
				return nil, newStructuralError(InvalidNextState, "invalid next state - %s", next)
			}
		}
	}

	if end, ok := s.states[s.end]; ok {
		if len(end.Transitions) > 0 {
			return nil, newStructuralError(EndStateHasTransitions, "end state should not have transitions")
		}
		if end.Exit != nil {
			return nil, newStructuralError(EndStateHasExit, "end state should not have an exit callback")
		}
	}

	return s, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Definition is a fluent builder for a Config
type Definition struct {
	states  map[string]StateSpec
	start   string
	end     string
	pass    any
	options Options
}

// NewDefinition creates a new FSM definition builder
func NewDefinition() *Definition {
	return &Definition{
		states: make(map[string]StateSpec),
	}
}

// State adds a state, or updates its callbacks if it already exists.
// Transitions already attached to the state are kept.
func (d *Definition) State(name string, opts ...StateOption) *Definition {
	s := d.states[name]
	for _, opt := range opts {
		opt(&s)
	}
	d.states[name] = s
	return d
}

// Transition adds a transition rule. The source state is declared
// implicitly if it does not exist yet.
func (d *Definition) Transition(from, event, to string, opts ...TransitionOption) *Definition {
	t := TransitionSpec{NextState: to}
	for _, opt := range opts {
		opt(&t)
	}
	s := d.states[from]
	if s.Transitions == nil {
		s.Transitions = make(map[string]TransitionSpec)
	}
	s.Transitions[event] = t
	d.states[from] = s
	return d
}

// Start sets the initial state
func (d *Definition) Start(name string) *Definition {
	d.start = name
	return d
}

// End sets the terminal state
func (d *Definition) End(name string) *Definition {
	d.end = name
	return d
}

// Pass sets the value handed to every callback
func (d *Definition) Pass(v any) *Definition {
	d.pass = v
	return d
}

// IgnoreUnexpectedEvents toggles Options.IgnoreUnexpectedEvents
func (d *Definition) IgnoreUnexpectedEvents(ignore bool) *Definition {
	d.options.IgnoreUnexpectedEvents = ignore
	return d
}

// Config returns the plain configuration assembled so far
func (d *Definition) Config() Config {
	spec := make(map[string]StateSpec, len(d.states))
	for name, s := range d.states {
		spec[name] = s.clone()
	}
	return Config{
		Spec:    spec,
		Start:   d.start,
		End:     d.end,
		Pass:    d.pass,
		Options: d.options,
	}
}

// Validate checks the definition for errors
func (d *Definition) Validate() error {
	_, err := Validate(d.Config())
	return err
}

// Build creates a Machine from the definition
func (d *Definition) Build(opts ...MachineOption) (*Machine, error) {
	m, err := New(d.Config(), opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return m, nil
}
