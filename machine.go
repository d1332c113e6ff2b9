package fsm

import (
	"fmt"
	"log/slog"
	"sync"
)

// Machine is the runtime FSM instance.
//
// Requests posted with PostStart and PostEvent are queued and processed one
// at a time, in posting order, by a single drain goroutine. Each request's
// callbacks finish before the next request is dequeued. The drain goroutine
// exits when the queue runs empty and is restarted by the next post.
type Machine struct {
	spec *Spec

	mu       sync.Mutex // guards the fields below; never held across callbacks
	queue    []request
	draining bool
	current  string
	started  bool

	timers  map[string]*timerEntry
	timerMu sync.Mutex

	logger              *slog.Logger
	stateChangeCallback func(from, to string)
}

// MachineOption is a functional option for configuring a Machine
type MachineOption func(*Machine)

// WithLogger sets the logger for the machine
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStateChangeCallback sets a callback invoked after each state change
func WithStateChangeCallback(fn func(from, to string)) MachineOption {
	return func(m *Machine) {
		m.stateChangeCallback = fn
	}
}

// New validates cfg and creates a Machine. On a structural error no machine
// is returned.
func New(cfg Config, opts ...MachineOption) (*Machine, error) {
	spec, err := Validate(cfg)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		spec:   spec,
		timers: make(map[string]*timerEntry),
		logger: Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// MustNew is like New but panics on error
func MustNew(cfg Config, opts ...MachineOption) *Machine {
	m, err := New(cfg, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// OnStateChange sets a callback invoked after each state change.
// Call it before posting any request.
func (m *Machine) OnStateChange(fn func(from, to string)) {
	m.stateChangeCallback = fn
}

// Spec returns the validated specification
func (m *Machine) Spec() *Spec { return m.spec }

// PostStart queues a reset to the start state. When processed, the current
// state becomes the start state and its entry callback runs. No exit or
// action callback fires, whatever state the machine was in.
func (m *Machine) PostStart() *Completion {
	return m.post(request{kind: requestStart})
}

// PostEvent queues an event. args are delivered to the transition's action only.
func (m *Machine) PostEvent(event string, args ...any) *Completion {
	return m.post(request{kind: requestEvent, event: event, args: args})
}

// CurrentState returns the current state, or false if the machine has never started
func (m *Machine) CurrentState() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.started
}

// Started reports whether a start request has been processed
func (m *Machine) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Pending returns the number of queued requests not yet dequeued
func (m *Machine) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Machine) post(req request) *Completion {
	req.done = newCompletion()

	m.mu.Lock()
	m.queue = append(m.queue, req)
	spawn := !m.draining
	m.draining = true
	m.mu.Unlock()

	m.logger.Debug("request queued", "id", req.done.ID(), "kind", req.kind, "event", req.event)

	if spawn {
		go m.drain()
	}
	return req.done
}

// drain processes queued requests until the queue is empty
func (m *Machine) drain() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.draining = false
			m.mu.Unlock()
			return
		}
		req := m.queue[0]
		m.queue[0] = request{}
		m.queue = m.queue[1:]
		m.mu.Unlock()

		var err error
		switch req.kind {
		case requestStart:
			err = m.processStart(req)
		case requestEvent:
			err = m.processEvent(req)
		}
		req.done.settle(err)
	}
}

func (m *Machine) processStart(req request) error {
	start := m.spec.start
	m.logger.Debug("resetting to start state", "id", req.done.ID(), "state", start)

	m.setState(start)

	if st := m.spec.states[start]; st.Entry != nil {
		if err := m.invoke(PhaseEntry, "", start, func() error { return st.Entry(m.spec.pass) }); err != nil {
			return err
		}
	}
	return nil
}

// processEvent handles a single event
func (m *Machine) processEvent(req request) error {
	current, started := m.CurrentState()

	m.logger.Debug("processing event", "id", req.done.ID(), "event", req.event, "state", current, "started", started)

	var (
		t  TransitionSpec
		ok bool
	)
	if started {
		t, ok = m.spec.states[current].Transitions[req.event]
	}
	if !ok {
		if m.spec.options.IgnoreUnexpectedEvents {
			m.logger.Debug("ignoring unexpected event", "id", req.done.ID(), "event", req.event, "state", current)
			return nil
		}
		m.logger.Debug("rejecting unexpected event", "id", req.done.ID(), "event", req.event, "state", current)
		return newUnexpectedEventError(req.event, statePtr(current, started))
	}

	return m.executeTransition(current, t, req)
}

// executeTransition runs exit -> action -> state change -> entry
func (m *Machine) executeTransition(from string, t TransitionSpec, req request) error {
	to := t.NextState
	pass := m.spec.pass

	m.logger.Debug("executing transition", "id", req.done.ID(), "from", from, "to", to, "event", req.event)

	if exit := m.spec.states[from].Exit; exit != nil {
		if err := m.invoke(PhaseExit, req.event, from, func() error { return exit(pass) }); err != nil {
			return err
		}
	}

	if t.Action != nil {
		if err := m.invoke(PhaseAction, req.event, from, func() error { return t.Action(pass, req.args...) }); err != nil {
			return err
		}
	}

	m.setState(to)

	if entry := m.spec.states[to].Entry; entry != nil {
		if err := m.invoke(PhaseEntry, req.event, to, func() error { return entry(pass) }); err != nil {
			return err
		}
	}

	return nil
}

func (m *Machine) setState(to string) {
	m.mu.Lock()
	from := m.current
	m.current = to
	m.started = true
	m.mu.Unlock()

	if m.stateChangeCallback != nil {
		m.stateChangeCallback(from, to)
	}
}

// invoke runs one user callback, turning a returned error or a panic into
// a *CallbackError.
func (m *Machine) invoke(phase Phase, event, state string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackError{Phase: phase, Event: event, State: &state, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			m.logger.Debug("callback failed", "phase", phase, "event", event, "state", state, "error", err)
		}
	}()

	if cbErr := fn(); cbErr != nil {
		return &CallbackError{Phase: phase, Event: event, State: &state, Err: cbErr}
	}
	return nil
}
