package fsm

import (
	"errors"
	"fmt"
)

// StructuralKind identifies which construction-time check failed
type StructuralKind int

const (
	MissingStartState StructuralKind = iota + 1
	InvalidNextState
	EndStateHasTransitions
	EndStateHasExit
)

func (k StructuralKind) String() string {
	switch k {
	case MissingStartState:
		return "MissingStartState"
	case InvalidNextState:
		return "InvalidNextState"
	case EndStateHasTransitions:
		return "EndStateHasTransitions"
	case EndStateHasExit:
		return "EndStateHasExit"
	default:
		return fmt.Sprintf("StructuralKind(%d)", int(k))
	}
}

// Sentinels for errors.Is matching
var (
	ErrMissingStartState      = errors.New("missing start state")
	ErrInvalidNextState       = errors.New("invalid next state")
	ErrEndStateHasTransitions = errors.New("end state has transitions")
	ErrEndStateHasExit        = errors.New("end state has exit callback")
	ErrUnexpectedEvent        = errors.New("unexpected event")
	ErrTimeout                = errors.New("timed out waiting for completion")
)

func (k StructuralKind) sentinel() error {
	switch k {
	case MissingStartState:
		return ErrMissingStartState
	case InvalidNextState:
		return ErrInvalidNextState
	case EndStateHasTransitions:
		return ErrEndStateHasTransitions
	case EndStateHasExit:
		return ErrEndStateHasExit
	}
	return nil
}

// errorName renders the name tag callers match on:
// "FiniteStateMachine [STATE: <state-or-None>]".
func errorName(state *string) string {
	if state == nil {
		return "FiniteStateMachine [STATE: <None>]"
	}
	return fmt.Sprintf("FiniteStateMachine [STATE: %s]", *state)
}

func statePtr(name string, ok bool) *string {
	if !ok {
		return nil
	}
	return &name
}

// StructuralError rejects a configuration at construction time.
// State is always nil because no machine exists yet.
type StructuralError struct {
	Kind    StructuralKind
	Message string
	State   *string
}

func (e *StructuralError) Error() string { return e.Message }

// Name returns the kind tag with the machine state context
func (e *StructuralError) Name() string { return errorName(e.State) }

// StateName returns the state context, if any
func (e *StructuralError) StateName() (string, bool) {
	if e.State == nil {
		return "", false
	}
	return *e.State, true
}

func (e *StructuralError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newStructuralError(kind StructuralKind, format string, args ...any) *StructuralError {
	return &StructuralError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// UnexpectedEventError is the outcome of an event with no matching transition
// in the current state, including events posted before the first start.
type UnexpectedEventError struct {
	Event   string
	Message string
	State   *string
}

func (e *UnexpectedEventError) Error() string { return e.Message }

func (e *UnexpectedEventError) Name() string { return errorName(e.State) }

func (e *UnexpectedEventError) StateName() (string, bool) {
	if e.State == nil {
		return "", false
	}
	return *e.State, true
}

func (e *UnexpectedEventError) Is(target error) bool {
	return target == ErrUnexpectedEvent
}

func newUnexpectedEventError(event string, state *string) *UnexpectedEventError {
	msg := fmt.Sprintf("unexpected event %s before start", event)
	if state != nil {
		msg = fmt.Sprintf("unexpected event %s in state %s", event, *state)
	}
	return &UnexpectedEventError{Event: event, Message: msg, State: state}
}

// Phase names the callback slot that failed
type Phase string

const (
	PhaseEntry  Phase = "entry"
	PhaseExit   Phase = "exit"
	PhaseAction Phase = "action"
)

// CallbackError wraps an error returned (or a panic raised) by a user callback.
// Event is empty when the failing callback ran as part of a start.
type CallbackError struct {
	Phase Phase
	Event string
	State *string
	Err   error
}

func (e *CallbackError) Error() string {
	if e.Event == "" {
		return fmt.Sprintf("%s callback failed: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s callback failed on event %s: %v", e.Phase, e.Event, e.Err)
}

func (e *CallbackError) Name() string { return errorName(e.State) }

func (e *CallbackError) StateName() (string, bool) {
	if e.State == nil {
		return "", false
	}
	return *e.State, true
}

func (e *CallbackError) Unwrap() error { return e.Err }

// IsStructuralError reports whether err is a construction-time error
func IsStructuralError(err error) bool {
	var e *StructuralError
	return errors.As(err, &e)
}

// IsUnexpectedEventError reports whether err rejected an unexpected event
func IsUnexpectedEventError(err error) bool {
	var e *UnexpectedEventError
	return errors.As(err, &e)
}

// IsCallbackError reports whether err came from a user callback
func IsCallbackError(err error) bool {
	var e *CallbackError
	return errors.As(err, &e)
}
