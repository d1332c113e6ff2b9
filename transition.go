package fsm

// TransitionSpec describes how a state reacts to one event
type TransitionSpec struct {
	NextState string // must name a state in the spec, or the end state
	Action    Action // optional: runs after exit and before entry
}

// TransitionOption is a functional option for configuring a TransitionSpec
type TransitionOption func(*TransitionSpec)

// WithAction sets an action to execute during the transition
func WithAction(fn Action) TransitionOption {
	return func(t *TransitionSpec) {
		t.Action = fn
	}
}
