package fsm

// StateSpec defines a state in the machine
type StateSpec struct {
	Entry Callback // invoked on arrival
	Exit  Callback // invoked on departure; forbidden on the end state

	// Event name -> reaction. Must be empty on the end state.
	Transitions map[string]TransitionSpec
}

// StateOption is a functional option for configuring a StateSpec
type StateOption func(*StateSpec)

// WithEntry sets the entry callback for the state
func WithEntry(fn Callback) StateOption {
	return func(s *StateSpec) {
		s.Entry = fn
	}
}

// WithExit sets the exit callback for the state
func WithExit(fn Callback) StateOption {
	return func(s *StateSpec) {
		s.Exit = fn
	}
}

func (s StateSpec) clone() StateSpec {
	out := StateSpec{Entry: s.Entry, Exit: s.Exit}
	if len(s.Transitions) > 0 {
		out.Transitions = make(map[string]TransitionSpec, len(s.Transitions))
		for ev, t := range s.Transitions {
			out.Transitions[ev] = t
		}
	}
	return out
}
