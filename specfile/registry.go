package specfile

import "github.com/librescoot/fsm"

// Registry maps callback names used in spec files to functions
type Registry struct {
	callbacks map[string]fsm.Callback
	actions   map[string]fsm.Action
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		callbacks: make(map[string]fsm.Callback),
		actions:   make(map[string]fsm.Action),
	}
}

// Callback registers an entry/exit callback under name
func (r *Registry) Callback(name string, fn fsm.Callback) *Registry {
	r.callbacks[name] = fn
	return r
}

// Action registers a transition action under name
func (r *Registry) Action(name string, fn fsm.Action) *Registry {
	r.actions[name] = fn
	return r
}

func (r *Registry) callback(name string) (fsm.Callback, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.callbacks[name]
	return fn, ok
}

func (r *Registry) action(name string) (fsm.Action, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.actions[name]
	return fn, ok
}
