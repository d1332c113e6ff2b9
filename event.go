package fsm

type requestKind int

const (
	requestStart requestKind = iota
	requestEvent
)

// request is one queued unit of work
type request struct {
	kind  requestKind
	event string
	args  []any
	done  *Completion
}

func (k requestKind) String() string {
	if k == requestStart {
		return "start"
	}
	return "event"
}
