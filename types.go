package fsm

import "log/slog"

// Default names for the start and end states
const (
	DefaultStart = "START"
	DefaultEnd   = "END"
)

// Callback is an entry or exit handler. It receives only the machine's pass value.
type Callback func(pass any) error

// Action runs during a transition and receives the pass value followed by the
// arguments given to PostEvent.
type Action func(pass any, args ...any) error

// Options tunes runtime behavior
type Options struct {
	// IgnoreUnexpectedEvents settles events without a matching transition
	// successfully instead of failing them.
	IgnoreUnexpectedEvents bool
}

// Config is the construction-time input of a Machine
type Config struct {
	Spec    map[string]StateSpec
	Start   string // defaults to DefaultStart
	End     string // defaults to DefaultEnd
	Pass    any    // handed to every callback as-is
	Options Options
}

// Logger is the default logger used when none is provided
var Logger = slog.Default()
