// Package specfile loads machine configurations from YAML documents.
//
// A document names its callbacks; the names are resolved against a Registry
// when the document is parsed:
//
//	start: START
//	end: END
//	options:
//	  ignoreUnexpectedEvents: false
//	states:
//	  START:
//	    entry: greet
//	    exit: bye
//	    transitions:
//	      EVENT: { nextState: END, action: work }
//	      SKIP: END
//
// A transition given as a bare scalar is shorthand for {nextState: <scalar>}.
package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/librescoot/fsm"
)

var (
	ErrUnknownCallback  = errors.New("unknown callback")
	ErrMissingNextState = errors.New("transition has no nextState")
	ErrNoStates         = errors.New("document declares no states")
)

type document struct {
	Start   string              `yaml:"start"`
	End     string              `yaml:"end"`
	Options optionsDoc          `yaml:"options"`
	States  map[string]stateDoc `yaml:"states"`
}

type optionsDoc struct {
	IgnoreUnexpectedEvents bool `yaml:"ignoreUnexpectedEvents"`
}

type stateDoc struct {
	Entry       string                   `yaml:"entry"`
	Exit        string                   `yaml:"exit"`
	Transitions map[string]transitionDoc `yaml:"transitions"`
}

type transitionDoc struct {
	NextState string `yaml:"nextState"`
	Action    string `yaml:"action"`
}

func (t *transitionDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.NextState = node.Value
		return nil
	}
	type plain transitionDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = transitionDoc(p)
	return nil
}

// Load reads and parses the spec file at path
func Load(path string, reg *Registry) (fsm.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fsm.Config{}, fmt.Errorf("read spec file: %w", err)
	}
	cfg, err := Parse(data, reg)
	if err != nil {
		return fsm.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document into a Config, resolving callback names
// through reg. Unknown document fields are rejected. Structural checks are
// left to fsm.New.
func Parse(data []byte, reg *Registry) (fsm.Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return fsm.Config{}, ErrNoStates
		}
		return fsm.Config{}, fmt.Errorf("parse spec: %w", err)
	}
	if len(doc.States) == 0 {
		return fsm.Config{}, ErrNoStates
	}

	cfg := fsm.Config{
		Start:   doc.Start,
		End:     doc.End,
		Options: fsm.Options{IgnoreUnexpectedEvents: doc.Options.IgnoreUnexpectedEvents},
		Spec:    make(map[string]fsm.StateSpec, len(doc.States)),
	}

	for name, sd := range doc.States {
		st, err := compileState(sd, reg)
		if err != nil {
			return fsm.Config{}, fmt.Errorf("state %s: %w", name, err)
		}
		cfg.Spec[name] = st
	}
	return cfg, nil
}

func compileState(sd stateDoc, reg *Registry) (fsm.StateSpec, error) {
	var st fsm.StateSpec

	if sd.Entry != "" {
		fn, ok := reg.callback(sd.Entry)
		if !ok {
			return st, fmt.Errorf("entry %q: %w", sd.Entry, ErrUnknownCallback)
		}
		st.Entry = fn
	}
	if sd.Exit != "" {
		fn, ok := reg.callback(sd.Exit)
		if !ok {
			return st, fmt.Errorf("exit %q: %w", sd.Exit, ErrUnknownCallback)
		}
		st.Exit = fn
	}

	if len(sd.Transitions) > 0 {
		st.Transitions = make(map[string]fsm.TransitionSpec, len(sd.Transitions))
	}
	for ev, td := range sd.Transitions {
		if td.NextState == "" {
			return st, fmt.Errorf("event %s: %w", ev, ErrMissingNextState)
		}
		t := fsm.TransitionSpec{NextState: td.NextState}
		if td.Action != "" {
			fn, ok := reg.action(td.Action)
			if !ok {
				return st, fmt.Errorf("event %s action %q: %w", ev, td.Action, ErrUnknownCallback)
			}
			t.Action = fn
		}
		st.Transitions[ev] = t
	}
	return st, nil
}
