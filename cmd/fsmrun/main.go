// Command fsmrun loads a machine from a YAML spec file, starts it, feeds it
// events and prints the resulting state.
//
//	fsmrun -spec machine.yaml coin:25 push
//
// Each event argument is NAME or NAME:arg1,arg2. Spec files may name the
// built-in callback "trace" for entry, exit or action; it prints each
// invocation to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/librescoot/fsm"
	"github.com/librescoot/fsm/internal/config"
	"github.com/librescoot/fsm/internal/logger"
	"github.com/librescoot/fsm/specfile"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("fsmrun", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.SpecFile, "spec", cfg.SpecFile, "path to the YAML machine spec (env FSM_SPEC_FILE)")
	fs.BoolVar(&cfg.IgnoreUnexpected, "ignore-unexpected", cfg.IgnoreUnexpected, "settle unexpected events successfully")
	fs.DurationVar(&cfg.AwaitTimeout, "timeout", cfg.AwaitTimeout, "how long to wait for all events to be processed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.SpecFile == "" {
		return errors.New("no spec file: pass -spec or set FSM_SPEC_FILE")
	}

	log := logger.New(
		logger.WithOutput(stderr),
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(cfg.LogFormat),
		logger.WithAttr(slog.String("spec", cfg.SpecFile)),
	)

	var m *fsm.Machine
	reg := tracingRegistry(stdout, func() string {
		s, _ := m.CurrentState()
		return s
	})

	mc, err := specfile.Load(cfg.SpecFile, reg)
	if err != nil {
		return err
	}
	if cfg.IgnoreUnexpected {
		mc.Options.IgnoreUnexpectedEvents = true
	}

	m, err = fsm.New(mc, fsm.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build machine: %w", err)
	}

	pending := []*fsm.Completion{m.PostStart()}
	for _, arg := range fs.Args() {
		name, eventArgs := parseEvent(arg)
		pending = append(pending, m.PostEvent(name, eventArgs...))
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.AwaitTimeout)
	defer cancel()

	var failed error
	for _, c := range pending {
		if err := c.AwaitContext(ctx); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("waiting for machine: %w", err)
			}
			log.Warn("request failed", "id", c.ID(), "error", err)
			if failed == nil {
				failed = err
			}
		}
	}

	state, _ := m.CurrentState()
	fmt.Fprintf(stdout, "state: %s\n", state)
	return failed
}

// parseEvent splits NAME:arg1,arg2 into the event name and its arguments
func parseEvent(arg string) (string, []any) {
	name, rest, ok := strings.Cut(arg, ":")
	if !ok || rest == "" {
		return name, nil
	}
	parts := strings.Split(rest, ",")
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return name, out
}

func tracingRegistry(w io.Writer, current func() string) *specfile.Registry {
	return specfile.NewRegistry().
		Callback("trace", func(any) error {
			fmt.Fprintf(w, "callback in %s\n", current())
			return nil
		}).
		Action("trace", func(_ any, args ...any) error {
			fmt.Fprintf(w, "action in %s %v\n", current(), args)
			return nil
		})
}
