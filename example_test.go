package fsm_test

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/librescoot/fsm"
)

// Example: a turnstile driven by a plain Config
func Example_turnstile() {
	type counter struct{ coins int }
	pass := &counter{}

	m, err := fsm.New(fsm.Config{
		Start: "LOCKED",
		Pass:  pass,
		Spec: map[string]fsm.StateSpec{
			"LOCKED": {
				Entry: func(any) error {
					fmt.Println("locked")
					return nil
				},
				Transitions: map[string]fsm.TransitionSpec{
					"coin": {
						NextState: "UNLOCKED",
						Action: func(p any, args ...any) error {
							p.(*counter).coins += args[0].(int)
							return nil
						},
					},
				},
			},
			"UNLOCKED": {
				Entry: func(any) error {
					fmt.Println("unlocked")
					return nil
				},
				Transitions: map[string]fsm.TransitionSpec{
					"push": {NextState: "LOCKED"},
				},
			},
		},
	}, fsm.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))))
	if err != nil {
		fmt.Println(err)
		return
	}

	err = fsm.WaitAll(
		m.PostStart(),
		m.PostEvent("coin", 25),
		m.PostEvent("push"),
	)
	state, _ := m.CurrentState()
	fmt.Println(state, pass.coins, err)

	// Output:
	// locked
	// unlocked
	// locked
	// LOCKED 25 <nil>
}

// Example: building a machine fluently and matching errors
func Example_definition() {
	m, err := fsm.NewDefinition().
		State("START", fsm.WithExit(func(any) error {
			fmt.Println("exit START")
			return nil
		})).
		Transition("START", "finish", "END", fsm.WithAction(func(_ any, args ...any) error {
			fmt.Println("action", args)
			return nil
		})).
		State("END", fsm.WithEntry(func(any) error {
			fmt.Println("entry END")
			return nil
		})).
		Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	early := m.PostEvent("finish").Await()
	var ue *fsm.UnexpectedEventError
	if errors.As(early, &ue) {
		fmt.Println(ue.Name(), "-", ue.Error())
	}

	_ = fsm.WaitAll(m.PostStart(), m.PostEvent("finish", "a", 1))

	// Output:
	// FiniteStateMachine [STATE: <None>] - unexpected event finish before start
	// exit START
	// action [a 1]
	// entry END
}

// Example: a structural error is returned before any machine exists
func Example_structuralError() {
	_, err := fsm.New(fsm.Config{
		Spec: map[string]fsm.StateSpec{
			"START": {Transitions: map[string]fsm.TransitionSpec{"go": {NextState: "NOWHERE"}}},
		},
	})

	var se *fsm.StructuralError
	if errors.As(err, &se) {
		fmt.Println(se.Kind, se.Name(), se.Error())
	}

	// Output:
	// InvalidNextState FiniteStateMachine [STATE: <None>] invalid next state - NOWHERE
}

// Example: a delayed event
func Example_timer() {
	done := make(chan struct{})
	m := fsm.MustNew(fsm.Config{
		Spec: map[string]fsm.StateSpec{
			"START": {Transitions: map[string]fsm.TransitionSpec{"timeout": {NextState: "END"}}},
			"END":   {Entry: func(any) error {
				fmt.Println("timed out")
				close(done)
				return nil
			}},
		},
	}, fsm.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))))

	_ = m.PostStart().Await()
	m.PostEventAfter("idle", 10*time.Millisecond, "timeout")
	<-done

	// Output:
	// timed out
}
