package fsm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Completion is the eventual outcome of one PostStart or PostEvent call.
// It settles exactly once.
type Completion struct {
	id   string
	err  error
	once sync.Once
	done chan struct{}
}

func newCompletion() *Completion {
	return &Completion{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

func (c *Completion) settle(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// ID identifies the request in logs
func (c *Completion) ID() string { return c.id }

// Done is closed once the request has been processed
func (c *Completion) Done() <-chan struct{} { return c.done }

// Err returns the outcome without blocking. It is nil until settled.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// IsComplete checks if the request has been processed without blocking
func (c *Completion) IsComplete() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Await waits for the request to be processed and returns its outcome
func (c *Completion) Await() error {
	<-c.done
	return c.err
}

// AwaitContext is Await bounded by ctx. Giving up does not cancel the request.
func (c *Completion) AwaitContext(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitWithTimeout is Await bounded by timeout. Returns ErrTimeout if the
// request is still pending when it elapses.
func (c *Completion) AwaitWithTimeout(timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-c.done:
		return c.err
	case <-t.C:
		return ErrTimeout
	}
}

// WaitAll waits for every completion and returns the first error in argument order
func WaitAll(cs ...*Completion) error {
	var first error
	for _, c := range cs {
		if err := c.Await(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
