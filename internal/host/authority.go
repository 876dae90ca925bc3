// internal/host/authority.go
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tamzrod/discord-status/internal/poller"
)

// ErrStopped is returned for work submitted to a stopped authority.
var ErrStopped = errors.New("host: authority stopped")

// Authority serializes every access to State on one goroutine.
// Poll results and snapshot reads are processed in arrival order.
type Authority struct {
	state *State
	tasks chan func(*State)

	once sync.Once
	done chan struct{}
}

// NewAuthority creates an authority that owns state.
func NewAuthority(state *State) *Authority {
	return &Authority{
		state: state,
		tasks: make(chan func(*State)),
		done:  make(chan struct{}),
	}
}

// Run is the authority loop. It returns when ctx is cancelled;
// afterwards every Call fails with ErrStopped.
func (a *Authority) Run(ctx context.Context, updates <-chan poller.PollResult) {
	defer a.once.Do(func() { close(a.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			a.state.Apply(r)
		case task := <-a.tasks:
			task(a.state)
		}
	}
}

// Done is closed once the loop has exited.
func (a *Authority) Done() <-chan struct{} {
	return a.done
}

// Future is the pending result of a Call.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Await blocks until the task has run or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Call schedules fn on the authority goroutine.
// Submission blocks until the loop accepts the task, ctx ends, or the
// authority stops. A panic inside fn becomes the Future's error.
func Call[T any](ctx context.Context, a *Authority, fn func(*State) T) (*Future[T], error) {
	f := &Future[T]{done: make(chan struct{})}

	task := func(s *State) {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("host: task panicked: %v", r)
			}
		}()
		f.val = fn(s)
	}

	select {
	case <-a.done:
		return nil, ErrStopped
	default:
	}

	select {
	case a.tasks <- task:
		return f, nil
	case <-a.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
