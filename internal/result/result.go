// Package result defines the asynchronous contract every use case emits:
// an optional Pending followed by exactly one Ready or Failed.
package result

import (
	"context"
	"sync"

	"github.com/spec-kit/care-client/pkg/util"
)

// State tags the active variant of a Result.
type State int

const (
	StatePending State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is a tagged union with exactly one active variant. Value is only
// meaningful for StateReady, Reason only for StateFailed.
type Result[T any] struct {
	State  State
	Value  T
	Reason string
}

// Pending builds a pending result.
func Pending[T any]() Result[T] {
	return Result[T]{State: StatePending}
}

// Ready builds a terminal success result.
func Ready[T any](value T) Result[T] {
	return Result[T]{State: StateReady, Value: value}
}

// Failed builds a terminal failure result.
func Failed[T any](reason string) Result[T] {
	return Result[T]{State: StateFailed, Reason: reason}
}

// Terminal reports whether the result ends the sequence.
func (r Result[T]) Terminal() bool {
	return r.State == StateReady || r.State == StateFailed
}

// Emitter produces a result sequence while enforcing the contract:
// Pending at most once, exactly one terminal emission, nothing after it.
// The channel is buffered so an abandoned consumer never wedges the producer.
type Emitter[T any] struct {
	mu       sync.Mutex
	ch       chan Result[T]
	pending  bool
	terminal bool
}

// NewEmitter creates an emitter whose channel holds the full legal sequence.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{ch: make(chan Result[T], 2)}
}

// Channel returns the consumer side. It is closed after the terminal emission.
func (e *Emitter[T]) Channel() <-chan Result[T] {
	return e.ch
}

// Pending emits the loading state. Repeated or post-terminal calls are no-ops.
func (e *Emitter[T]) Pending() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending || e.terminal {
		return
	}
	e.pending = true
	e.ch <- Pending[T]()
}

// Ready emits the terminal success. Later emissions are no-ops.
func (e *Emitter[T]) Ready(value T) {
	e.emitTerminal(Ready(value))
}

// Fail emits the terminal failure. Later emissions are no-ops.
func (e *Emitter[T]) Fail(reason string) {
	e.emitTerminal(Failed[T](reason))
}

func (e *Emitter[T]) emitTerminal(r Result[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminal {
		return
	}
	e.terminal = true
	e.ch <- r
	close(e.ch)
}

// Run executes op as a result-producing operation: it emits Pending, invokes
// op, and translates its outcome into the terminal emission. Errors are
// rendered through the error taxonomy so every Failed carries a
// human-readable reason.
func Run[T any](ctx context.Context, op func(context.Context) (T, error)) <-chan Result[T] {
	emitter := NewEmitter[T]()
	emitter.Pending()

	go func() {
		value, err := op(ctx)
		if err != nil {
			emitter.Fail(util.Reason(err))
			return
		}
		emitter.Ready(value)
	}()

	return emitter.Channel()
}

// Await drains a result channel until the terminal emission and returns it.
// It respects ctx so an abandoning consumer can stop observing early.
func Await[T any](ctx context.Context, ch <-chan Result[T]) (Result[T], error) {
	for {
		select {
		case <-ctx.Done():
			return Result[T]{}, ctx.Err()
		case r, ok := <-ch:
			if !ok {
				return Failed[T]("result channel closed without terminal emission"), nil
			}
			if r.Terminal() {
				return r, nil
			}
		}
	}
}
