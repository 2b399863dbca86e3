package result

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect[T any](ch <-chan Result[T]) []Result[T] {
	var out []Result[T]
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestEmitterPendingThenReady(t *testing.T) {
	emitter := NewEmitter[int]()
	emitter.Pending()
	emitter.Ready(42)

	got := collect(emitter.Channel())
	require.Len(t, got, 2)
	require.Equal(t, StatePending, got[0].State)
	require.Equal(t, StateReady, got[1].State)
	require.Equal(t, 42, got[1].Value)
}

func TestEmitterTerminalIsFinal(t *testing.T) {
	emitter := NewEmitter[string]()
	emitter.Pending()
	emitter.Fail("boom")

	// Nothing after the terminal emission, whatever the producer tries.
	emitter.Ready("late")
	emitter.Fail("also late")
	emitter.Pending()

	got := collect(emitter.Channel())
	require.Len(t, got, 2)
	require.Equal(t, StateFailed, got[1].State)
	require.Equal(t, "boom", got[1].Reason)
}

func TestEmitterPendingAtMostOnce(t *testing.T) {
	emitter := NewEmitter[int]()
	emitter.Pending()
	emitter.Pending()
	emitter.Ready(1)

	got := collect(emitter.Channel())
	require.Len(t, got, 2)
}

func TestEmitterTerminalWithoutPending(t *testing.T) {
	emitter := NewEmitter[int]()
	emitter.Ready(7)

	got := collect(emitter.Channel())
	require.Len(t, got, 1)
	require.Equal(t, StateReady, got[0].State)
}

func TestRunSuccess(t *testing.T) {
	ch := Run(context.Background(), func(context.Context) (string, error) {
		return "payload", nil
	})

	got := collect(ch)
	require.Len(t, got, 2)
	require.Equal(t, StatePending, got[0].State)
	require.Equal(t, StateReady, got[1].State)
	require.Equal(t, "payload", got[1].Value)
}

func TestRunFailureCarriesReason(t *testing.T) {
	ch := Run(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("connection reset")
	})

	got := collect(ch)
	require.Equal(t, StateFailed, got[1].State)
	require.Contains(t, got[1].Reason, "connection reset")
}

func TestRunAbandonedConsumerDoesNotWedgeProducer(t *testing.T) {
	done := make(chan struct{})
	_ = Run(context.Background(), func(context.Context) (int, error) {
		defer close(done)
		return 1, nil
	})

	// Nobody reads the channel; the producer must still finish.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer blocked on an abandoned consumer")
	}
}

func TestAwait(t *testing.T) {
	ch := Run(context.Background(), func(context.Context) (string, error) {
		return "done", nil
	})
	res, err := Await(context.Background(), ch)
	require.NoError(t, err)
	require.Equal(t, StateReady, res.State)
	require.Equal(t, "done", res.Value)
}

func TestAwaitStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	block := make(chan struct{})
	ch := Run(context.Background(), func(context.Context) (int, error) {
		<-block
		return 0, nil
	})

	cancel()
	_, err := Await(ctx, ch)
	require.ErrorIs(t, err, context.Canceled)
	close(block)
}
