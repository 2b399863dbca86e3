package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var got []Event
	d.Subscribe(SessionAuthenticated, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{
		Type:    SessionAuthenticated,
		Payload: map[string]any{"subject_id": "u1"},
	}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: AppointmentBooked}))

	require.Len(t, got, 1, "only the subscribed event type is delivered")
	require.Equal(t, "u1", got[0].Payload["subject_id"])
}

func TestDispatcherSurvivesFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	d.Subscribe(AppointmentCancelled, func(context.Context, Event) error {
		return errors.New("handler blew up")
	})
	delivered := false
	d.Subscribe(AppointmentCancelled, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: AppointmentCancelled}))
	require.True(t, delivered, "a failing handler must not block the rest")
}
