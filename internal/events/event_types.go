package events

// EventType identifies a lifecycle event published by the core.
type EventType string

const (
	SessionAuthenticated   EventType = "session.authenticated"
	SessionUnauthenticated EventType = "session.unauthenticated"
	AppointmentBooked      EventType = "appointment.booked"
	AppointmentCancelled   EventType = "appointment.cancelled"
)

// Event carries a lifecycle notification and its payload.
type Event struct {
	Type    EventType
	Payload map[string]any
}
