package domain

// AppointmentStatus represents lifecycle states for an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is a booked slot as confirmed by the server. It is never
// mutated locally; state changes arrive as fresh server responses.
type Appointment struct {
	ID         string
	ProviderID string
	SubjectID  string
	Date       string
	Start      ClockTime
	End        ClockTime
	Status     AppointmentStatus
}

// PatientSummary is the patient info attached to a doctor's appointment list.
type PatientSummary struct {
	ID           string
	Name         string
	MobileNumber string
}

// ProviderAppointment is an appointment as seen by the doctor, with the
// booking patient resolved.
type ProviderAppointment struct {
	Appointment
	Patient PatientSummary
}
