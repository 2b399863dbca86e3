package api

import "github.com/spec-kit/care-client/internal/domain"

// Envelope is the backend's standard response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data"`
	Message string `json:"message"`
}

// LoginRequest is the POST /api/auth/login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the POST /api/auth/register payload. Doctor-only fields
// are pointers so patients omit them entirely.
type RegisterRequest struct {
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	MobileNumber string      `json:"mobileNumber"`
	Role         domain.Role `json:"role"`
	Gender       string      `json:"gender"`
	DOB          string      `json:"dob"`

	Fee        *int    `json:"fee,omitempty"`
	Speciality *string `json:"speciality,omitempty"`
	City       *string `json:"city,omitempty"`
	Address    *string `json:"address,omitempty"`
}

// TokenData carries the issued credential.
type TokenData struct {
	AccessToken string `json:"accessToken"`
}

// ProfileDTO is the GET /api/profile payload.
type ProfileDTO struct {
	Image        string      `json:"image"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	MobileNumber string      `json:"mobileNumber"`
	Role         domain.Role `json:"role"`
	Gender       string      `json:"gender"`
	DOB          string      `json:"dob"`

	Speciality *string `json:"speciality,omitempty"`
	Fee        *int    `json:"fee,omitempty"`
	City       *string `json:"city,omitempty"`
	Address    *string `json:"address,omitempty"`
}

// SlotDTO is one bookable window on the wire.
type SlotDTO struct {
	StartTime domain.ClockTime `json:"startTime"`
	EndTime   domain.ClockTime `json:"endTime"`
	IsBooked  bool             `json:"isBooked"`
}

// AvailabilityDTO is the GET /api/availability payload.
type AvailabilityDTO struct {
	DoctorID string    `json:"doctorId"`
	Date     string    `json:"date"`
	Slots    []SlotDTO `json:"slots"`
}

// AvailabilityRequest is the POST /api/availability/add payload.
type AvailabilityRequest struct {
	Date  string    `json:"date"`
	Slots []SlotDTO `json:"slots"`
}

// BookAppointmentRequest is the POST /api/appointments/book payload.
type BookAppointmentRequest struct {
	DoctorID  string           `json:"doctorId"`
	Date      string           `json:"date"`
	StartTime domain.ClockTime `json:"startTime"`
	EndTime   domain.ClockTime `json:"endTime"`
}

// AppointmentDTO is an appointment as the patient sees it.
type AppointmentDTO struct {
	ID        string           `json:"_id"`
	DoctorID  string           `json:"doctorId"`
	PatientID string           `json:"patientId"`
	Date      string           `json:"date"`
	StartTime domain.ClockTime `json:"startTime"`
	EndTime   domain.ClockTime `json:"endTime"`
	Status    string           `json:"status"`
}

// PatientDTO is the patient summary embedded in doctor appointment lists.
type PatientDTO struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
}

// DoctorAppointmentDTO is an appointment as the doctor sees it.
type DoctorAppointmentDTO struct {
	ID        string           `json:"_id"`
	DoctorID  string           `json:"doctorId"`
	Patient   PatientDTO       `json:"patientId"`
	Date      string           `json:"date"`
	StartTime domain.ClockTime `json:"startTime"`
	EndTime   domain.ClockTime `json:"endTime"`
	Status    string           `json:"status"`
}

// LocationDTO is a GeoJSON point: coordinates are [lng, lat].
type LocationDTO struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// DoctorDTO is a provider returned by discovery queries.
type DoctorDTO struct {
	ID         string      `json:"_id"`
	Name       string      `json:"name"`
	Speciality string      `json:"speciality"`
	Fee        int         `json:"fee"`
	City       string      `json:"city"`
	Address    string      `json:"address"`
	Location   LocationDTO `json:"location"`
}

// Appointment converts the wire shape to the domain model.
func (a AppointmentDTO) Appointment() domain.Appointment {
	return domain.Appointment{
		ID:         a.ID,
		ProviderID: a.DoctorID,
		SubjectID:  a.PatientID,
		Date:       a.Date,
		Start:      a.StartTime,
		End:        a.EndTime,
		Status:     domain.AppointmentStatus(a.Status),
	}
}

// ProviderAppointment converts the wire shape to the domain model.
func (a DoctorAppointmentDTO) ProviderAppointment() domain.ProviderAppointment {
	return domain.ProviderAppointment{
		Appointment: domain.Appointment{
			ID:         a.ID,
			ProviderID: a.DoctorID,
			SubjectID:  a.Patient.ID,
			Date:       a.Date,
			Start:      a.StartTime,
			End:        a.EndTime,
			Status:     domain.AppointmentStatus(a.Status),
		},
		Patient: domain.PatientSummary{
			ID:           a.Patient.ID,
			Name:         a.Patient.Name,
			MobileNumber: a.Patient.MobileNumber,
		},
	}
}

// Doctor converts the wire shape to the domain model.
func (d DoctorDTO) Doctor() domain.Doctor {
	doc := domain.Doctor{
		ID:         d.ID,
		Name:       d.Name,
		Speciality: d.Speciality,
		Fee:        d.Fee,
		City:       d.City,
		Address:    d.Address,
	}
	if len(d.Location.Coordinates) == 2 {
		doc.Longitude = d.Location.Coordinates[0]
		doc.Latitude = d.Location.Coordinates[1]
	}
	return doc
}

// Profile converts the wire shape to the domain model.
func (p ProfileDTO) Profile() domain.Profile {
	return domain.Profile{
		Name:         p.Name,
		Email:        p.Email,
		MobileNumber: p.MobileNumber,
		Role:         p.Role,
		Gender:       p.Gender,
		DOB:          p.DOB,
		Image:        p.Image,
		Speciality:   p.Speciality,
		Fee:          p.Fee,
		City:         p.City,
		Address:      p.Address,
	}
}
