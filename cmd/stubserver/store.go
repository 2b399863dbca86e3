package main

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/care-client/internal/api"
	"github.com/spec-kit/care-client/internal/domain"
)

// account is a registered user with a hashed password.
type account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	MobileNumber string
	Role         domain.Role
	Gender       string
	DOB          string

	Fee        *int
	Speciality *string
	City       *string
	Address    *string
	Latitude   float64
	Longitude  float64
}

// appointmentRecord is a booked slot.
type appointmentRecord struct {
	ID        string
	DoctorID  string
	PatientID string
	Date      string
	Start     domain.ClockTime
	End       domain.ClockTime
	Status    domain.AppointmentStatus
}

type availabilityKey struct {
	doctorID string
	date     string
}

// memStore holds all stub state in memory. It exists for development and
// tests; durability is deliberately out of scope.
type memStore struct {
	mu           sync.RWMutex
	accounts     map[string]*account // by id
	byEmail      map[string]*account
	availability map[availabilityKey][]api.SlotDTO
	appointments map[string]*appointmentRecord
	lastSubject  string
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     make(map[string]*account),
		byEmail:      make(map[string]*account),
		availability: make(map[availabilityKey][]api.SlotDTO),
		appointments: make(map[string]*appointmentRecord),
	}
}

func (s *memStore) createAccount(acc *account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[acc.Email]; exists {
		return false
	}
	acc.ID = uuid.NewString()
	s.accounts[acc.ID] = acc
	s.byEmail[acc.Email] = acc
	return true
}

func (s *memStore) accountByEmail(email string) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byEmail[email]
	return acc, ok
}

func (s *memStore) accountByID(id string) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	return acc, ok
}

func (s *memStore) rememberSubject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSubject = id
}

func (s *memStore) lastAuthenticated() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSubject, s.lastSubject != ""
}

func (s *memStore) setAvailability(doctorID, date string, slots []api.SlotDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availability[availabilityKey{doctorID: doctorID, date: date}] = slots
}

// slotsFor merges published availability with booked appointments for the day.
func (s *memStore) slotsFor(doctorID, date string) []api.SlotDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	published := s.availability[availabilityKey{doctorID: doctorID, date: date}]
	slots := make([]api.SlotDTO, len(published))
	copy(slots, published)

	for _, appt := range s.appointments {
		if appt.DoctorID != doctorID || appt.Date != date || appt.Status == domain.AppointmentCancelled {
			continue
		}
		marked := false
		for i, slot := range slots {
			if slot.StartTime == appt.Start && slot.EndTime == appt.End {
				slots[i].IsBooked = true
				marked = true
				break
			}
		}
		if !marked {
			slots = append(slots, api.SlotDTO{StartTime: appt.Start, EndTime: appt.End, IsBooked: true})
		}
	}
	return slots
}

func (s *memStore) book(doctorID, patientID, date string, start, end domain.ClockTime) (*appointmentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, appt := range s.appointments {
		if appt.DoctorID == doctorID && appt.Date == date &&
			appt.Start == start && appt.End == end &&
			appt.Status != domain.AppointmentCancelled {
			return nil, false
		}
	}

	appt := &appointmentRecord{
		ID:        uuid.NewString(),
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      date,
		Start:     start,
		End:       end,
		Status:    domain.AppointmentConfirmed,
	}
	s.appointments[appt.ID] = appt
	return appt, true
}

func (s *memStore) appointmentsForPatient(patientID string) []*appointmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*appointmentRecord
	for _, appt := range s.appointments {
		if appt.PatientID == patientID {
			out = append(out, appt)
		}
	}
	return out
}

func (s *memStore) appointmentsForDoctor(doctorID string) []*appointmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*appointmentRecord
	for _, appt := range s.appointments {
		if appt.DoctorID == doctorID {
			out = append(out, appt)
		}
	}
	return out
}

func (s *memStore) cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appointments[id]
	if !ok {
		return false
	}
	appt.Status = domain.AppointmentCancelled
	return true
}

func (s *memStore) doctors() []*account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*account
	for _, acc := range s.accounts {
		if acc.Role == domain.RoleDoctor {
			out = append(out, acc)
		}
	}
	return out
}
