package main

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/care-client/internal/api"
	"github.com/spec-kit/care-client/internal/domain"
)

const claimsKey = "auth_claims"

type server struct {
	store      *memStore
	tokens     *TokenManager
	bcryptCost int
	logger     *zap.Logger
}

func (s *server) fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// requireAuth validates bearer tokens and stores claims for handlers.
func (s *server) requireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return s.fail(c, http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return s.fail(c, http.StatusUnauthorized, "invalid authorization header")
	}

	claims, err := s.tokens.ParseToken(parts[1])
	if err != nil {
		return s.fail(c, http.StatusUnauthorized, "invalid token")
	}
	if _, ok := s.store.accountByID(claims.SubjectID); !ok {
		return s.fail(c, http.StatusUnauthorized, "unknown subject")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

func claimsFromContext(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(claimsKey).(*Claims)
	return claims
}

// handleRegister handles POST /api/auth/register.
func (s *server) handleRegister(c *fiber.Ctx) error {
	var req api.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || !req.Role.Valid() {
		return s.fail(c, http.StatusBadRequest, "name, email, password, role required")
	}
	if req.Role == domain.RoleDoctor && (req.Fee == nil || req.Speciality == nil) {
		return s.fail(c, http.StatusBadRequest, "doctor profile requires fee and speciality")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, "failed to hash password")
	}

	acc := &account{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		MobileNumber: req.MobileNumber,
		Role:         req.Role,
		Gender:       req.Gender,
		DOB:          req.DOB,
		Fee:          req.Fee,
		Speciality:   req.Speciality,
		City:         req.City,
		Address:      req.Address,
	}
	if !s.store.createAccount(acc) {
		return s.fail(c, http.StatusConflict, "email already registered")
	}

	token, err := s.tokens.GenerateToken(acc.ID, acc.Role)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, "failed to issue token")
	}
	s.store.rememberSubject(acc.ID)
	s.logger.Info("account registered", zap.String("email", acc.Email), zap.String("role", string(acc.Role)))

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"accessToken": token},
		"message": "account created",
	})
}

// handleLogin handles POST /api/auth/login.
func (s *server) handleLogin(c *fiber.Ctx) error {
	var req api.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid payload")
	}

	acc, ok := s.store.accountByEmail(req.Email)
	if !ok {
		return s.fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		return s.fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateToken(acc.ID, acc.Role)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, "failed to issue token")
	}
	s.store.rememberSubject(acc.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"accessToken": token},
	})
}

// handleRefresh handles POST /api/auth/refresh. It must succeed without a
// valid credential attached: an expired bearer still names the subject, and
// with no header at all the most recently authenticated subject refreshes.
func (s *server) handleRefresh(c *fiber.Ctx) error {
	subjectID := ""

	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 {
			if claims, err := s.tokens.SubjectFromExpired(parts[1]); err == nil {
				subjectID = claims.SubjectID
			}
		}
	}
	if subjectID == "" {
		last, ok := s.store.lastAuthenticated()
		if !ok {
			return s.fail(c, http.StatusUnauthorized, "no session to refresh")
		}
		subjectID = last
	}

	acc, ok := s.store.accountByID(subjectID)
	if !ok {
		return s.fail(c, http.StatusUnauthorized, "unknown subject")
	}
	token, err := s.tokens.GenerateToken(acc.ID, acc.Role)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, "failed to issue token")
	}
	s.logger.Info("credential refreshed", zap.String("subject", acc.ID))

	return c.JSON(fiber.Map{"accessToken": token})
}

// handleProfile handles GET /api/profile.
func (s *server) handleProfile(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	acc, ok := s.store.accountByID(claims.SubjectID)
	if !ok {
		return s.fail(c, http.StatusNotFound, "profile not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": api.ProfileDTO{
			Name:         acc.Name,
			Email:        acc.Email,
			MobileNumber: acc.MobileNumber,
			Role:         acc.Role,
			Gender:       acc.Gender,
			DOB:          acc.DOB,
			Speciality:   acc.Speciality,
			Fee:          acc.Fee,
			City:         acc.City,
			Address:      acc.Address,
		},
	})
}

// handleGetAvailability handles GET /api/availability.
func (s *server) handleGetAvailability(c *fiber.Ctx) error {
	doctorID := c.Query("doctorId")
	date := c.Query("date")
	if doctorID == "" || date == "" {
		return s.fail(c, http.StatusBadRequest, "doctorId and date required")
	}

	slots := s.store.slotsFor(doctorID, date)
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data": api.AvailabilityDTO{
			DoctorID: doctorID,
			Date:     date,
			Slots:    slots,
		},
		"message": "availability",
	})
}

// handleAddAvailability handles POST /api/availability/add.
func (s *server) handleAddAvailability(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims.Role != domain.RoleDoctor {
		return s.fail(c, http.StatusForbidden, "doctor role required")
	}

	var req api.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid payload")
	}
	if req.Date == "" || len(req.Slots) == 0 {
		return s.fail(c, http.StatusBadRequest, "date and slots required")
	}

	s.store.setAvailability(claims.SubjectID, req.Date, req.Slots)
	return c.JSON(fiber.Map{"success": true, "message": "availability saved"})
}

// handleBook handles POST /api/appointments/book.
func (s *server) handleBook(c *fiber.Ctx) error {
	claims := claimsFromContext(c)

	var req api.BookAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid payload")
	}
	if req.DoctorID == "" || req.Date == "" {
		return s.fail(c, http.StatusBadRequest, "doctorId and date required")
	}

	appt, ok := s.store.book(req.DoctorID, claims.SubjectID, req.Date, req.StartTime, req.EndTime)
	if !ok {
		return s.fail(c, http.StatusConflict, "slot already booked")
	}
	s.logger.Info("appointment booked",
		zap.String("doctor", req.DoctorID),
		zap.String("patient", claims.SubjectID),
		zap.String("date", req.Date))

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    apptDTO(appt),
		"message": "appointment booked",
	})
}

// handleMyAppointments handles GET /api/appointments/my.
func (s *server) handleMyAppointments(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	records := s.store.appointmentsForPatient(claims.SubjectID)

	out := make([]api.AppointmentDTO, 0, len(records))
	for _, appt := range records {
		out = append(out, apptDTO(appt))
	}
	return c.JSON(fiber.Map{"success": true, "data": out, "message": "appointments"})
}

// handleDoctorAppointments handles GET /api/appointments/doctor.
func (s *server) handleDoctorAppointments(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims.Role != domain.RoleDoctor {
		return s.fail(c, http.StatusForbidden, "doctor role required")
	}

	records := s.store.appointmentsForDoctor(claims.SubjectID)
	out := make([]api.DoctorAppointmentDTO, 0, len(records))
	for _, appt := range records {
		patient := api.PatientDTO{ID: appt.PatientID}
		if acc, ok := s.store.accountByID(appt.PatientID); ok {
			patient.Name = acc.Name
			patient.MobileNumber = acc.MobileNumber
		}
		out = append(out, api.DoctorAppointmentDTO{
			ID:        appt.ID,
			DoctorID:  appt.DoctorID,
			Patient:   patient,
			Date:      appt.Date,
			StartTime: appt.Start,
			EndTime:   appt.End,
			Status:    string(appt.Status),
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": out, "message": "appointments"})
}

// handleCancel handles DELETE /api/appointments/:id.
func (s *server) handleCancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.store.cancel(id) {
		return s.fail(c, http.StatusNotFound, "appointment not found")
	}
	return c.JSON(fiber.Map{"success": true, "message": "appointment cancelled"})
}

// handleNearbyDoctors handles GET /api/doctors/nearby.
func (s *server) handleNearbyDoctors(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid lat")
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid lng")
	}
	distance, err := strconv.Atoi(c.Query("distance", "10"))
	if err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid distance")
	}

	var out []api.DoctorDTO
	for _, doc := range s.store.doctors() {
		if haversineKm(lat, lng, doc.Latitude, doc.Longitude) > float64(distance) {
			continue
		}
		dto := api.DoctorDTO{
			ID:   doc.ID,
			Name: doc.Name,
			Location: api.LocationDTO{
				Type:        "Point",
				Coordinates: []float64{doc.Longitude, doc.Latitude},
			},
		}
		if doc.Speciality != nil {
			dto.Speciality = *doc.Speciality
		}
		if doc.Fee != nil {
			dto.Fee = *doc.Fee
		}
		if doc.City != nil {
			dto.City = *doc.City
		}
		if doc.Address != nil {
			dto.Address = *doc.Address
		}
		out = append(out, dto)
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func apptDTO(appt *appointmentRecord) api.AppointmentDTO {
	return api.AppointmentDTO{
		ID:        appt.ID,
		DoctorID:  appt.DoctorID,
		PatientID: appt.PatientID,
		Date:      appt.Date,
		StartTime: appt.Start,
		EndTime:   appt.End,
		Status:    string(appt.Status),
	}
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
