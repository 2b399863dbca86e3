// Package api is the typed client for the appointment backend's REST
// contract. All requests route through the authorizing transport; the
// refresh exchange alone uses a raw client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/care-client/internal/domain"
	"github.com/spec-kit/care-client/pkg/util"
)

// Client issues calls against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client; pass one whose transport is the
// authorizing stack.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return util.NewDecodeError(err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return util.NewTransportError(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return util.NewTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return util.NewTransportError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return util.NewUnauthorized("unauthorized")
	}
	if resp.StatusCode == http.StatusNotFound {
		return util.NewNotFound("resource")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("server rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return util.NewServerError(resp.StatusCode, serverMessage(raw, resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return util.NewDecodeError(err)
		}
	}
	return nil
}

// serverMessage extracts the backend's message field when present.
func serverMessage(raw []byte, status int) string {
	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fmt.Sprintf("server error: %d", status)
}

// Login exchanges email/password for a credential. Only an explicit
// rejection reads as bad credentials; outages and transport failures keep
// their own reason so the user is not told their password is wrong when the
// backend is down.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var env Envelope[TokenData]
	err := c.do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &env)
	if err != nil {
		if util.ToDomainError(err).Code == util.CodeUnauthorized {
			return "", util.NewUnauthorized("invalid credentials")
		}
		return "", err
	}
	if !env.Success || env.Data == nil || env.Data.AccessToken == "" {
		return "", util.NewUnauthorized("invalid credentials")
	}
	return env.Data.AccessToken, nil
}

// Register creates an account and returns the issued credential and the
// server message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, string, error) {
	var env Envelope[TokenData]
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &env); err != nil {
		return "", "", err
	}
	if !env.Success || env.Data == nil || env.Data.AccessToken == "" {
		return "", "", util.NewServerError(http.StatusBadRequest, env.Message)
	}
	return env.Data.AccessToken, env.Message, nil
}

// FetchProfile returns the account profile for the current credential.
func (c *Client) FetchProfile(ctx context.Context) (domain.Profile, error) {
	var env Envelope[ProfileDTO]
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &env); err != nil {
		return domain.Profile{}, err
	}
	if !env.Success || env.Data == nil {
		return domain.Profile{}, util.NewServerError(http.StatusBadGateway, "failed to fetch profile")
	}
	return env.Data.Profile(), nil
}

// GetAvailability returns the server-reported booked windows for a provider
// and date. A missing availability document is an empty list, not an error.
func (c *Client) GetAvailability(ctx context.Context, doctorID, date string) ([]SlotDTO, error) {
	path := "/api/availability?" + url.Values{
		"doctorId": {doctorID},
		"date":     {date},
	}.Encode()

	var env Envelope[AvailabilityDTO]
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, nil
	}
	return env.Data.Slots, nil
}

// AddAvailability publishes a doctor's bookable windows for a date.
func (c *Client) AddAvailability(ctx context.Context, req AvailabilityRequest) (string, error) {
	var env Envelope[AvailabilityDTO]
	if err := c.do(ctx, http.MethodPost, "/api/availability/add", req, &env); err != nil {
		return "", err
	}
	if !env.Success {
		return "", util.NewServerError(http.StatusBadRequest, env.Message)
	}
	return env.Message, nil
}

// BookAppointment books a slot.
func (c *Client) BookAppointment(ctx context.Context, req BookAppointmentRequest) (string, error) {
	var env Envelope[AppointmentDTO]
	if err := c.do(ctx, http.MethodPost, "/api/appointments/book", req, &env); err != nil {
		return "", err
	}
	if !env.Success {
		return "", util.NewConflict(env.Message)
	}
	return env.Message, nil
}

// MyAppointments lists the patient's appointments.
func (c *Client) MyAppointments(ctx context.Context) ([]domain.Appointment, error) {
	var env Envelope[[]AppointmentDTO]
	if err := c.do(ctx, http.MethodGet, "/api/appointments/my", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, util.NewServerError(http.StatusBadGateway, env.Message)
	}
	out := make([]domain.Appointment, 0, len(*env.Data))
	for _, dto := range *env.Data {
		out = append(out, dto.Appointment())
	}
	return out, nil
}

// DoctorAppointments lists appointments booked against the current doctor.
func (c *Client) DoctorAppointments(ctx context.Context) ([]domain.ProviderAppointment, error) {
	var env Envelope[[]DoctorAppointmentDTO]
	if err := c.do(ctx, http.MethodGet, "/api/appointments/doctor", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, util.NewServerError(http.StatusBadGateway, env.Message)
	}
	out := make([]domain.ProviderAppointment, 0, len(*env.Data))
	for _, dto := range *env.Data {
		out = append(out, dto.ProviderAppointment())
	}
	return out, nil
}

// CancelAppointment cancels by id.
func (c *Client) CancelAppointment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/appointments/"+url.PathEscape(id), nil, nil)
}

// NearbyDoctors returns providers within distance kilometers of (lat, lng).
func (c *Client) NearbyDoctors(ctx context.Context, lat, lng float64, distance int) ([]domain.Doctor, error) {
	path := "/api/doctors/nearby?" + url.Values{
		"lat":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng":      {strconv.FormatFloat(lng, 'f', -1, 64)},
		"distance": {strconv.Itoa(distance)},
	}.Encode()

	var env Envelope[[]DoctorDTO]
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, nil
	}
	out := make([]domain.Doctor, 0, len(*env.Data))
	for _, dto := range *env.Data {
		out = append(out, dto.Doctor())
	}
	return out, nil
}
