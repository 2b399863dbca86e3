package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-client/pkg/util"
)

func TestLoginMapsRejectionsToInvalidCredentials(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"message":"invalid credentials"}`},
		{"success flag false", http.StatusOK, `{"success":false,"message":"user not found"}`},
		{"missing token", http.StatusOK, `{"success":true,"data":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Login(context.Background(), "a@b.c", "pw")
			require.Error(t, err)
			de := util.ToDomainError(err)
			require.Equal(t, util.CodeUnauthorized, de.Code)
			require.Equal(t, "invalid credentials", de.Message)
		})
	}
}

func TestLoginKeepsServerFailureReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(Envelope[TokenData]{Message: "database unavailable"})
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Login(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	de := util.ToDomainError(err)
	require.Equal(t, util.CodeServer, de.Code)
	require.Equal(t, "database unavailable", de.Message,
		"a backend outage must not be reported as wrong credentials")

	// No message in the body still names the status, never the credentials.
	outage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer outage.Close()

	_, err = NewClient(outage.URL).Login(context.Background(), "a@b.c", "pw")
	de = util.ToDomainError(err)
	require.Equal(t, util.CodeServer, de.Code)
	require.Equal(t, "server error: 500", de.Message)
}

func TestDoMapsStatusCodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/appointments/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/api/appointments/boom":
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(Envelope[struct{}]{Message: "database unavailable"})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.CancelAppointment(context.Background(), "missing")
	require.Equal(t, util.CodeNotFound, util.ToDomainError(err).Code)

	err = client.CancelAppointment(context.Background(), "boom")
	de := util.ToDomainError(err)
	require.Equal(t, util.CodeServer, de.Code)
	require.Equal(t, "database unavailable", de.Message)
}

func TestDoMapsNetworkFailureToTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewClient(server.URL).FetchProfile(context.Background())
	require.Equal(t, util.CodeTransport, util.ToDomainError(err).Code)
}

func TestDoMapsMalformedBodyToDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).FetchProfile(context.Background())
	require.Equal(t, util.CodeDecode, util.ToDomainError(err).Code)
}

func TestGetAvailabilityTreatsMissingDocumentAsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope[AvailabilityDTO]{Success: false, Message: "no availability found"})
	}))
	defer server.Close()

	slots, err := NewClient(server.URL).GetAvailability(context.Background(), "doc-1", "2026-09-01")
	require.NoError(t, err)
	require.Empty(t, slots)
}

func TestBookAppointmentConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope[AppointmentDTO]{Success: false, Message: "slot already booked"})
	}))
	defer server.Close()

	_, err := NewClient(server.URL).BookAppointment(context.Background(), BookAppointmentRequest{})
	var de *util.DomainError
	require.True(t, errors.As(err, &de))
	require.Equal(t, util.CodeConflict, de.Code)
	require.Equal(t, "slot already booked", de.Message)
}
