package appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/care-client/internal/api"
	"github.com/spec-kit/care-client/internal/config"
	"github.com/spec-kit/care-client/internal/domain"
	"github.com/spec-kit/care-client/internal/events"
	"github.com/spec-kit/care-client/internal/observability"
	"github.com/spec-kit/care-client/internal/result"
	"github.com/spec-kit/care-client/internal/schedule"
)

func clockTime(t *testing.T, value string) domain.ClockTime {
	t.Helper()
	ct, err := domain.ParseClockTime(value)
	require.NoError(t, err)
	return ct
}

func await[T any](t *testing.T, ch <-chan result.Result[T]) result.Result[T] {
	t.Helper()
	var last result.Result[T]
	deadline := time.After(2 * time.Second)
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				require.True(t, last.Terminal(), "channel closed without a terminal result")
				return last
			}
			last = r
		case <-deadline:
			t.Fatal("operation did not complete")
		}
	}
}

func newService(t *testing.T, baseURL string) *Service {
	t.Helper()
	grid, err := schedule.NewGrid(config.ScheduleConfig{
		DayStart:    "09:00",
		SlotMinutes: 30,
		SlotCount:   16,
	})
	require.NoError(t, err)
	cache, err := schedule.NewCache(8)
	require.NoError(t, err)
	return NewService(api.NewClient(baseURL), grid, cache,
		events.NewInMemoryDispatcher(nil), observability.NewMetrics(), zap.NewNop())
}

func availabilityResponse(slots []api.SlotDTO) api.Envelope[api.AvailabilityDTO] {
	return api.Envelope[api.AvailabilityDTO]{
		Success: true,
		Data:    &api.AvailabilityDTO{Slots: slots},
	}
}

func TestFetchAvailabilityReconcilesOntoGrid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/availability", r.URL.Path)
		require.Equal(t, "doc-1", r.URL.Query().Get("doctorId"))
		require.Equal(t, "2026-09-01", r.URL.Query().Get("date"))
		_ = json.NewEncoder(w).Encode(availabilityResponse([]api.SlotDTO{
			{StartTime: clockTime(t, "09:30"), EndTime: clockTime(t, "10:00"), IsBooked: true},
			// off-grid window, must be ignored
			{StartTime: clockTime(t, "09:15"), EndTime: clockTime(t, "09:45"), IsBooked: true},
		}))
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	res := await(t, svc.FetchAvailability(context.Background(), "doc-1", "2026-09-01"))
	require.Equal(t, result.StateReady, res.State)

	sched := res.Value
	require.Equal(t, "doc-1", sched.ProviderID)
	require.Len(t, sched.Windows, 16)
	require.Equal(t, clockTime(t, "09:00"), sched.Windows[0].Start)
	require.Equal(t, clockTime(t, "17:00"), sched.Windows[15].End)

	var bookedStarts []string
	for _, w := range sched.Windows {
		if w.Booked {
			bookedStarts = append(bookedStarts, w.Start.String())
		}
	}
	require.Equal(t, []string{"09:30"}, bookedStarts)
}

func TestFetchAvailabilityUsesCache(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_ = json.NewEncoder(w).Encode(availabilityResponse(nil))
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	first := await(t, svc.FetchAvailability(context.Background(), "doc-1", "2026-09-01"))
	second := await(t, svc.FetchAvailability(context.Background(), "doc-1", "2026-09-01"))

	require.Equal(t, result.StateReady, first.State)
	require.Equal(t, first.Value, second.Value)
	require.EqualValues(t, 1, atomic.LoadInt64(&calls), "second fetch must be served from cache")

	// Different date is a different cache entry.
	await(t, svc.FetchAvailability(context.Background(), "doc-1", "2026-09-02"))
	require.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestBookSlotRejectsBookedWindowLocally(t *testing.T) {
	var bookCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/availability":
			_ = json.NewEncoder(w).Encode(availabilityResponse([]api.SlotDTO{
				{StartTime: clockTime(t, "09:30"), EndTime: clockTime(t, "10:00"), IsBooked: true},
			}))
		case "/api/appointments/book":
			atomic.AddInt64(&bookCalls, 1)
			_ = json.NewEncoder(w).Encode(api.Envelope[api.AppointmentDTO]{Success: true, Message: "booked"})
		}
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	res := await(t, svc.BookSlot(context.Background(), "doc-1", "2026-09-01",
		clockTime(t, "09:30"), clockTime(t, "10:00")))

	require.Equal(t, result.StateFailed, res.State)
	require.Equal(t, "slot is already booked", res.Reason)
	require.EqualValues(t, 0, atomic.LoadInt64(&bookCalls), "booked slots must be rejected before the backend")
}

func TestBookSlotRejectsOffGridWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(availabilityResponse(nil))
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	res := await(t, svc.BookSlot(context.Background(), "doc-1", "2026-09-01",
		clockTime(t, "09:15"), clockTime(t, "09:45")))

	require.Equal(t, result.StateFailed, res.State)
	require.Equal(t, "slot is not on the schedule grid", res.Reason)
}

func TestBookSlotInvalidatesCacheAndClearsSelection(t *testing.T) {
	var availabilityCalls int64
	var booked atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/availability":
			atomic.AddInt64(&availabilityCalls, 1)
			var slots []api.SlotDTO
			if booked.Load() {
				slots = append(slots, api.SlotDTO{
					StartTime: clockTime(t, "09:00"),
					EndTime:   clockTime(t, "09:30"),
					IsBooked:  true,
				})
			}
			_ = json.NewEncoder(w).Encode(availabilityResponse(slots))
		case "/api/appointments/book":
			var req api.BookAppointmentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "doc-1", req.DoctorID)
			require.Equal(t, "09:00", req.StartTime.String())
			booked.Store(true)
			_ = json.NewEncoder(w).Encode(api.Envelope[api.AppointmentDTO]{Success: true, Message: "booked"})
		}
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	start := clockTime(t, "09:00")
	end := clockTime(t, "09:30")

	first := await(t, svc.FetchAvailability(context.Background(), "doc-1", "2026-09-01"))
	require.Equal(t, result.StateReady, first.State)
	window := domain.TimeWindow{Start: start, End: end}
	require.True(t, svc.Selection().Toggle(window))
	require.True(t, svc.Selection().Chosen(window))

	res := await(t, svc.BookSlot(context.Background(), "doc-1", "2026-09-01", start, end))
	require.Equal(t, result.StateReady, res.State)
	require.Equal(t, "booked", res.Value)
	require.False(t, svc.Selection().Chosen(window), "selection must reset after booking")

	// The next fetch recomputes from the server and sees the new occupancy.
	refetched := await(t, svc.FetchAvailability(context.Background(), "doc-1", "2026-09-01"))
	window, ok := refetched.Value.Window(start, end)
	require.True(t, ok)
	require.True(t, window.Booked)
	require.EqualValues(t, 2, atomic.LoadInt64(&availabilityCalls),
		"booking must invalidate the cached schedule")
}

func TestBookSlotConflictSurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/availability":
			_ = json.NewEncoder(w).Encode(availabilityResponse(nil))
		case "/api/appointments/book":
			// Another client won the race; locally the slot still looked free.
			_ = json.NewEncoder(w).Encode(api.Envelope[api.AppointmentDTO]{
				Success: false,
				Message: "slot already booked",
			})
		}
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	res := await(t, svc.BookSlot(context.Background(), "doc-1", "2026-09-01",
		clockTime(t, "09:00"), clockTime(t, "09:30")))

	require.Equal(t, result.StateFailed, res.State)
	require.Equal(t, "slot already booked", res.Reason)
}

func TestCancelAppointment(t *testing.T) {
	var cancelled atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		cancelled.Store(r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.Envelope[api.AppointmentDTO]{Success: true})
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	res := await(t, svc.CancelAppointment(context.Background(), "appt-9"))

	require.Equal(t, result.StateReady, res.State)
	require.Equal(t, "/api/appointments/appt-9", cancelled.Load())
}

func TestPublishAvailabilityRequiresSlots(t *testing.T) {
	svc := newService(t, "http://127.0.0.1:0")
	res := await(t, svc.PublishAvailability(context.Background(), "2026-09-01", nil))

	require.Equal(t, result.StateFailed, res.State)
	require.Equal(t, "no slots selected", res.Reason)
}

func TestNearbyProviders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/doctors/nearby", r.URL.Path)
		require.Equal(t, "10", r.URL.Query().Get("distance"))
		_ = json.NewEncoder(w).Encode(api.Envelope[[]api.DoctorDTO]{
			Success: true,
			Data: &[]api.DoctorDTO{{
				ID:         "doc-1",
				Name:       "Dr. Sadeghi",
				Speciality: "cardiology",
				Location:   api.LocationDTO{Type: "Point", Coordinates: []float64{51.389, 35.689}},
			}},
		})
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	res := await(t, svc.NearbyProviders(context.Background(), 35.689, 51.389, 10))

	require.Equal(t, result.StateReady, res.State)
	require.Len(t, res.Value, 1)
	require.Equal(t, 35.689, res.Value[0].Latitude)
	require.Equal(t, 51.389, res.Value[0].Longitude)
}
