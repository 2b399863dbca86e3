// Package appointment orchestrates availability, booking, and cancellation
// around the slot reconciler.
package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/care-client/internal/api"
	"github.com/spec-kit/care-client/internal/domain"
	"github.com/spec-kit/care-client/internal/events"
	"github.com/spec-kit/care-client/internal/observability"
	"github.com/spec-kit/care-client/internal/result"
	"github.com/spec-kit/care-client/internal/schedule"
	"github.com/spec-kit/care-client/pkg/util"
)

// Service coordinates appointment use cases.
type Service struct {
	api        *api.Client
	grid       *schedule.Grid
	cache      *schedule.Cache
	selection  *schedule.Selection
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewService builds the appointment service.
func NewService(apiClient *api.Client, grid *schedule.Grid, cache *schedule.Cache, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *Service {
	return &Service{
		api:        apiClient,
		grid:       grid,
		cache:      cache,
		selection:  schedule.NewSelection(),
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Selection exposes the tentative slot choice state.
func (s *Service) Selection() *schedule.Selection {
	return s.selection
}

// FetchAvailability returns the reconciled day schedule for a provider and
// date. The schedule is recomputed from the canonical grid and the server's
// booked list; it is never patched incrementally.
func (s *Service) FetchAvailability(ctx context.Context, providerID, date string) <-chan result.Result[domain.DaySchedule] {
	return result.Run(ctx, func(ctx context.Context) (domain.DaySchedule, error) {
		s.selection.SetContext(providerID, date)
		return s.loadSchedule(ctx, providerID, date)
	})
}

func (s *Service) loadSchedule(ctx context.Context, providerID, date string) (domain.DaySchedule, error) {
	if cached, ok := s.cache.Get(providerID, date); ok {
		s.metrics.RecordCache("hit")
		return cached, nil
	}
	s.metrics.RecordCache("miss")

	slots, err := s.api.GetAvailability(ctx, providerID, date)
	if err != nil {
		return domain.DaySchedule{}, err
	}

	booked := make([]domain.TimeWindow, 0, len(slots))
	for _, slot := range slots {
		booked = append(booked, domain.TimeWindow{
			Start:  slot.StartTime,
			End:    slot.EndTime,
			Booked: slot.IsBooked,
		})
	}

	sched := domain.DaySchedule{
		ProviderID: providerID,
		Date:       date,
		Windows:    schedule.Reconcile(s.grid.Windows(), booked),
	}
	s.cache.Put(sched)
	return sched, nil
}

// BookSlot books a window with the provider. A window that is already booked,
// or that is not on the canonical grid, is rejected before any network call.
// On success the cached schedule is invalidated and the selection cleared, so
// the next fetch recomputes occupancy from the server.
func (s *Service) BookSlot(ctx context.Context, providerID, date string, start, end domain.ClockTime) <-chan result.Result[string] {
	return result.Run(ctx, func(ctx context.Context) (string, error) {
		sched, err := s.loadSchedule(ctx, providerID, date)
		if err != nil {
			return "", err
		}
		window, onGrid := sched.Window(start, end)
		if !onGrid {
			return "", util.NewValidationError("slot is not on the schedule grid")
		}
		if window.Booked {
			return "", util.NewValidationError("slot is already booked")
		}

		message, err := s.api.BookAppointment(ctx, api.BookAppointmentRequest{
			DoctorID:  providerID,
			Date:      date,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return "", err
		}

		s.cache.Invalidate(providerID, date)
		s.selection.Clear()
		s.publish(ctx, events.AppointmentBooked, map[string]any{
			"provider_id": providerID,
			"date":        date,
			"start":       start.String(),
		})
		s.logger.Info("slot booked",
			zap.String("provider", providerID),
			zap.String("date", date),
			zap.Stringer("start", start))
		return message, nil
	})
}

// CancelAppointment cancels by id.
func (s *Service) CancelAppointment(ctx context.Context, id string) <-chan result.Result[string] {
	return result.Run(ctx, func(ctx context.Context) (string, error) {
		if err := s.api.CancelAppointment(ctx, id); err != nil {
			return "", err
		}
		s.publish(ctx, events.AppointmentCancelled, map[string]any{"appointment_id": id})
		s.logger.Info("appointment cancelled", zap.String("id", id))
		return "appointment cancelled", nil
	})
}

// MyAppointments lists the patient's appointments.
func (s *Service) MyAppointments(ctx context.Context) <-chan result.Result[[]domain.Appointment] {
	return result.Run(ctx, func(ctx context.Context) ([]domain.Appointment, error) {
		return s.api.MyAppointments(ctx)
	})
}

// ProviderAppointments lists appointments booked against the current doctor.
func (s *Service) ProviderAppointments(ctx context.Context) <-chan result.Result[[]domain.ProviderAppointment] {
	return result.Run(ctx, func(ctx context.Context) ([]domain.ProviderAppointment, error) {
		return s.api.DoctorAppointments(ctx)
	})
}

// PublishAvailability marks windows as bookable for the current doctor.
func (s *Service) PublishAvailability(ctx context.Context, date string, windows []domain.TimeWindow) <-chan result.Result[string] {
	return result.Run(ctx, func(ctx context.Context) (string, error) {
		if len(windows) == 0 {
			return "", util.NewValidationError("no slots selected")
		}
		slots := make([]api.SlotDTO, 0, len(windows))
		for _, w := range windows {
			slots = append(slots, api.SlotDTO{StartTime: w.Start, EndTime: w.End})
		}
		return s.api.AddAvailability(ctx, api.AvailabilityRequest{Date: date, Slots: slots})
	})
}

// NearbyProviders finds doctors within distance kilometers of a point.
func (s *Service) NearbyProviders(ctx context.Context, lat, lng float64, distance int) <-chan result.Result[[]domain.Doctor] {
	return result.Run(ctx, func(ctx context.Context) ([]domain.Doctor, error) {
		return s.api.NearbyDoctors(ctx, lat, lng, distance)
	})
}

func (s *Service) publish(ctx context.Context, eventType events.EventType, payload map[string]any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{Type: eventType, Payload: payload})
}
