// Package session orchestrates login, registration, logout, and profile
// fetch around the credential store.
package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/care-client/internal/api"
	"github.com/spec-kit/care-client/internal/credential"
	"github.com/spec-kit/care-client/internal/domain"
	"github.com/spec-kit/care-client/internal/events"
	"github.com/spec-kit/care-client/internal/result"
	"github.com/spec-kit/care-client/pkg/util"
)

// Status is the derived session state. It is never stored; it is computed
// from the credential on every query.
type Status string

const (
	StatusAuthenticated   Status = "AUTHENTICATED"
	StatusUnauthenticated Status = "UNAUTHENTICATED"
)

// Outcome summarizes a successful login or registration.
type Outcome struct {
	SubjectID string
	Role      domain.Role
	Message   string
}

// Service coordinates session use cases.
type Service struct {
	api        *api.Client
	store      *credential.Store
	inspector  *credential.Inspector
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewService builds the session service.
func NewService(apiClient *api.Client, store *credential.Store, inspector *credential.Inspector, dispatcher events.Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		api:        apiClient,
		store:      store,
		inspector:  inspector,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Status reports whether a usable credential is held right now.
func (s *Service) Status() Status {
	cred, ok := s.store.Current()
	if !ok || s.inspector.IsExpired(cred) {
		return StatusUnauthenticated
	}
	return StatusAuthenticated
}

// Login authenticates and stores the issued credential.
func (s *Service) Login(ctx context.Context, email, password string) <-chan result.Result[Outcome] {
	return result.Run(ctx, func(ctx context.Context) (Outcome, error) {
		token, err := s.api.Login(ctx, email, password)
		if err != nil {
			return Outcome{}, err
		}
		if err := s.store.Save(token); err != nil {
			return Outcome{}, err
		}
		outcome := s.outcomeFor(token, "login successful")
		s.publish(ctx, events.SessionAuthenticated, outcome.SubjectID)
		s.logger.Info("logged in", zap.String("subject", outcome.SubjectID))
		return outcome, nil
	})
}

// Register validates locally, then creates the account and stores the
// issued credential. Missing required fields fail before any network call.
func (s *Service) Register(ctx context.Context, req api.RegisterRequest) <-chan result.Result[Outcome] {
	return result.Run(ctx, func(ctx context.Context) (Outcome, error) {
		if err := validateRegistration(req); err != nil {
			return Outcome{}, err
		}

		token, message, err := s.api.Register(ctx, req)
		if err != nil {
			return Outcome{}, err
		}
		if err := s.store.Save(token); err != nil {
			return Outcome{}, err
		}
		outcome := s.outcomeFor(token, message)
		s.publish(ctx, events.SessionAuthenticated, outcome.SubjectID)
		s.logger.Info("registered", zap.String("subject", outcome.SubjectID))
		return outcome, nil
	})
}

// Logout clears the credential. No backend call is made; server-side
// invalidation is the backend's concern.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.publish(context.Background(), events.SessionUnauthenticated, "")
	s.logger.Info("logged out")
	return nil
}

// FetchProfile loads the account profile for the current session.
func (s *Service) FetchProfile(ctx context.Context) <-chan result.Result[domain.Profile] {
	return result.Run(ctx, func(ctx context.Context) (domain.Profile, error) {
		return s.api.FetchProfile(ctx)
	})
}

func (s *Service) outcomeFor(token, message string) Outcome {
	outcome := Outcome{Message: message}
	if id, ok := s.inspector.SubjectID(token); ok {
		outcome.SubjectID = id
	}
	if role, ok := s.inspector.Role(token); ok {
		outcome.Role = role
	}
	return outcome
}

func (s *Service) publish(ctx context.Context, eventType events.EventType, subjectID string) {
	if s.dispatcher == nil {
		return
	}
	payload := map[string]any{}
	if subjectID != "" {
		payload["subject_id"] = subjectID
	}
	_ = s.dispatcher.Publish(ctx, events.Event{Type: eventType, Payload: payload})
}

func validateRegistration(req api.RegisterRequest) error {
	var missing []string
	required := []struct {
		field string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"password", req.Password},
		{"mobileNumber", req.MobileNumber},
		{"gender", req.Gender},
		{"dob", req.DOB},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if !req.Role.Valid() {
		missing = append(missing, "role")
	}

	if req.Role == domain.RoleDoctor {
		if req.Fee == nil {
			missing = append(missing, "fee")
		}
		if req.Speciality == nil || strings.TrimSpace(*req.Speciality) == "" {
			missing = append(missing, "speciality")
		}
		if req.City == nil || strings.TrimSpace(*req.City) == "" {
			missing = append(missing, "city")
		}
		if req.Address == nil || strings.TrimSpace(*req.Address) == "" {
			missing = append(missing, "address")
		}
	}

	if len(missing) > 0 {
		return util.NewValidationError(fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}
