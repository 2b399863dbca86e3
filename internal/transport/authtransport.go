package transport

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/care-client/internal/credential"
	"github.com/spec-kit/care-client/internal/observability"
)

// maxSends bounds each logical call to the original send plus one
// refresh-and-retry. A backend that keeps rejecting sees no third attempt.
const maxSends = 2

// AuthTransport is the full outgoing stack: pipeline attachment, then a
// bounded refresh-and-retry on 401. Unauthorized responses on
// unauthenticated endpoints are surfaced as-is; 401 is the only
// refresh-eligible status.
type AuthTransport struct {
	pipeline    *Pipeline
	coordinator *RefreshCoordinator
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewAuthTransport assembles the stack over base.
func NewAuthTransport(base http.RoundTripper, store *credential.Store, inspector *credential.Inspector, coordinator *RefreshCoordinator, logger *zap.Logger, metrics *observability.Metrics) *AuthTransport {
	return &AuthTransport{
		pipeline:    NewPipeline(base, store, inspector),
		coordinator: coordinator,
		logger:      logger,
		metrics:     metrics,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for sends := 1; ; sends++ {
		resp, err := t.pipeline.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		t.metrics.RecordRequest(req.URL.Path, req.Method, resp.StatusCode)

		if resp.StatusCode != http.StatusUnauthorized || IsUnauthenticated(req.URL.Path) {
			return resp, nil
		}
		if sends >= maxSends {
			t.logger.Warn("unauthorized after refreshed retry, surfacing",
				zap.String("path", req.URL.Path))
			return resp, nil
		}

		newCred, refreshErr := t.coordinator.Refresh(req.Context())
		if refreshErr != nil {
			// Propagate the original 401; the stored credential stays put.
			return resp, nil
		}

		drain(resp)
		retry, buildErr := rebuild(req, newCred)
		if buildErr != nil {
			return nil, buildErr
		}
		req = retry
	}
}

// rebuild clones the failed request with the new credential attached and a
// fresh body, so the retry is an exact re-send of the original call.
func rebuild(req *http.Request, cred string) (*http.Request, error) {
	retry := req.Clone(req.Context())
	retry.Header.Set("Authorization", "Bearer "+cred)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	return retry, nil
}

func drain(resp *http.Response) {
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
