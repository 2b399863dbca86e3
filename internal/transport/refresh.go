package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/care-client/internal/credential"
	"github.com/spec-kit/care-client/internal/observability"
)

const refreshKey = "credential-refresh"

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// RefreshCoordinator performs the credential refresh exchange. The exchange
// runs on a raw client that bypasses the pipeline, so it can never recurse
// into its own interception, and concurrent callers are coalesced into one
// in-flight exchange whose outcome they all share.
type RefreshCoordinator struct {
	refreshURL string
	raw        *http.Client
	store      *credential.Store
	group      singleflight.Group
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewRefreshCoordinator builds the coordinator. raw must not route through
// the authorizing pipeline.
func NewRefreshCoordinator(baseURL string, raw *http.Client, store *credential.Store, logger *zap.Logger, metrics *observability.Metrics) *RefreshCoordinator {
	if raw == nil {
		raw = &http.Client{}
	}
	return &RefreshCoordinator{
		refreshURL: strings.TrimRight(baseURL, "/") + "/api/auth/refresh",
		raw:        raw,
		store:      store,
		logger:     logger,
		metrics:    metrics,
	}
}

// Refresh exchanges for a new credential and stores it. On failure the
// existing credential is left untouched; a transient failure here must not
// force a logout.
func (c *RefreshCoordinator) Refresh(ctx context.Context) (string, error) {
	val, err, shared := c.group.Do(refreshKey, func() (any, error) {
		return c.exchange(ctx)
	})
	if err != nil {
		c.metrics.RecordRefresh("failure")
		c.logger.Warn("credential refresh failed", zap.Error(err))
		return "", err
	}
	c.metrics.RecordRefresh("success")
	if shared {
		c.logger.Debug("reused in-flight credential refresh")
	}
	return val.(string), nil
}

func (c *RefreshCoordinator) exchange(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.refreshURL, strings.NewReader(""))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.raw.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("refresh endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("malformed refresh response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}

	if err := c.store.Save(parsed.AccessToken); err != nil {
		return "", err
	}
	c.logger.Info("credential refreshed")
	return parsed.AccessToken, nil
}
