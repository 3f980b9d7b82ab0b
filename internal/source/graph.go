package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fleetgauge/fleetgauge/pkg/models"
)

// maxErrorBody caps how much of an upstream error response is retained.
const maxErrorBody = 4096

// GraphConfig holds the upstream API settings. BaseURL and TokenURL are
// overridable for tests; empty values take the production defaults.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
}

// GraphSource fetches managed devices from the device-management API using
// the OAuth2 client-credentials grant. Each Devices call acquires a token
// and performs a single fetch, with no retries and no timeout beyond the
// transport default.
type GraphSource struct {
	creds   *clientcredentials.Config
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewGraphSource creates a GraphSource from tenant credentials.
func NewGraphSource(cfg GraphConfig, logger *zap.Logger) *GraphSource {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://graph.microsoft.com/v1.0"
	}

	return &GraphSource{
		creds: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		},
		baseURL: baseURL,
		client:  http.DefaultClient,
		logger:  logger,
	}
}

// Devices fetches the full managed-device list. Token failures surface as
// *AuthError, non-200 responses as *UpstreamError.
func (s *GraphSource) Devices(ctx context.Context) ([]models.Device, error) {
	token, err := s.creds.Token(ctx)
	if err != nil {
		s.logger.Warn("token acquisition failed", zap.Error(err))
		return nil, &AuthError{Err: err}
	}

	url := s.baseURL + "/deviceManagement/managedDevices"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build device request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.Warn("device fetch failed",
			zap.Int("status", resp.StatusCode),
		)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		Value []models.Device `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode device response: %w", err)
	}
	if payload.Value == nil {
		payload.Value = []models.Device{}
	}

	s.logger.Debug("fetched devices", zap.Int("count", len(payload.Value)))
	return payload.Value, nil
}
