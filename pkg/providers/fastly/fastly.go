// Package fastly implements a purge.Provider for Fastly's surrogate-key
// purging API.
//
// Fastly associates cached objects with the surrogate keys listed in the
// Surrogate-Key response header and purges them in bulk via
// POST /service/{service_id}/purge with the keys in the same header.
// https://developer.fastly.com/learning/concepts/purging/
package fastly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claytercek/purge/pkg/logging"
	"github.com/claytercek/purge/pkg/purge"
	"github.com/rs/zerolog"
)

// DefaultAPIEndpoint is the Fastly API base URL.
const DefaultAPIEndpoint = "https://api.fastly.com"

// SurrogateKeyHeader is the header Fastly reads surrogate keys from, on
// both responses (tagging) and purge requests (invalidation). Keys are
// space-separated.
const SurrogateKeyHeader = "Surrogate-Key"

// Config holds the Fastly provider configuration.
type Config struct {
	// ServiceID is the Fastly service to purge (required).
	ServiceID string

	// APIToken authenticates against the Fastly API (required).
	APIToken string

	// APIEndpoint overrides the Fastly API base URL (for testing).
	APIEndpoint string

	// SoftPurge marks objects stale instead of evicting them.
	SoftPurge bool

	// HTTPClient overrides the HTTP client used for purge calls.
	HTTPClient *http.Client
}

// Provider purges Fastly caches by surrogate key.
type Provider struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a Fastly provider from cfg.
func New(cfg Config) (*Provider, error) {
	if cfg.ServiceID == "" {
		return nil, purge.NewArgumentError("fastly service ID is required", nil)
	}
	if cfg.APIToken == "" {
		return nil, purge.NewArgumentError("fastly API token is required", nil)
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Provider{
		cfg:        cfg,
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
		logger:     logging.NewLogger("fastly-provider"),
	}, nil
}

// Name implements purge.Provider.
func (p *Provider) Name() string { return "fastly" }

// Purge invalidates all objects tagged with the given surrogate keys via
// Fastly's bulk purge endpoint.
func (p *Provider) Purge(ctx context.Context, tags []string) error {
	url := fmt.Sprintf("%s/service/%s/purge", p.endpoint, p.cfg.ServiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return purge.NewProviderError("creating fastly purge request", err)
	}
	req.Header.Set("Fastly-Key", p.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(SurrogateKeyHeader, strings.Join(tags, " "))
	if p.cfg.SoftPurge {
		req.Header.Set("Fastly-Soft-Purge", "1")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return purge.NewProviderError("fastly purge request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return purge.NewProviderError("reading fastly purge response", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Error().
			Int("status_code", resp.StatusCode).
			Strs("tags", tags).
			Msg("Fastly purge rejected")
		return purge.NewProviderError(
			fmt.Sprintf("fastly purge returned status %d", resp.StatusCode), nil)
	}

	// The bulk purge endpoint answers with a surrogate-key to purge-ID map.
	var ids map[string]string
	if err := json.Unmarshal(body, &ids); err != nil {
		return purge.NewDecodeError("parsing fastly purge response", err)
	}

	p.logger.Debug().
		Strs("tags", tags).
		Int("purge_ids", len(ids)).
		Msg("Fastly purge accepted")
	return nil
}

// Headers implements purge.Provider. Fastly expects the surrogate keys
// space-separated in a single Surrogate-Key response header.
func (p *Provider) Headers(tags []string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	return map[string]string{
		SurrogateKeyHeader: strings.Join(tags, " "),
	}
}
