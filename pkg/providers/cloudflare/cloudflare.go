// Package cloudflare implements a purge.Provider for Cloudflare's
// cache-tag purging API.
//
// Cloudflare associates cached objects with the tags listed in the
// Cache-Tag response header and purges them via
// POST /zones/{zone_id}/purge_cache with a JSON tag list.
// https://developers.cloudflare.com/cache/how-to/purge-cache/purge-by-tags/
package cloudflare

import (
	"bytes"
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

// DefaultAPIEndpoint is the Cloudflare API base URL.
const DefaultAPIEndpoint = "https://api.cloudflare.com/client/v4"

// CacheTagHeader is the response header Cloudflare reads cache tags from.
// Tags are comma-separated.
const CacheTagHeader = "Cache-Tag"

// Config holds the Cloudflare provider configuration.
type Config struct {
	// ZoneID is the Cloudflare zone to purge (required).
	ZoneID string

	// APIToken is a bearer token with cache purge permission (required).
	APIToken string

	// APIEndpoint overrides the Cloudflare API base URL (for testing).
	APIEndpoint string

	// HTTPClient overrides the HTTP client used for purge calls.
	HTTPClient *http.Client
}

// Provider purges Cloudflare zones by cache tag.
type Provider struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a Cloudflare provider from cfg.
func New(cfg Config) (*Provider, error) {
	if cfg.ZoneID == "" {
		return nil, purge.NewArgumentError("cloudflare zone ID is required", nil)
	}
	if cfg.APIToken == "" {
		return nil, purge.NewArgumentError("cloudflare API token is required", nil)
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
		logger:     logging.NewLogger("cloudflare-provider"),
	}, nil
}

// Name implements purge.Provider.
func (p *Provider) Name() string { return "cloudflare" }

type purgeRequest struct {
	Tags []string `json:"tags"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type purgeResponse struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
}

// Purge invalidates all objects tagged with the given cache tags.
func (p *Provider) Purge(ctx context.Context, tags []string) error {
	payload, err := json.Marshal(purgeRequest{Tags: tags})
	if err != nil {
		return purge.NewProviderError("encoding cloudflare purge request", err)
	}

	url := fmt.Sprintf("%s/zones/%s/purge_cache", p.endpoint, p.cfg.ZoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return purge.NewProviderError("creating cloudflare purge request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return purge.NewProviderError("cloudflare purge request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return purge.NewProviderError("reading cloudflare purge response", err)
	}

	var decoded purgeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return purge.NewDecodeError("parsing cloudflare purge response", err)
	}

	if !decoded.Success {
		p.logger.Error().
			Int("status_code", resp.StatusCode).
			Strs("tags", tags).
			Interface("api_errors", decoded.Errors).
			Msg("Cloudflare purge rejected")
		return purge.NewProviderError(formatAPIErrors(resp.StatusCode, decoded.Errors), nil)
	}

	p.logger.Debug().
		Strs("tags", tags).
		Msg("Cloudflare purge accepted")
	return nil
}

// Headers implements purge.Provider. Cloudflare expects the tags
// comma-separated in a single Cache-Tag response header.
func (p *Provider) Headers(tags []string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	return map[string]string{
		CacheTagHeader: strings.Join(tags, ","),
	}
}

func formatAPIErrors(status int, errs []apiError) string {
	if len(errs) == 0 {
		return fmt.Sprintf("cloudflare purge returned status %d", status)
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%d: %s", e.Code, e.Message))
	}
	return "cloudflare purge failed: " + strings.Join(parts, "; ")
}
