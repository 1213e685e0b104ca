// Package purge provides the CDN-agnostic cache purge client: a Provider
// contract for CDN integrations, a closed error taxonomy, and a Client that
// composes a bound Provider with cache-control header synthesis.
package purge

import (
	"context"
	"strings"
	"time"

	"github.com/claytercek/purge/pkg/cachecontrol"
	"github.com/claytercek/purge/pkg/logging"
	"github.com/rs/zerolog"
)

// Config holds the client configuration. It is supplied once at process
// start; the Client never mutates it afterwards.
type Config struct {
	// Provider is the bound CDN integration (required).
	Provider Provider

	// Directives are the client-level caching defaults, layered on top of
	// the library defaults and under any per-call override. Zero value
	// means "library defaults only".
	Directives cachecontrol.Directives
}

// Client composes a Provider with cache-control header synthesis. It
// exposes two independent operations: triggering a purge and computing the
// caching headers for a response. A failed purge never affects header
// generation and vice versa.
type Client struct {
	provider   Provider
	directives cachecontrol.Directives
	logger     zerolog.Logger
}

// New creates a purge client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Provider == nil {
		return nil, NewArgumentError("provider is required", nil)
	}
	return &Client{
		provider:   cfg.Provider,
		directives: cfg.Directives,
		logger: logging.NewLogger("purge-client").With().
			Str("provider", cfg.Provider.Name()).Logger(),
	}, nil
}

// Purge instructs the bound provider to invalidate the given tags.
//
// An empty tag list (or one containing only blank tags) is rejected with a
// KindArgument error before the provider is invoked: depending on provider
// semantics an empty purge can mean "purge everything", so the client treats
// it as caller error rather than a no-op. Provider failures come back as
// KindProvider errors wrapping the cause, with the offending tag list in the
// message for diagnostics.
func (c *Client) Purge(ctx context.Context, tags ...string) error {
	cleaned := cleanTags(tags)
	if len(cleaned) == 0 {
		return NewArgumentError("no tags to purge", nil)
	}

	start := time.Now()
	err := c.provider.Purge(ctx, cleaned)
	purgeDuration.WithLabelValues(c.provider.Name()).Observe(time.Since(start).Seconds())
	purgeTagCount.Observe(float64(len(cleaned)))

	if err != nil {
		purgesTotal.WithLabelValues(c.provider.Name(), "error").Inc()
		c.logger.Error().Err(err).
			Strs("tags", cleaned).
			Msg("Purge failed")
		return NewProviderError("purging tags ["+strings.Join(cleaned, ", ")+"]", err)
	}

	purgesTotal.WithLabelValues(c.provider.Name(), "ok").Inc()
	c.logger.Debug().
		Strs("tags", cleaned).
		Dur("duration", time.Since(start)).
		Msg("Purged tags")
	return nil
}

// Headers computes the full response header set for content tagged with the
// given tags: the provider's tag headers merged over the common
// Cache-Control/Vary headers synthesized from the resolved directives.
// Resolution layers library defaults under the client-level directives
// under the optional per-call override. On a key collision the provider's
// header wins, since a provider may need to override Vary or add
// proprietary caching hints.
//
// Headers is total: it never fails for any input.
func (c *Client) Headers(tags []string, override ...cachecontrol.Directives) map[string]string {
	layers := append([]cachecontrol.Directives{cachecontrol.Defaults(), c.directives}, override...)
	headers := cachecontrol.Merge(layers...).Headers()

	for name, value := range c.provider.Headers(cleanTags(tags)) {
		headers[name] = value
	}

	headerBuildsTotal.WithLabelValues(c.provider.Name()).Inc()
	return headers
}

// cleanTags drops blank entries, preserving order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
