// Package surrogate implements a purge.Provider for self-hosted edge
// caches that index their cached entries by surrogate key in Redis.
//
// The cache (a reverse proxy such as Varnish, or an application-level HTTP
// cache) calls Track when it stores a response, recording which cache entry
// keys belong to which surrogate keys. Purge then resolves each tag to its
// entry keys, deletes the entries, and clears the index. The tag-to-entry
// mapping is entirely this provider's own state; nothing in the core ever
// sees it.
package surrogate

import (
	"context"
	"fmt"
	"strings"

	"github.com/claytercek/purge/pkg/logging"
	"github.com/claytercek/purge/pkg/purge"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SurrogateKeyHeader is the response header carrying the surrogate keys,
// space-separated per the Surrogate-Key convention.
const SurrogateKeyHeader = "Surrogate-Key"

// indexPrefix namespaces the per-tag entry indexes in Redis. External code
// must not write under this prefix.
const indexPrefix = "surrogate:"

// Provider purges a Redis-indexed self-hosted cache by surrogate key.
type Provider struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// New creates a surrogate provider backed by the given Redis client.
func New(redisClient *redis.Client) (*Provider, error) {
	if redisClient == nil {
		return nil, purge.NewArgumentError("redis client is required", nil)
	}
	return &Provider{
		redis:  redisClient,
		logger: logging.NewLogger("surrogate-provider"),
	}, nil
}

// Name implements purge.Provider.
func (p *Provider) Name() string { return "surrogate" }

// Track records that the cache entry stored under entryKey belongs to the
// given surrogate keys. The cache calls this when it stores a response.
func (p *Provider) Track(ctx context.Context, entryKey string, tags ...string) error {
	if entryKey == "" {
		return purge.NewArgumentError("entry key is required", nil)
	}
	pipe := p.redis.Pipeline()
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		pipe.SAdd(ctx, indexKey(tag), entryKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return purge.NewProviderError("indexing cache entry "+entryKey, err)
	}
	return nil
}

// Purge deletes every cache entry indexed under the given surrogate keys,
// then clears the indexes themselves.
func (p *Provider) Purge(ctx context.Context, tags []string) error {
	entries := make([]string, 0)
	for _, tag := range tags {
		keys, err := p.redis.SMembers(ctx, indexKey(tag)).Result()
		if err != nil {
			return purge.NewProviderError(
				fmt.Sprintf("resolving entries for tag %q", tag), err)
		}
		entries = append(entries, keys...)
	}

	pipe := p.redis.Pipeline()
	if len(entries) > 0 {
		pipe.Del(ctx, entries...)
	}
	for _, tag := range tags {
		pipe.Del(ctx, indexKey(tag))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return purge.NewProviderError("deleting indexed cache entries", err)
	}

	p.logger.Debug().
		Strs("tags", tags).
		Int("entries", len(entries)).
		Msg("Purged indexed cache entries")
	return nil
}

// Headers implements purge.Provider.
func (p *Provider) Headers(tags []string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	return map[string]string{
		SurrogateKeyHeader: strings.Join(tags, " "),
	}
}

func indexKey(tag string) string {
	return indexPrefix + tag
}
