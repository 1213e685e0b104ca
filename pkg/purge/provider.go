package purge

import "context"

// Provider is the contract a CDN integration implements. The core never
// talks to a CDN itself; a Provider is plugged into the Client at
// construction time.
//
// Implementations must be safe for concurrent use. They may hold their own
// network client, credentials, and retry policy internally — the core
// performs no retries of its own.
type Provider interface {
	// Name identifies the provider in logs and metrics, e.g. "fastly".
	Name() string

	// Purge instructs the CDN to invalidate all content associated with
	// the given tags. The tag list is never empty; the Client rejects
	// empty purges before calling.
	Purge(ctx context.Context, tags []string) error

	// Headers returns the provider-specific response headers for content
	// tagged with the given tags (typically a tag-listing header the CDN
	// uses for later targeted purges). Must be synchronous and free of
	// side effects.
	Headers(tags []string) map[string]string
}
