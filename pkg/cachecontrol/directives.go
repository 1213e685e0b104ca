// Package cachecontrol models HTTP response caching directives and
// synthesizes the Cache-Control and Vary headers from them.
package cachecontrol

import (
	"fmt"
	"strings"
)

// Header names emitted by this package.
const (
	HeaderCacheControl = "Cache-Control"
	HeaderVary         = "Vary"
)

// Cache-Control directive tokens.
// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Cache-Control#cache_directives
const (
	DirectiveSMaxAge        = "s-maxage"
	DirectiveMaxAge         = "max-age"
	DirectiveMustRevalidate = "must-revalidate"
	DirectivePublic         = "public"
	DirectivePrivate        = "private"
)

// DefaultSMaxAge is the default shared-cache lifetime in seconds.
// Ten years, i.e. "cache at the edge until purged".
const DefaultSMaxAge = 315360000

// Directives holds the overridable response caching knobs.
//
// Every field is optional. A nil pointer means "not provided here, inherit
// from the next layer down" (see Merge). Vary uses nil the same way, while a
// non-nil empty slice means "explicitly no Vary header" — the two must stay
// distinguishable so a caller can suppress the default Vary.
type Directives struct {
	// SMaxAge is the shared-cache (CDN) lifetime in seconds (s-maxage).
	SMaxAge *int

	// MaxAge is the browser cache lifetime in seconds (max-age).
	MaxAge *int

	// Vary lists the request headers that affect cache-key selection,
	// in the order they should appear in the Vary header.
	Vary []string

	// Private marks the response as cacheable by browsers only.
	// A private response never carries s-maxage.
	Private *bool
}

// Defaults returns the library default directives: edge-cached effectively
// forever, no browser caching, vary on content encoding, public.
func Defaults() Directives {
	return Directives{
		SMaxAge: Int(DefaultSMaxAge),
		MaxAge:  Int(0),
		Vary:    []string{"Accept-Encoding"},
		Private: Bool(false),
	}
}

// Int returns a pointer to v, for literal Directives construction.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for literal Directives construction.
func Bool(v bool) *bool { return &v }

// Merge resolves a set of directive layers into one, field-wise.
// Later layers win: Merge(Defaults(), clientConfig, perCall) gives the
// per-call layer the highest precedence. The merge is shallow — a provided
// Vary replaces the inherited one, it is never concatenated.
func Merge(layers ...Directives) Directives {
	var out Directives
	for _, l := range layers {
		if l.SMaxAge != nil {
			out.SMaxAge = l.SMaxAge
		}
		if l.MaxAge != nil {
			out.MaxAge = l.MaxAge
		}
		if l.Vary != nil {
			out.Vary = l.Vary
		}
		if l.Private != nil {
			out.Private = l.Private
		}
	}
	return out
}

// Headers synthesizes the common caching headers for the directives.
// Pure and total: every input yields a valid header set, and Cache-Control
// always ends in exactly one of "public" or "private" and always contains
// "must-revalidate". Negative ages clamp to zero. Vary is omitted entirely
// when no vary headers are set.
func (d Directives) Headers() map[string]string {
	smaxage := clamp(d.SMaxAge)
	maxage := clamp(d.MaxAge)
	private := d.Private != nil && *d.Private

	parts := make([]string, 0, 4)
	if smaxage > 0 && !private {
		parts = append(parts, fmt.Sprintf("%s=%d", DirectiveSMaxAge, smaxage))
	}
	if maxage > 0 {
		parts = append(parts, fmt.Sprintf("%s=%d", DirectiveMaxAge, maxage))
	}
	parts = append(parts, DirectiveMustRevalidate)
	if private {
		parts = append(parts, DirectivePrivate)
	} else {
		parts = append(parts, DirectivePublic)
	}

	headers := map[string]string{
		HeaderCacheControl: strings.Join(parts, ", "),
	}
	if len(d.Vary) > 0 {
		headers[HeaderVary] = strings.Join(d.Vary, ", ")
	}
	return headers
}

func clamp(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
