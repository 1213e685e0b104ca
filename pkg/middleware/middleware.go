// Package middleware binds the purge client and tag collection into a
// net/http middleware.
//
// The middleware establishes a tag-collection scope around each request,
// buffers the downstream response while handler code registers tags via
// tagscope.Add, then emits the resolved caching headers (common headers
// plus the provider's tag headers) ahead of the buffered response.
// Buffering is what allows headers that depend on tags registered at any
// point during handling, including just before the last body write.
package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/claytercek/purge/pkg/cachecontrol"
	"github.com/claytercek/purge/pkg/purge"
	"github.com/claytercek/purge/pkg/tagscope"
)

type options struct {
	directives []cachecontrol.Directives
	skip       func(*http.Request) bool
}

// Option customizes the middleware.
type Option func(*options)

// WithDirectives sets a per-route directives override, layered on top of
// the client-level configuration for every response this middleware emits.
func WithDirectives(d cachecontrol.Directives) Option {
	return func(o *options) {
		o.directives = []cachecontrol.Directives{d}
	}
}

// WithSkip sets a predicate for requests that should bypass tag collection
// and header injection entirely.
func WithSkip(skip func(*http.Request) bool) Option {
	return func(o *options) {
		o.skip = skip
	}
}

// Handler wraps next with tag collection and cache header injection.
//
// The response is fully buffered until the handler returns, because the
// headers depend on tags that may be registered up to the last body write.
// The wrapper therefore does not implement http.Flusher (or Hijacker):
// streaming and SSE endpoints should bypass the middleware via WithSkip.
func Handler(client *purge.Client, next http.Handler, opts ...Option) http.Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if o.skip != nil && o.skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		buf := newBufferedWriter()
		tags, _ := tagscope.Run(r.Context(), func(ctx context.Context) error {
			next.ServeHTTP(buf, r.WithContext(ctx))
			return nil
		})

		for name, value := range client.Headers(tags, o.directives...) {
			buf.header.Set(name, value)
		}
		buf.flushTo(w)
	})
}

// bufferedWriter holds the downstream response until the tag scope closes.
type bufferedWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header)}
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for name, values := range b.header {
		dst[name] = values
	}
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write(b.body.Bytes())
}
