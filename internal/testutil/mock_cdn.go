// Package testutil provides testing utilities for the purge module.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockCDN is a configurable mock CDN purge API server for testing.
// By default it accepts every purge with a vendor-appropriate body; tests
// install custom handlers per path to simulate failures and malformed
// responses.
type MockCDN struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount      int
	LastRequestPath   string
	LastRequestBody   string
	LastRequestHeader http.Header
}

// NewMockCDN creates a new mock CDN API server.
func NewMockCDN() *MockCDN {
	mock := &MockCDN{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestPath = r.URL.Path
		mock.LastRequestBody = string(body)
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCDN) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCDN) Close() {
	m.server.Close()
}

// SetHandler installs a custom handler for a request path.
func (m *MockCDN) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// Reset clears tracking state and custom handlers.
func (m *MockCDN) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestPath = ""
	m.LastRequestBody = ""
	m.LastRequestHeader = nil
	m.handlers = make(map[string]http.HandlerFunc)
}

// GetRequestCount returns the number of requests received.
func (m *MockCDN) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// Header returns a header value from the most recent request.
func (m *MockCDN) Header(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LastRequestHeader == nil {
		return ""
	}
	return m.LastRequestHeader.Get(name)
}

// Body returns the most recent request body.
func (m *MockCDN) Body() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestBody
}

func (m *MockCDN) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if strings.Contains(r.URL.Path, "purge_cache") {
		// Cloudflare-style success envelope.
		w.Write([]byte(`{"success":true,"errors":[],"messages":[],"result":{"id":"mock"}}`))
		return
	}
	// Fastly-style surrogate-key to purge-ID map.
	w.Write([]byte(`{"mock-key":"mock-purge-id"}`))
}
