package cloudflare

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/claytercek/purge/internal/testutil"
	"github.com/claytercek/purge/pkg/purge"
)

func newTestProvider(t *testing.T, mock *testutil.MockCDN) *Provider {
	t.Helper()
	p, err := New(Config{
		ZoneID:      "zone123",
		APIToken:    "test-token",
		APIEndpoint: mock.URL(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing zone ID", cfg: Config{APIToken: "tok"}},
		{name: "missing token", cfg: Config{ZoneID: "zone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if !purge.IsKind(err, purge.KindArgument) {
				t.Errorf("err = %v, want argument kind", err)
			}
		})
	}
}

func TestPurge_RequestShape(t *testing.T) {
	mock := testutil.NewMockCDN()
	defer mock.Close()

	p := newTestProvider(t, mock)
	if err := p.Purge(context.Background(), []string{"post-1", "author-7"}); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}

	if mock.LastRequestPath != "/zones/zone123/purge_cache" {
		t.Errorf("path = %q", mock.LastRequestPath)
	}
	if got := mock.Header("Authorization"); got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}
	if body := mock.Body(); body != `{"tags":["post-1","author-7"]}` {
		t.Errorf("body = %q", body)
	}
}

func TestPurge_APIReportsFailure(t *testing.T) {
	mock := testutil.NewMockCDN()
	defer mock.Close()
	mock.SetHandler("/zones/zone123/purge_cache", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"errors":[{"code":10000,"message":"Authentication error"}]}`))
	})

	p := newTestProvider(t, mock)
	err := p.Purge(context.Background(), []string{"post-1"})
	if !purge.IsKind(err, purge.KindProvider) {
		t.Fatalf("err = %v, want provider kind", err)
	}
	if !strings.Contains(err.Error(), "Authentication error") {
		t.Errorf("error message %q missing API error detail", err.Error())
	}
}

func TestPurge_MalformedResponse(t *testing.T) {
	mock := testutil.NewMockCDN()
	defer mock.Close()
	mock.SetHandler("/zones/zone123/purge_cache", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	})

	p := newTestProvider(t, mock)
	err := p.Purge(context.Background(), []string{"post-1"})
	if !purge.IsKind(err, purge.KindDecode) {
		t.Errorf("err = %v, want decode kind", err)
	}
}

func TestHeaders(t *testing.T) {
	p, _ := New(Config{ZoneID: "zone", APIToken: "tok"})

	headers := p.Headers([]string{"post-1", "author-7"})
	if got := headers[CacheTagHeader]; got != "post-1,author-7" {
		t.Errorf("Cache-Tag = %q, want comma-separated tags", got)
	}

	if headers := p.Headers(nil); len(headers) != 0 {
		t.Errorf("Headers(nil) = %v, want empty", headers)
	}
}
