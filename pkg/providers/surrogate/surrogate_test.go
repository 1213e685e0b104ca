package surrogate

import (
	"testing"

	"github.com/claytercek/purge/pkg/purge"
)

// Redis-backed behavior (Track/Purge round trips) is covered by the
// testcontainers suite under tests/integration.

func TestNew_RequiresRedis(t *testing.T) {
	_, err := New(nil)
	if !purge.IsKind(err, purge.KindArgument) {
		t.Errorf("err = %v, want argument kind", err)
	}
}

func TestHeaders(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		expected string
		present  bool
	}{
		{
			name:     "single tag",
			tags:     []string{"post-1"},
			expected: "post-1",
			present:  true,
		},
		{
			name:     "multiple tags space separated",
			tags:     []string{"post-1", "author-7"},
			expected: "post-1 author-7",
			present:  true,
		},
		{
			name:    "no tags",
			tags:    nil,
			present: false,
		},
	}

	p := &Provider{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := p.Headers(tt.tags)
			got, ok := headers[SurrogateKeyHeader]
			if ok != tt.present {
				t.Fatalf("header present = %v, want %v", ok, tt.present)
			}
			if ok && got != tt.expected {
				t.Errorf("Surrogate-Key = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIndexKey(t *testing.T) {
	if got := indexKey("post-1"); got != "surrogate:post-1" {
		t.Errorf("indexKey = %q", got)
	}
}
