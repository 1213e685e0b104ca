package integration

import (
	"context"
	"testing"
	"time"

	"github.com/claytercek/purge/pkg/providers/surrogate"
	"github.com/claytercek/purge/pkg/purge"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// TestSurrogatePurgeFlow exercises the full self-hosted flow: a cache
// stores tagged entries, tracks them with the provider, and a purge by tag
// removes exactly the entries indexed under those tags.
func TestSurrogatePurgeFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	provider, err := surrogate.New(redisClient)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	client, err := purge.New(purge.Config{Provider: provider})
	if err != nil {
		t.Fatalf("Failed to create purge client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Simulate a cache storing three responses with overlapping tags.
	entries := map[string][]string{
		"cache:/":        {"home", "post-1"},
		"cache:/posts/1": {"post-1"},
		"cache:/about":   {"about"},
	}
	for key, tags := range entries {
		if err := redisClient.Set(ctx, key, "cached body", 0).Err(); err != nil {
			t.Fatalf("Failed to seed cache entry %s: %v", key, err)
		}
		if err := provider.Track(ctx, key, tags...); err != nil {
			t.Fatalf("Failed to track %s: %v", key, err)
		}
	}

	// Purge post-1: the homepage and the post page must go, /about stays.
	if err := client.Purge(ctx, "post-1"); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}

	for _, gone := range []string{"cache:/", "cache:/posts/1"} {
		if err := redisClient.Get(ctx, gone).Err(); err != redis.Nil {
			t.Errorf("entry %s should be purged, got err=%v", gone, err)
		}
	}
	if err := redisClient.Get(ctx, "cache:/about").Err(); err != nil {
		t.Errorf("entry cache:/about should survive, got err=%v", err)
	}

	// The purged tag's index is cleared too.
	members, err := redisClient.SMembers(ctx, "surrogate:post-1").Result()
	if err != nil {
		t.Fatalf("Failed to read index: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("index surrogate:post-1 should be empty, got %v", members)
	}
}

// TestSurrogatePurgeUnknownTag verifies purging a tag with no indexed
// entries succeeds as a no-op at the provider level.
func TestSurrogatePurgeUnknownTag(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	provider, err := surrogate.New(redisClient)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	client, err := purge.New(purge.Config{Provider: provider})
	if err != nil {
		t.Fatalf("Failed to create purge client: %v", err)
	}

	ctx := context.Background()
	if err := client.Purge(ctx, "never-seen"); err != nil {
		t.Errorf("Purge of unknown tag failed: %v", err)
	}
}
