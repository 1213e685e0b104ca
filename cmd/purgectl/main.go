// Command purgectl triggers a CDN purge for the cache tags given as
// arguments, using the provider selected by PURGE_PROVIDER.
//
// Usage:
//
//	PURGE_PROVIDER=fastly FASTLY_SERVICE_ID=... FASTLY_API_TOKEN=... purgectl tag1 tag2
//	PURGE_PROVIDER=cloudflare CF_ZONE_ID=... CF_API_TOKEN=... purgectl tag1 tag2
//	PURGE_PROVIDER=surrogate REDIS_URL=localhost:6379 purgectl tag1 tag2
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/claytercek/purge/pkg/logging"
	"github.com/claytercek/purge/pkg/providers/cloudflare"
	"github.com/claytercek/purge/pkg/providers/fastly"
	"github.com/claytercek/purge/pkg/providers/surrogate"
	"github.com/claytercek/purge/pkg/purge"
	"github.com/redis/go-redis/v9"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall purge timeout")
	soft := flag.Bool("soft", false, "soft purge (mark stale) where supported")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(*logLevel),
		Pretty: true,
		Output: os.Stderr,
	})

	tags := flag.Args()
	if len(tags) == 0 {
		fmt.Fprintln(os.Stderr, "usage: purgectl [flags] tag [tag...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	provider, err := buildProvider(*soft)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure provider")
	}

	client, err := purge.New(purge.Config{Provider: provider})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create purge client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.Purge(ctx, tags...); err != nil {
		logger.Fatal().Err(err).Strs("tags", tags).Msg("Purge failed")
	}
	logger.Info().Strs("tags", tags).Str("provider", provider.Name()).Msg("Purge succeeded")
}

func buildProvider(soft bool) (purge.Provider, error) {
	switch name := getEnv("PURGE_PROVIDER", "fastly"); name {
	case "fastly":
		return fastly.New(fastly.Config{
			ServiceID: os.Getenv("FASTLY_SERVICE_ID"),
			APIToken:  os.Getenv("FASTLY_API_TOKEN"),
			SoftPurge: soft,
		})
	case "cloudflare":
		return cloudflare.New(cloudflare.Config{
			ZoneID:   os.Getenv("CF_ZONE_ID"),
			APIToken: os.Getenv("CF_API_TOKEN"),
		})
	case "surrogate":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     getEnv("REDIS_URL", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return surrogate.New(redisClient)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
