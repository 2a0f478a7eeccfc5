// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"package-pulse/internal/config"
	"package-pulse/internal/github"
	"package-pulse/internal/httpcache"
	"package-pulse/internal/metrics"
	"package-pulse/internal/npm"
	"package-pulse/internal/resolver"
)

// NewResolver wires the upstream clients described by cfg into a Resolver.
// The returned cleanup func releases the response cache store.
func NewResolver(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*resolver.Resolver, func(), error) {
	store, cleanup, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	// Registry metadata and GitHub responses may be reused for
	// REVALIDATE_AFTER; download counts are always fetched fresh.
	cached := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: httpcache.NewTransport(nil, store, cfg.RevalidateAfter, logger),
	}
	direct := &http.Client{Timeout: cfg.HTTPTimeout}

	npmClient := npm.NewClient(npm.Options{
		RegistryURL:   cfg.RegistryURL,
		DownloadsURL:  cfg.DownloadsURL,
		RegistryHTTP:  cached,
		DownloadsHTTP: direct,
	}, logger)

	ghClient, err := github.NewClient(cfg.GithubToken, cfg.GithubAPIURL, cached, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var recorder *metrics.Recorder
	if reg != nil {
		recorder = metrics.NewRecorder(reg)
	}

	return resolver.NewResolver(npmClient, ghClient, recorder, logger, cfg.NpmPackageURL), cleanup, nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (httpcache.Store, func(), error) {
	if cfg.RevalidateAfter <= 0 {
		logger.Info("Response cache disabled")
		return nil, func() {}, nil
	}
	if cfg.RedisURL == "" {
		logger.Info("Using in-memory response cache", "ttl", cfg.RevalidateAfter.String(), "max_entries", cfg.MemoryCacheSize)
		return httpcache.NewMemoryStore(cfg.MemoryCacheSize, cfg.RevalidateAfter), func() {}, nil
	}

	store, err := httpcache.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to response cache: %w", err)
	}
	logger.Info("Using Redis response cache", "ttl", cfg.RevalidateAfter.String())
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close response cache", "error", err)
		}
	}, nil
}
