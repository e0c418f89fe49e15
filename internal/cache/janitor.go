package cache

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically drops expired cache entries.
type Janitor struct {
	cache    *PGCache
	logger   *slog.Logger
	interval time.Duration
}

func NewJanitor(cache *PGCache, logger *slog.Logger, interval time.Duration) *Janitor {
	return &Janitor{
		cache:    cache,
		logger:   logger.With("component", "cache_janitor"),
		interval: interval,
	}
}

// Run starts the cleanup loop and blocks until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("cache janitor started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("cache janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	n, err := j.cache.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error("failed to cleanup expired entries", "error", err)
		return
	}
	if n > 0 {
		j.logger.Debug("expired entries removed", "count", n)
	}
}
