package jobs

import (
	"context"

	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// ExpiringCache drops entries whose TTL has passed
type ExpiringCache interface {
	CleanExpired() int
}

// QuoteCacheCleanupJob evicts expired symbol lookups from memory
type QuoteCacheCleanupJob struct {
	cache  ExpiringCache
	logger *logger.Logger
}

// NewQuoteCacheCleanupJob creates a new cache cleanup job
func NewQuoteCacheCleanupJob(cache ExpiringCache, log *logger.Logger) *QuoteCacheCleanupJob {
	return &QuoteCacheCleanupJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *QuoteCacheCleanupJob) Name() string {
	return "quote_cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *QuoteCacheCleanupJob) Schedule() string {
	return "0 */5 * * * *" // Every 5 minutes
}

// Run executes the cache cleanup
func (j *QuoteCacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled quote cache cleanup")

	count := j.cache.CleanExpired()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Quote cache cleanup completed")
	}

	return nil
}
