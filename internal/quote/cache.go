package quote

import (
	"sync"
	"time"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

type cacheEntry struct {
	info     contracts.StockInfo
	storedAt time.Time
}

// InfoCache is an in-memory TTL cache for lookup results
// Redis 비활성 시 사용, 만료 항목은 스케줄러가 정리
type InfoCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	logger  *logger.Logger
	now     func() time.Time
}

// NewInfoCache creates a new lookup cache
func NewInfoCache(ttl time.Duration, log *logger.Logger) *InfoCache {
	return &InfoCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		logger:  log,
		now:     time.Now,
	}
}

// Get returns a copy of a fresh entry
func (c *InfoCache) Get(symbol string) (*contracts.StockInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[symbol]
	if !exists || c.now().Sub(entry.storedAt) > c.ttl {
		return nil, false
	}

	info := entry.info
	return &info, true
}

// Set stores a copy of info
func (c *InfoCache) Set(info *contracts.StockInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[info.Symbol] = cacheEntry{info: *info, storedAt: c.now()}
}

// Len returns the number of entries, expired ones included
func (c *InfoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Clear removes every entry
func (c *InfoCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	c.logger.Info("Cleared quote cache")
}

// CleanExpired removes expired entries and returns how many were removed
func (c *InfoCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0

	for symbol, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, symbol)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned expired quotes from cache")
	}

	return count
}
