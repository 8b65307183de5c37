package fx

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/pkg/logger"
	"github.com/wonny/etf-rebalancer/pkg/metrics"
	"github.com/wonny/etf-rebalancer/pkg/redis"
)

// DefaultFallbackRate is used when the rate source is unavailable
const DefaultFallbackRate = 1300.0

// DefaultCacheTTL is how long a resolved rate is reused
const DefaultCacheTTL = 5 * time.Minute

// RateFetcher fetches a live rate
type RateFetcher interface {
	FetchRate(ctx context.Context, from, to string) (float64, error)
}

// RateService resolves USD→KRW with caching and fallback.
// 실패해도 에러를 반환하지 않음: 항상 사용 가능한 환율을 돌려준다.
// ⭐ SSOT: 환율 캐시는 이 서비스만 관리
type RateService struct {
	fetcher      RateFetcher
	cache        *redis.Cache
	ttl          time.Duration
	fallbackRate float64
	logger       *logger.Logger
	now          func() time.Time

	mu        sync.Mutex
	current   *contracts.ExchangeRate
	expiresAt time.Time
}

// NewRateService creates a rate service. cache may be nil.
func NewRateService(fetcher RateFetcher, cache *redis.Cache, ttl time.Duration, fallbackRate float64, log *logger.Logger) *RateService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if fallbackRate <= 0 {
		fallbackRate = DefaultFallbackRate
	}

	return &RateService{
		fetcher:      fetcher,
		cache:        cache,
		ttl:          ttl,
		fallbackRate: fallbackRate,
		logger:       log.WithComponent("fx"),
		now:          time.Now,
	}
}

// USDToKRW returns the cached rate when fresh, otherwise fetches a new one
func (s *RateService) USDToKRW(ctx context.Context) contracts.ExchangeRate {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.current != nil && now.Before(s.expiresAt) {
		rate := *s.current
		if rate.Source == contracts.RateSourceAPI {
			rate.Source = contracts.RateSourceCache
		}
		metrics.RecordFXRate(string(contracts.RateSourceCache), rate.Rate)
		return rate
	}

	if rate, ok := s.fromSharedCache(ctx); ok {
		s.store(rate, now)
		metrics.RecordFXRate(string(contracts.RateSourceCache), rate.Rate)
		return rate
	}

	return s.fetchLocked(ctx, now)
}

// Refresh fetches a new rate regardless of the cache state
func (s *RateService) Refresh(ctx context.Context) contracts.ExchangeRate {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fetchLocked(ctx, s.now())
}

// fetchLocked fetches and stores a rate; the caller holds s.mu
func (s *RateService) fetchLocked(ctx context.Context, now time.Time) contracts.ExchangeRate {
	value, err := s.fetcher.FetchRate(ctx, contracts.CurrencyUSD, contracts.CurrencyKRW)
	if err != nil {
		// 실패 시 기본 환율을 캐시 기간 동안 사용
		s.logger.WithError(err).WithField("fallback_rate", s.fallbackRate).
			Warn("Failed to fetch exchange rate, using fallback")

		rate := contracts.ExchangeRate{
			Base:      contracts.CurrencyUSD,
			Quote:     contracts.CurrencyKRW,
			Rate:      s.fallbackRate,
			Source:    contracts.RateSourceFallback,
			FetchedAt: now,
		}
		s.store(rate, now)
		metrics.RecordFXRate(string(contracts.RateSourceFallback), rate.Rate)
		return rate
	}

	rate := contracts.ExchangeRate{
		Base:      contracts.CurrencyUSD,
		Quote:     contracts.CurrencyKRW,
		Rate:      value,
		Source:    contracts.RateSourceAPI,
		FetchedAt: now,
	}
	s.store(rate, now)
	s.toSharedCache(ctx, rate)
	metrics.RecordFXRate(string(contracts.RateSourceAPI), rate.Rate)

	s.logger.WithField("rate", value).Debug("Exchange rate refreshed")
	return rate
}

func (s *RateService) store(rate contracts.ExchangeRate, now time.Time) {
	s.current = &rate
	s.expiresAt = now.Add(s.ttl)
}

func (s *RateService) fromSharedCache(ctx context.Context) (contracts.ExchangeRate, bool) {
	if !s.cache.Enabled() {
		return contracts.ExchangeRate{}, false
	}

	var rate contracts.ExchangeRate
	found, err := s.cache.Get(ctx, redis.ExchangeRateKey(contracts.CurrencyUSD, contracts.CurrencyKRW), &rate)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read exchange rate from redis")
		return contracts.ExchangeRate{}, false
	}
	if !found || rate.Rate <= 0 {
		return contracts.ExchangeRate{}, false
	}

	rate.Source = contracts.RateSourceCache
	return rate, true
}

// toSharedCache mirrors API rates only; fallback values stay in-process
func (s *RateService) toSharedCache(ctx context.Context, rate contracts.ExchangeRate) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Set(ctx, redis.ExchangeRateKey(rate.Base, rate.Quote), rate, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Failed to write exchange rate to redis")
	}
}

// Static is a RateProvider that always returns the same rate (CLI --rate, tests)
type Static float64

// USDToKRW returns the fixed rate
func (r Static) USDToKRW(_ context.Context) contracts.ExchangeRate {
	return contracts.ExchangeRate{
		Base:      contracts.CurrencyUSD,
		Quote:     contracts.CurrencyKRW,
		Rate:      float64(r),
		Source:    contracts.RateSourceCache,
		FetchedAt: time.Time{},
	}
}
