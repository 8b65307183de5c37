package commands

import (
	"context"
	"fmt"

	"github.com/wonny/etf-rebalancer/internal/external/naver"
	"github.com/wonny/etf-rebalancer/internal/external/yahoo"
	"github.com/wonny/etf-rebalancer/internal/fx"
	"github.com/wonny/etf-rebalancer/internal/policy"
	"github.com/wonny/etf-rebalancer/internal/quote"
	"github.com/wonny/etf-rebalancer/internal/rebalance"
	"github.com/wonny/etf-rebalancer/pkg/config"
	"github.com/wonny/etf-rebalancer/pkg/httputil"
	"github.com/wonny/etf-rebalancer/pkg/logger"
	"github.com/wonny/etf-rebalancer/pkg/redis"
)

const cachePrefix = "etf"

// marketServices bundles the services every command that talks to upstreams needs
type marketServices struct {
	redis    *redis.Client
	rates    *fx.RateService
	quotes   *quote.Service
	fxClient *fx.Client
}

// connectRedis returns a live client or a disabled one when REDIS_ENABLED=false
func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) (*redis.Client, error) {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	if client.Enabled() {
		log.Info("Connected to Redis")
	} else {
		log.Debug("Redis disabled, using in-memory caches only")
	}
	return client, nil
}

// buildMarketServices wires HTTP clients, upstream clients and caching services
func buildMarketServices(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) *marketServices {
	cache := redis.NewCache(redisClient, cachePrefix)
	limiter := redis.NewRateLimiter(redisClient, cachePrefix)

	// Naver는 여러 인스턴스가 공유하는 Redis 슬라이딩 윈도우로 제한
	naverHTTP := httputil.New(log).WithRateLimiter(limiter, redis.NaverRateLimit)
	fxHTTP := httputil.New(log).WithRateLimiter(limiter, redis.FXRateLimit)
	yahooHTTP := httputil.New(log)

	fxClient := fx.NewClient(fxHTTP, cfg.FX.BaseURL, log.WithComponent("fx"))
	naverClient := naver.NewClient(naverHTTP, cfg.Quote.NaverBaseURL, log)
	yahooClient := yahoo.NewClient(yahooHTTP, cfg.Quote.YahooBaseURL, cfg.Quote.YahooRPS, log)

	rates := fx.NewRateService(fxClient, cache, cfg.FX.CacheTTL, cfg.FX.FallbackRate, log)
	localQuotes := quote.NewInfoCache(cfg.Quote.CacheTTL, log)
	quotes := quote.NewService(naverClient, yahooClient, cache, localQuotes, log)

	return &marketServices{
		redis:    redisClient,
		rates:    rates,
		quotes:   quotes,
		fxClient: fxClient,
	}
}

// buildEngine resolves sector targets (policy file or defaults) into an engine
func buildEngine(policyPath string, log *logger.Logger) (*rebalance.Engine, error) {
	targets, policyID, err := policy.Resolve(policyPath)
	if err != nil {
		return nil, fmt.Errorf("resolve rebalance policy: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"policy_id": policyID,
		"targets":   targets.Map(),
	}).Debug("Rebalance targets resolved")

	return rebalance.New(targets, log.WithComponent("rebalance")), nil
}
