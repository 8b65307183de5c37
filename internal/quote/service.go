package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/external/naver"
	"github.com/wonny/etf-rebalancer/internal/external/yahoo"
	"github.com/wonny/etf-rebalancer/pkg/logger"
	"github.com/wonny/etf-rebalancer/pkg/metrics"
	"github.com/wonny/etf-rebalancer/pkg/redis"
)

// ErrNotFound means the upstream confirmed the symbol does not exist
// and no fallback entry is known for it
var ErrNotFound = errors.New("symbol not found")

// KoreanSource fetches KRX listings
type KoreanSource interface {
	FetchItem(ctx context.Context, code string) (*naver.ItemQuote, error)
}

// ForeignSource fetches foreign listings
type ForeignSource interface {
	FetchChartMeta(ctx context.Context, symbol string) (*yahoo.ChartMeta, error)
}

// Service resolves symbols to StockInfo
// ⭐ SSOT: 종목 조회 (검증 → 캐시 → 외부 조회 → 대체값)
type Service struct {
	korean  KoreanSource
	foreign ForeignSource
	shared  *redis.Cache
	local   *InfoCache
	logger  *logger.Logger
}

// NewService creates a lookup service. shared may be nil or disabled,
// in which case local is used.
func NewService(korean KoreanSource, foreign ForeignSource, shared *redis.Cache, local *InfoCache, log *logger.Logger) *Service {
	return &Service{
		korean:  korean,
		foreign: foreign,
		shared:  shared,
		local:   local,
		logger:  log.WithComponent("quote"),
	}
}

// Lookup validates raw and returns the symbol's information.
// Errors: ErrInvalidSymbol, ErrNotFound. Transport failures degrade to fallback data.
func (s *Service) Lookup(ctx context.Context, raw string) (*contracts.StockInfo, error) {
	symbol, market, err := ValidateSymbol(raw)
	if err != nil {
		metrics.RecordQuoteLookup("unknown", "invalid")
		return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}

	if info, ok := s.cached(ctx, symbol); ok {
		metrics.RecordQuoteLookup(string(market), "cache")
		return info, nil
	}

	var info *contracts.StockInfo
	if market == MarketKorea {
		info, err = s.lookupKorean(ctx, symbol)
	} else {
		info, err = s.lookupForeign(ctx, symbol)
	}
	if err != nil {
		metrics.RecordQuoteLookup(string(market), "not_found")
		return nil, err
	}

	return info, nil
}

// CleanExpired evicts expired in-memory entries
func (s *Service) CleanExpired() int {
	if s.local == nil {
		return 0
	}
	return s.local.CleanExpired()
}

func (s *Service) lookupKorean(ctx context.Context, symbol string) (*contracts.StockInfo, error) {
	item, err := s.korean.FetchItem(ctx, symbol)
	if err != nil {
		fallback, known := koreanFallback(symbol)
		if errors.Is(err, naver.ErrItemNotFound) && !known {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}

		s.logger.WithError(err).WithField("symbol", symbol).Warn("Korean lookup failed, using fallback")
		metrics.RecordQuoteLookup(string(MarketKorea), "fallback")
		return fallback, nil
	}

	info := &contracts.StockInfo{
		Symbol:       symbol,
		Name:         item.Name,
		Exchange:     item.Market,
		Country:      "KR",
		CurrentPrice: item.Price,
		Currency:     contracts.CurrencyKRW,
	}
	s.store(ctx, info)
	metrics.RecordQuoteLookup(string(MarketKorea), "live")

	return info, nil
}

func (s *Service) lookupForeign(ctx context.Context, symbol string) (*contracts.StockInfo, error) {
	meta, err := s.foreign.FetchChartMeta(ctx, symbol)
	if err != nil {
		fallback, known := foreignFallback(symbol)
		if errors.Is(err, yahoo.ErrSymbolNotFound) && !known {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}

		s.logger.WithError(err).WithField("symbol", symbol).Warn("Foreign lookup failed, using fallback")
		metrics.RecordQuoteLookup(string(MarketForeign), "fallback")
		return fallback, nil
	}

	name := meta.Name()
	if name == "" {
		name = fmt.Sprintf("%s ETF", symbol)
	}
	exchange := meta.ExchangeName
	if exchange == "" {
		exchange = "NASDAQ"
	}
	currency := meta.Currency
	if currency == "" {
		currency = contracts.CurrencyUSD
	}

	info := &contracts.StockInfo{
		Symbol:       symbol,
		Name:         name,
		Exchange:     exchange,
		Country:      CountryForExchange(exchange),
		CurrentPrice: meta.Price(),
		Currency:     currency,
	}
	s.store(ctx, info)
	metrics.RecordQuoteLookup(string(MarketForeign), "live")

	return info, nil
}

// cached checks redis when enabled, otherwise the in-memory cache
func (s *Service) cached(ctx context.Context, symbol string) (*contracts.StockInfo, bool) {
	if s.shared.Enabled() {
		var info contracts.StockInfo
		found, err := s.shared.Get(ctx, redis.QuoteKey(symbol), &info)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to read quote from redis")
			return nil, false
		}
		if found {
			return &info, true
		}
		return nil, false
	}

	if s.local != nil {
		return s.local.Get(symbol)
	}
	return nil, false
}

// store caches live results only; fallback data is never cached
func (s *Service) store(ctx context.Context, info *contracts.StockInfo) {
	if s.shared.Enabled() {
		if err := s.shared.Set(ctx, redis.QuoteKey(info.Symbol), info, redis.TTLQuote); err != nil {
			s.logger.WithError(err).Warn("Failed to write quote to redis")
		}
		return
	}

	if s.local != nil {
		s.local.Set(info)
	}
}
