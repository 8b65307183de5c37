package fx

import (
	"context"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// Converter normalizes amounts into KRW
// KRW → 그대로, USD → × 환율, 그 외 통화 → 경고 후 USD로 간주
type Converter struct {
	rates  contracts.RateProvider
	logger *logger.Logger
}

// NewConverter creates a converter backed by a rate provider
func NewConverter(rates contracts.RateProvider, log *logger.Logger) *Converter {
	return &Converter{
		rates:  rates,
		logger: log,
	}
}

// ToBase converts amount in currency into KRW. Empty currency means USD.
func (c *Converter) ToBase(ctx context.Context, amount float64, currency string) float64 {
	code := contracts.Holding{Currency: currency}.CurrencyCode()

	switch code {
	case contracts.CurrencyKRW:
		return amount
	case contracts.CurrencyUSD:
		return amount * c.rates.USDToKRW(ctx).Rate
	default:
		c.logger.WithField("currency", code).Warn("Unsupported currency, treating as USD")
		return amount * c.rates.USDToKRW(ctx).Rate
	}
}

// ValueInBase returns shares × price converted into KRW
func (c *Converter) ValueInBase(ctx context.Context, shares, price float64, currency string) float64 {
	return c.ToBase(ctx, shares*price, currency)
}
