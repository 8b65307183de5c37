package jobs

import (
	"context"
	"errors"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// ErrFallbackRate is returned when the refresh could only produce the default rate
var ErrFallbackRate = errors.New("exchange rate refresh fell back to default rate")

// RateRefresher forces a new exchange-rate fetch
type RateRefresher interface {
	Refresh(ctx context.Context) contracts.ExchangeRate
}

// FXRefreshJob keeps the USD/KRW cache warm
type FXRefreshJob struct {
	rates  RateRefresher
	logger *logger.Logger
}

// NewFXRefreshJob creates a new exchange-rate refresh job
func NewFXRefreshJob(rates RateRefresher, log *logger.Logger) *FXRefreshJob {
	return &FXRefreshJob{
		rates:  rates,
		logger: log,
	}
}

// Name returns the job name
func (j *FXRefreshJob) Name() string {
	return "fx_refresh"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *FXRefreshJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run refreshes the exchange rate
func (j *FXRefreshJob) Run(ctx context.Context) error {
	rate := j.rates.Refresh(ctx)

	if rate.Source == contracts.RateSourceFallback {
		return ErrFallbackRate
	}

	j.logger.WithFields(map[string]interface{}{
		"rate":   rate.Rate,
		"source": rate.Source,
	}).Debug("Exchange rate refreshed")

	return nil
}
