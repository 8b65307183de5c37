package handlers

import (
	"net/http"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

// ExchangeRateHandler serves the current USD/KRW rate
type ExchangeRateHandler struct {
	rates contracts.RateProvider
}

// NewExchangeRateHandler creates a new exchange rate handler
func NewExchangeRateHandler(rates contracts.RateProvider) *ExchangeRateHandler {
	return &ExchangeRateHandler{rates: rates}
}

// GetRate returns the rate and where it came from
// GET /api/exchange-rate
func (h *ExchangeRateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.rates.USDToKRW(r.Context()))
}
