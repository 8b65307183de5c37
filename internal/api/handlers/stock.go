package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/quote"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// StockHandler handles symbol lookup endpoints
// ⭐ SSOT: 종목 조회 API 핸들러는 이 구조체에서만
type StockHandler struct {
	quotes contracts.QuoteProvider
	logger *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(quotes contracts.QuoteProvider, log *logger.Logger) *StockHandler {
	return &StockHandler{
		quotes: quotes,
		logger: log,
	}
}

// GetStock returns name, exchange and price of a symbol
// GET /api/stock/{symbol}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	info, err := h.quotes.Lookup(r.Context(), symbol)
	switch {
	case errors.Is(err, quote.ErrInvalidSymbol):
		respondError(w, http.StatusBadRequest, fmt.Sprintf("올바르지 않은 종목 코드입니다: %s", symbol))
		return
	case errors.Is(err, quote.ErrNotFound):
		respondError(w, http.StatusNotFound, fmt.Sprintf("종목 정보를 찾을 수 없습니다: %s", symbol))
		return
	case err != nil:
		h.logger.WithError(err).WithField("symbol", symbol).Error("Stock lookup failed")
		respondError(w, http.StatusInternalServerError, "종목 조회 중 오류가 발생했습니다.")
		return
	}

	respondJSON(w, http.StatusOK, info)
}
