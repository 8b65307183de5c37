package handlers

import (
	"net/http"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/fx"
	"github.com/wonny/etf-rebalancer/internal/rebalance"
	"github.com/wonny/etf-rebalancer/pkg/logger"
	"github.com/wonny/etf-rebalancer/pkg/metrics"
)

// RebalanceHandler runs ad-hoc analyses for unsaved holdings
type RebalanceHandler struct {
	engine *rebalance.Engine
	rates  contracts.RateProvider
	logger *logger.Logger
}

// NewRebalanceHandler creates a new rebalance handler
func NewRebalanceHandler(engine *rebalance.Engine, rates contracts.RateProvider, log *logger.Logger) *RebalanceHandler {
	return &RebalanceHandler{
		engine: engine,
		rates:  rates,
		logger: log,
	}
}

// RebalanceRequest is the body of POST /api/rebalance
type RebalanceRequest struct {
	Holdings []contracts.Holding `json:"holdings"`
}

// RebalanceResponse is the analysis plus the rate used for conversion
type RebalanceResponse struct {
	contracts.Analysis
	ExchangeRate contracts.ExchangeRate `json:"exchange_rate"`
	Skipped      int                    `json:"skipped"` // 유효하지 않아 제외된 보유 종목 수
}

// Analyze computes allocation, recommendations and summary
// POST /api/rebalance
func (h *RebalanceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req RebalanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	valid := contracts.FilterValid(req.Holdings)

	// 환율을 먼저 확정해서 한 요청 안에서는 같은 환율을 사용
	rate := h.rates.USDToKRW(ctx)
	analysis := h.engine.Analyze(ctx, valid, fx.NewConverter(fx.Static(rate.Rate), h.logger))
	metrics.RebalanceAnalysesTotal.Inc()

	respondJSON(w, http.StatusOK, RebalanceResponse{
		Analysis:     analysis,
		ExchangeRate: rate,
		Skipped:      len(req.Holdings) - len(valid),
	})
}
