package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/portfolio"
	"github.com/wonny/etf-rebalancer/pkg/logger"
	"github.com/wonny/etf-rebalancer/pkg/metrics"
)

// PortfolioService is what the handler needs from the portfolio layer
type PortfolioService interface {
	Create(ctx context.Context, req portfolio.SaveRequest) (string, error)
	Get(ctx context.Context, id string) (*contracts.Portfolio, error)
	List(ctx context.Context, userID string) ([]contracts.Portfolio, error)
	Update(ctx context.Context, id string, req portfolio.SaveRequest) error
	Delete(ctx context.Context, id string) error
	Analyze(ctx context.Context, id string) (*contracts.Analysis, error)
}

// PortfolioHandler handles saved portfolio endpoints
// ⭐ SSOT: 포트폴리오 API 핸들러는 이 구조체에서만
type PortfolioHandler struct {
	service PortfolioService
	logger  *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service PortfolioService, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  log,
	}
}

// CreateResponse is returned after a successful save
type CreateResponse struct {
	PortfolioID string `json:"portfolio_id"`
	Message     string `json:"message"`
}

// MessageResponse is a plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// Create saves a new portfolio
// POST /api/portfolios
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req portfolio.SaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "포트폴리오 저장 중 오류가 발생했습니다.")
		return
	}

	respondJSON(w, http.StatusCreated, CreateResponse{
		PortfolioID: id,
		Message:     "포트폴리오가 성공적으로 저장되었습니다.",
	})
}

// List returns a user's portfolios
// GET /api/portfolios?user_id=anonymous
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.service.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.respondServiceError(w, err, "포트폴리오 목록 조회 중 오류가 발생했습니다.")
		return
	}

	respondJSON(w, http.StatusOK, portfolios)
}

// Get returns one portfolio with holdings
// GET /api/portfolios/{id}
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err, "포트폴리오 조회 중 오류가 발생했습니다.")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// Update replaces a portfolio's name and holdings
// PUT /api/portfolios/{id}
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req portfolio.SaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Update(r.Context(), mux.Vars(r)["id"], req); err != nil {
		h.respondServiceError(w, err, "포트폴리오 수정 중 오류가 발생했습니다.")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "포트폴리오가 성공적으로 수정되었습니다."})
}

// Delete removes a portfolio
// DELETE /api/portfolios/{id}
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, err, "포트폴리오 삭제 중 오류가 발생했습니다.")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "포트폴리오가 성공적으로 삭제되었습니다."})
}

// Rebalance analyzes a stored portfolio
// GET /api/portfolios/{id}/rebalance
func (h *PortfolioHandler) Rebalance(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.service.Analyze(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err, "리밸런싱 계산 중 오류가 발생했습니다.")
		return
	}
	metrics.RebalanceAnalysesTotal.Inc()

	respondJSON(w, http.StatusOK, analysis)
}

// respondServiceError maps service errors: validation → 400, not found → 404, else 500
func (h *PortfolioHandler) respondServiceError(w http.ResponseWriter, err error, fallbackMessage string) {
	switch {
	case errors.Is(err, portfolio.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, portfolio.ErrNotFound):
		respondError(w, http.StatusNotFound, "포트폴리오를 찾을 수 없습니다.")
	default:
		h.logger.WithError(err).Error(fallbackMessage)
		respondError(w, http.StatusInternalServerError, fallbackMessage)
	}
}
