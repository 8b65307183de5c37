package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/fx"
	"github.com/wonny/etf-rebalancer/internal/rebalance"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// ErrValidation wraps every request validation failure
var ErrValidation = errors.New("validation failed")

// Store is the persistence contract used by Service
type Store interface {
	Create(ctx context.Context, p *contracts.Portfolio) (string, error)
	Get(ctx context.Context, id string) (*contracts.Portfolio, error)
	List(ctx context.Context, userID string) ([]contracts.Portfolio, error)
	Update(ctx context.Context, id string, p *contracts.Portfolio) error
	Delete(ctx context.Context, id string) error
}

// SaveRequest is the body of create and update calls
type SaveRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	UserID      string              `json:"user_id,omitempty"`
	Holdings    []contracts.Holding `json:"etf_holdings"`
}

// Service validates requests and coordinates persistence and analysis
// ⭐ SSOT: 포트폴리오 요청 검증은 여기서만
type Service struct {
	store  Store
	engine *rebalance.Engine
	rates  contracts.RateProvider
	logger *logger.Logger
}

// NewService creates a new portfolio service
func NewService(store Store, engine *rebalance.Engine, rates contracts.RateProvider, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		rates:  rates,
		logger: log.WithComponent("portfolio"),
	}
}

// Create validates and saves a new portfolio
func (s *Service) Create(ctx context.Context, req SaveRequest) (string, error) {
	p, err := toPortfolio(req)
	if err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, p)
	if err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"portfolio_id": id,
		"holdings":     len(p.Holdings),
	}).Info("Portfolio created")

	return id, nil
}

// Get returns one portfolio
func (s *Service) Get(ctx context.Context, id string) (*contracts.Portfolio, error) {
	return s.store.Get(ctx, id)
}

// List returns a user's portfolios; empty user means anonymous
func (s *Service) List(ctx context.Context, userID string) ([]contracts.Portfolio, error) {
	if strings.TrimSpace(userID) == "" {
		userID = contracts.DefaultUserID
	}
	return s.store.List(ctx, userID)
}

// Update validates and replaces a portfolio's contents
func (s *Service) Update(ctx context.Context, id string, req SaveRequest) error {
	p, err := toPortfolio(req)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, p); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"portfolio_id": id,
		"holdings":     len(p.Holdings),
	}).Info("Portfolio updated")

	return nil
}

// Delete removes a portfolio
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("portfolio_id", id).Info("Portfolio deleted")
	return nil
}

// Analyze runs the rebalance engine over a stored portfolio.
// 유효하지 않은 보유 종목은 계산 전에 제외하고, 환율은 한 번만 확정해 모든 종목에 적용
func (s *Service) Analyze(ctx context.Context, id string) (*contracts.Analysis, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rate := s.rates.USDToKRW(ctx)
	converter := fx.NewConverter(fx.Static(rate.Rate), s.logger)

	analysis := s.engine.Analyze(ctx, contracts.FilterValid(p.Holdings), converter)
	return &analysis, nil
}

func toPortfolio(req SaveRequest) (*contracts.Portfolio, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	holdings := make([]contracts.Holding, 0, len(req.Holdings))
	for i, h := range req.Holdings {
		normalized, err := validateHolding(h)
		if err != nil {
			return nil, fmt.Errorf("%w: etf_holdings[%d]: %s", ErrValidation, i, err.Error())
		}
		holdings = append(holdings, normalized)
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = contracts.DefaultUserID
	}

	return &contracts.Portfolio{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		UserID:      userID,
		Holdings:    holdings,
	}, nil
}

func validateHolding(h contracts.Holding) (contracts.Holding, error) {
	h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
	if h.Symbol == "" {
		return h, errors.New("symbol is required")
	}

	sector, err := contracts.ParseSector(string(h.Sector))
	if err != nil {
		return h, err
	}
	h.Sector = sector

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"shares", h.Shares},
		{"currentPrice", h.CurrentPrice},
		{"purchasePrice", h.PurchasePrice},
	} {
		if !contracts.IsPositiveAmount(f.value) {
			return h, fmt.Errorf("%s must be a positive number", f.name)
		}
	}

	if h.PurchaseDate != "" {
		if _, err := time.Parse(dateLayout, h.PurchaseDate); err != nil {
			return h, fmt.Errorf("purchaseDate must be YYYY-MM-DD")
		}
	}

	if strings.TrimSpace(h.Name) == "" {
		h.Name = h.Symbol
	}
	h.Currency = h.CurrencyCode()
	h.ID = ""

	return h, nil
}
