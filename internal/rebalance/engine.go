package rebalance

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// maxConcurrentConversions bounds the per-holding conversion fan-out
const maxConcurrentConversions = 8

// CurrencyConverter normalizes an amount into the base currency (KRW).
// 실패하지 않음: 변환기는 항상 사용 가능한 값을 돌려준다.
type CurrencyConverter interface {
	ToBase(ctx context.Context, amount float64, currency string) float64
}

// Engine computes sector allocation, rebalance recommendations and summaries
// ⭐ SSOT: 리밸런싱 계산 로직은 여기서만
type Engine struct {
	targets TargetTable
	logger  *logger.Logger
}

// New creates a new rebalance engine. A nil log discards engine logs.
func New(targets TargetTable, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		targets: targets,
		logger:  log,
	}
}

// Targets returns the engine's target table
func (e *Engine) Targets() TargetTable {
	return e.targets
}

// converted holds one holding's values in the base currency
type converted struct {
	sector contracts.Sector
	value  float64
	cost   float64
}

// convertAll converts every holding concurrently and joins before returning.
// 결과는 인덱스로 기록하므로 입력 순서가 유지된다.
func (e *Engine) convertAll(ctx context.Context, holdings []contracts.Holding, conv CurrencyConverter, withCost bool) []converted {
	out := make([]converted, len(holdings))

	var g errgroup.Group
	g.SetLimit(maxConcurrentConversions)

	for i := range holdings {
		h := holdings[i]
		g.Go(func() error {
			currency := h.CurrencyCode()
			c := converted{
				sector: h.Sector,
				value:  conv.ToBase(ctx, h.MarketValue(), currency),
			}
			if withCost {
				c.cost = conv.ToBase(ctx, h.CostBasis(), currency)
			}
			out[i] = c
			return nil
		})
	}

	// 변환 함수는 에러를 반환하지 않음
	_ = g.Wait()

	return out
}

// ComputeSectorAllocation returns one entry per sector, in enumeration order
func (e *Engine) ComputeSectorAllocation(ctx context.Context, holdings []contracts.Holding, conv CurrencyConverter) []contracts.SectorAllocation {
	values := e.convertAll(ctx, holdings, conv, false)
	return e.allocate(values)
}

func (e *Engine) allocate(values []converted) []contracts.SectorAllocation {
	bySector := make(map[contracts.Sector]float64)
	var total float64
	for _, v := range values {
		bySector[v.sector] += v.value
		total += v.value
	}

	sectors := contracts.AllSectors()
	allocations := make([]contracts.SectorAllocation, 0, len(sectors))
	for _, s := range sectors {
		value := bySector[s]
		percentage := 0.0
		if total > 0 {
			percentage = 100 * value / total
		}

		allocations = append(allocations, contracts.SectorAllocation{
			Sector:           s,
			SectorName:       s.DisplayName(),
			Value:            value,
			Percentage:       percentage,
			TargetPercentage: e.targets.Target(s),
			Color:            s.Color(),
		})
	}

	return allocations
}

// ComputeRebalanceRecommendations classifies each sector as buy, sell or hold.
// Ordered buys, then sells, then holds; within a group by descending |amount|.
func (e *Engine) ComputeRebalanceRecommendations(ctx context.Context, holdings []contracts.Holding, conv CurrencyConverter) []contracts.RebalanceRecommendation {
	values := e.convertAll(ctx, holdings, conv, false)
	return e.recommend(values)
}

func (e *Engine) recommend(values []converted) []contracts.RebalanceRecommendation {
	allocations := e.allocate(values)

	var total float64
	for _, a := range allocations {
		total += a.Value
	}

	recommendations := make([]contracts.RebalanceRecommendation, 0, len(allocations))
	for _, a := range allocations {
		difference := a.TargetPercentage - a.Percentage

		action := contracts.ActionHold
		if math.Abs(difference) >= HoldThreshold {
			if difference > 0 {
				action = contracts.ActionBuy
			} else {
				action = contracts.ActionSell
			}
		}

		recommendations = append(recommendations, contracts.RebalanceRecommendation{
			Sector:            a.Sector,
			SectorName:        a.SectorName,
			CurrentWeight:     a.Percentage,
			TargetWeight:      a.TargetPercentage,
			Action:            action,
			RecommendedAmount: difference / 100 * total,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		ri, rj := recommendations[i].Action.Rank(), recommendations[j].Action.Rank()
		if ri != rj {
			return ri < rj
		}
		return math.Abs(recommendations[i].RecommendedAmount) > math.Abs(recommendations[j].RecommendedAmount)
	})

	return recommendations
}

// ComputePortfolioSummary returns totals in the base currency.
// dayChange 필드는 일간 가격 데이터가 없으므로 항상 0.
func (e *Engine) ComputePortfolioSummary(ctx context.Context, holdings []contracts.Holding, conv CurrencyConverter) contracts.PortfolioSummary {
	values := e.convertAll(ctx, holdings, conv, true)
	return summarize(values)
}

func summarize(values []converted) contracts.PortfolioSummary {
	var totalValue, totalCost float64
	for _, v := range values {
		totalValue += v.value
		totalCost += v.cost
	}

	totalReturn := totalValue - totalCost
	totalReturnPercent := 0.0
	if totalCost > 0 {
		totalReturnPercent = 100 * totalReturn / totalCost
	}

	return contracts.PortfolioSummary{
		TotalValue:         totalValue,
		TotalReturn:        totalReturn,
		TotalReturnPercent: totalReturnPercent,
		DayChange:          0,
		DayChangePercent:   0,
	}
}

// Analyze produces allocations, recommendations and summary from a single
// conversion pass
func (e *Engine) Analyze(ctx context.Context, holdings []contracts.Holding, conv CurrencyConverter) contracts.Analysis {
	values := e.convertAll(ctx, holdings, conv, true)

	analysis := contracts.Analysis{
		Allocations:     e.allocate(values),
		Recommendations: e.recommend(values),
		Summary:         summarize(values),
	}

	e.logger.WithFields(map[string]interface{}{
		"holdings":    len(holdings),
		"total_value": analysis.Summary.TotalValue,
	}).Debug("Rebalance analysis computed")

	return analysis
}
