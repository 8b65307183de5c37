package rebalance

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// fixedRateConverter converts USD (and unknown codes) at a fixed rate
type fixedRateConverter struct {
	rate  float64
	calls int64
}

func (c *fixedRateConverter) ToBase(_ context.Context, amount float64, currency string) float64 {
	atomic.AddInt64(&c.calls, 1)
	if currency == contracts.CurrencyKRW {
		return amount
	}
	return amount * c.rate
}

func newTestEngine() *Engine {
	return New(DefaultTargets(), logger.Nop())
}

func findAllocation(t *testing.T, allocations []contracts.SectorAllocation, s contracts.Sector) contracts.SectorAllocation {
	t.Helper()
	for _, a := range allocations {
		if a.Sector == s {
			return a
		}
	}
	t.Fatalf("allocation for %s not found", s)
	return contracts.SectorAllocation{}
}

func findRecommendation(t *testing.T, recs []contracts.RebalanceRecommendation, s contracts.Sector) contracts.RebalanceRecommendation {
	t.Helper()
	for _, r := range recs {
		if r.Sector == s {
			return r
		}
	}
	t.Fatalf("recommendation for %s not found", s)
	return contracts.RebalanceRecommendation{}
}

func TestSingleGrowthHolding_Example(t *testing.T) {
	engine := newTestEngine()
	conv := &fixedRateConverter{rate: 1300}
	holdings := []contracts.Holding{
		{Symbol: "QQQ", Shares: 10, CurrentPrice: 100, PurchasePrice: 90, Sector: contracts.SectorGrowth, Currency: "USD"},
	}

	summary := engine.ComputePortfolioSummary(context.Background(), holdings, conv)
	assert.InDelta(t, 1_300_000, summary.TotalValue, 1e-6)

	allocations := engine.ComputeSectorAllocation(context.Background(), holdings, conv)
	growth := findAllocation(t, allocations, contracts.SectorGrowth)
	assert.InDelta(t, 100, growth.Percentage, 1e-9)
	assert.InDelta(t, 1_300_000, growth.Value, 1e-6)

	recs := engine.ComputeRebalanceRecommendations(context.Background(), holdings, conv)
	rec := findRecommendation(t, recs, contracts.SectorGrowth)
	assert.Equal(t, 40.0, rec.TargetWeight)
	assert.InDelta(t, 100, rec.CurrentWeight, 1e-9)
	assert.Equal(t, contracts.ActionSell, rec.Action)
	assert.InDelta(t, -780_000, rec.RecommendedAmount, 1e-6)
}

func TestSingleGrowthHolding_Ordering(t *testing.T) {
	engine := newTestEngine()
	holdings := []contracts.Holding{
		{Symbol: "QQQ", Shares: 10, CurrentPrice: 100, PurchasePrice: 90, Sector: contracts.SectorGrowth, Currency: "USD"},
	}

	recs := engine.ComputeRebalanceRecommendations(context.Background(), holdings, &fixedRateConverter{rate: 1300})
	require.Len(t, recs, 5)

	// buy는 금액 내림차순, 동일 금액은 섹터 순서 유지
	want := []contracts.Sector{
		contracts.SectorDividend,
		contracts.SectorBond,
		contracts.SectorGold,
		contracts.SectorCrypto,
		contracts.SectorGrowth,
	}
	for i, s := range want {
		assert.Equal(t, s, recs[i].Sector, "position %d", i)
	}
	assert.InDelta(t, 520_000, recs[0].RecommendedAmount, 1e-6)
	assert.Equal(t, contracts.ActionSell, recs[4].Action)
}

func TestZeroHoldings(t *testing.T) {
	engine := newTestEngine()
	conv := &fixedRateConverter{rate: 1300}

	allocations := engine.ComputeSectorAllocation(context.Background(), nil, conv)
	require.Len(t, allocations, 5)
	for i, s := range contracts.AllSectors() {
		assert.Equal(t, s, allocations[i].Sector)
		assert.Equal(t, 0.0, allocations[i].Value)
		assert.Equal(t, 0.0, allocations[i].Percentage)
	}

	summary := engine.ComputePortfolioSummary(context.Background(), nil, conv)
	assert.Equal(t, 0.0, summary.TotalValue)
	assert.Equal(t, 0.0, summary.TotalReturnPercent)
	assert.Equal(t, int64(0), atomic.LoadInt64(&conv.calls))
}

func TestEqualValueAtTarget_AllHold(t *testing.T) {
	targets, err := NewTargetTable(map[contracts.Sector]float64{
		contracts.SectorGrowth:   50,
		contracts.SectorDividend: 50,
		contracts.SectorBond:     0,
		contracts.SectorGold:     0,
		contracts.SectorCrypto:   0,
	})
	require.NoError(t, err)

	engine := New(targets, logger.Nop())
	holdings := []contracts.Holding{
		{Symbol: "069500", Shares: 10, CurrentPrice: 35000, Sector: contracts.SectorGrowth, Currency: "KRW"},
		{Symbol: "SCHD", Shares: 350, CurrentPrice: 1000, Sector: contracts.SectorDividend, Currency: "KRW"},
	}

	recs := engine.ComputeRebalanceRecommendations(context.Background(), holdings, &fixedRateConverter{rate: 1300})
	for _, r := range recs {
		assert.Equal(t, contracts.ActionHold, r.Action, "sector %s", r.Sector)
	}
	assert.Equal(t, 0.0, findRecommendation(t, recs, contracts.SectorGrowth).RecommendedAmount)
}

func mixedHoldings() []contracts.Holding {
	return []contracts.Holding{
		{Symbol: "QQQ", Shares: 12, CurrentPrice: 480.5, PurchasePrice: 400, Sector: contracts.SectorGrowth, Currency: "USD"},
		{Symbol: "SCHD", Shares: 40, CurrentPrice: 27.3, PurchasePrice: 25, Sector: contracts.SectorDividend},
		{Symbol: "148070", Shares: 20, CurrentPrice: 112000, PurchasePrice: 110000, Sector: contracts.SectorBond, Currency: "KRW"},
		{Symbol: "GLD", Shares: 3, CurrentPrice: 240, PurchasePrice: 180, Sector: contracts.SectorGold, Currency: "USD"},
		{Symbol: "IBIT", Shares: 15, CurrentPrice: 55, PurchasePrice: 60, Sector: contracts.SectorCrypto, Currency: "EUR"},
		{Symbol: "VOO", Shares: 2, CurrentPrice: 510, PurchasePrice: 450, Sector: contracts.SectorGrowth, Currency: "usd"},
	}
}

func TestPercentagesSumTo100(t *testing.T) {
	engine := newTestEngine()

	allocations := engine.ComputeSectorAllocation(context.Background(), mixedHoldings(), &fixedRateConverter{rate: 1385.2})

	var sum float64
	for _, a := range allocations {
		sum += a.Percentage
	}
	assert.InDelta(t, 100, sum, 1e-9)
}

func TestHoldIffWithinThreshold(t *testing.T) {
	engine := newTestEngine()

	recs := engine.ComputeRebalanceRecommendations(context.Background(), mixedHoldings(), &fixedRateConverter{rate: 1385.2})
	require.Len(t, recs, 5)

	for _, r := range recs {
		diff := r.TargetWeight - r.CurrentWeight
		if math.Abs(diff) < HoldThreshold {
			assert.Equal(t, contracts.ActionHold, r.Action, "sector %s", r.Sector)
		} else if diff > 0 {
			assert.Equal(t, contracts.ActionBuy, r.Action, "sector %s", r.Sector)
		} else {
			assert.Equal(t, contracts.ActionSell, r.Action, "sector %s", r.Sector)
		}
	}
}

func TestRecommendationOrdering(t *testing.T) {
	engine := newTestEngine()

	recs := engine.ComputeRebalanceRecommendations(context.Background(), mixedHoldings(), &fixedRateConverter{rate: 1385.2})

	for i := 1; i < len(recs); i++ {
		prev, cur := recs[i-1], recs[i]
		require.LessOrEqual(t, prev.Action.Rank(), cur.Action.Rank(), "buy < sell < hold violated at %d", i)
		if prev.Action == cur.Action {
			assert.GreaterOrEqual(t, math.Abs(prev.RecommendedAmount), math.Abs(cur.RecommendedAmount))
		}
	}
}

func TestHoldThresholdBoundary(t *testing.T) {
	// growth 41%, dividend 39%, bond 10%, gold 5%, crypto 5% → |diff| == 1 은 hold 아님
	engine := newTestEngine()
	holdings := []contracts.Holding{
		{Symbol: "A", Shares: 41, CurrentPrice: 1000, Sector: contracts.SectorGrowth, Currency: "KRW"},
		{Symbol: "B", Shares: 39, CurrentPrice: 1000, Sector: contracts.SectorDividend, Currency: "KRW"},
		{Symbol: "C", Shares: 10, CurrentPrice: 1000, Sector: contracts.SectorBond, Currency: "KRW"},
		{Symbol: "D", Shares: 5, CurrentPrice: 1000, Sector: contracts.SectorGold, Currency: "KRW"},
		{Symbol: "E", Shares: 5, CurrentPrice: 1000, Sector: contracts.SectorCrypto, Currency: "KRW"},
	}

	recs := engine.ComputeRebalanceRecommendations(context.Background(), holdings, &fixedRateConverter{rate: 1300})

	assert.Equal(t, contracts.ActionBuy, recs[0].Action)
	assert.Equal(t, contracts.SectorDividend, recs[0].Sector)
	assert.InDelta(t, 1000, recs[0].RecommendedAmount, 1e-6)
	assert.Equal(t, contracts.ActionSell, recs[1].Action)
	assert.Equal(t, contracts.SectorGrowth, recs[1].Sector)
	assert.Equal(t, contracts.ActionHold, findRecommendation(t, recs, contracts.SectorBond).Action)
}

func TestIdempotence(t *testing.T) {
	engine := newTestEngine()
	conv := &fixedRateConverter{rate: 1385.2}
	holdings := mixedHoldings()

	first := engine.ComputeSectorAllocation(context.Background(), holdings, conv)
	second := engine.ComputeSectorAllocation(context.Background(), holdings, conv)
	assert.Equal(t, first, second)

	a1 := engine.Analyze(context.Background(), holdings, conv)
	a2 := engine.Analyze(context.Background(), holdings, conv)
	assert.Equal(t, a1, a2)
}

func TestPortfolioSummary(t *testing.T) {
	engine := newTestEngine()
	holdings := []contracts.Holding{
		{Symbol: "SPY", Shares: 2, CurrentPrice: 500, PurchasePrice: 400, Sector: contracts.SectorGrowth, Currency: "USD"},
		{Symbol: "069500", Shares: 10, CurrentPrice: 30000, PurchasePrice: 35000, Sector: contracts.SectorDividend, Currency: "KRW"},
	}

	summary := engine.ComputePortfolioSummary(context.Background(), holdings, &fixedRateConverter{rate: 1000})

	// value: 1,000,000 + 300,000 / cost: 800,000 + 350,000
	assert.InDelta(t, 1_300_000, summary.TotalValue, 1e-6)
	assert.InDelta(t, 150_000, summary.TotalReturn, 1e-6)
	assert.InDelta(t, 100*150_000.0/1_150_000, summary.TotalReturnPercent, 1e-9)
	assert.Equal(t, 0.0, summary.DayChange)
	assert.Equal(t, 0.0, summary.DayChangePercent)
}

func TestPortfolioSummary_ZeroCost(t *testing.T) {
	engine := newTestEngine()
	holdings := []contracts.Holding{
		{Symbol: "SPY", Shares: 2, CurrentPrice: 500, Sector: contracts.SectorGrowth, Currency: "USD"},
	}

	summary := engine.ComputePortfolioSummary(context.Background(), holdings, &fixedRateConverter{rate: 1300})
	assert.Equal(t, 0.0, summary.TotalReturnPercent)
	assert.InDelta(t, 1_300_000, summary.TotalReturn, 1e-6)
}

func TestAnalyze_MatchesIndividualOperations(t *testing.T) {
	engine := newTestEngine()
	conv := &fixedRateConverter{rate: 1385.2}
	holdings := mixedHoldings()

	analysis := engine.Analyze(context.Background(), holdings, conv)

	assert.Equal(t, engine.ComputeSectorAllocation(context.Background(), holdings, conv), analysis.Allocations)
	assert.Equal(t, engine.ComputeRebalanceRecommendations(context.Background(), holdings, conv), analysis.Recommendations)
	assert.Equal(t, engine.ComputePortfolioSummary(context.Background(), holdings, conv), analysis.Summary)
}

func TestAnalyze_ConvertsEveryHoldingOnce(t *testing.T) {
	engine := newTestEngine()
	conv := &fixedRateConverter{rate: 1300}
	holdings := mixedHoldings()

	engine.Analyze(context.Background(), holdings, conv)

	// 평가금액 + 매입금액
	assert.Equal(t, int64(2*len(holdings)), atomic.LoadInt64(&conv.calls))
}

func TestConcurrentCallers(t *testing.T) {
	engine := newTestEngine()
	conv := &fixedRateConverter{rate: 1385.2}
	holdings := mixedHoldings()
	want := engine.Analyze(context.Background(), holdings, conv)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, engine.Analyze(context.Background(), holdings, conv))
		}()
	}
	wg.Wait()
}

func TestNew_NilLoggerDefaultsToNop(t *testing.T) {
	engine := New(DefaultTargets(), nil)
	holdings := []contracts.Holding{
		{Symbol: "QQQ", Shares: 10, CurrentPrice: 100, PurchasePrice: 90, Sector: contracts.SectorGrowth, Currency: "USD"},
	}

	var analysis contracts.Analysis
	require.NotPanics(t, func() {
		analysis = engine.Analyze(context.Background(), holdings, &fixedRateConverter{rate: 1300})
	})
	assert.InDelta(t, 1_300_000, analysis.Summary.TotalValue, 1e-6)
}
