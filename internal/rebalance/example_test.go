package rebalance_test

import (
	"context"
	"fmt"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/fx"
	"github.com/wonny/etf-rebalancer/internal/rebalance"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// 성장 섹터에만 1,000 USD를 보유한 경우 (환율 1,300)
func ExampleEngine_ComputeRebalanceRecommendations() {
	engine := rebalance.New(rebalance.DefaultTargets(), logger.Nop())
	conv := fx.NewConverter(fx.Static(1300), logger.Nop())

	holdings := []contracts.Holding{
		{Symbol: "QQQ", Shares: 10, CurrentPrice: 100, PurchasePrice: 90, Sector: contracts.SectorGrowth, Currency: "USD"},
	}

	for _, rec := range engine.ComputeRebalanceRecommendations(context.Background(), holdings, conv) {
		fmt.Printf("%-8s %-4s %.0f\n", rec.Sector, rec.Action, rec.RecommendedAmount)
	}
	// Output:
	// dividend buy  520000
	// bond     buy  130000
	// gold     buy  65000
	// crypto   buy  65000
	// growth   sell -780000
}
