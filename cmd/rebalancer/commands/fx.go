package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/report"
)

// fxCmd represents the fx command
var fxCmd = &cobra.Command{
	Use:   "fx",
	Short: "USD/KRW 환율 조회",
	Long: `현재 USD/KRW 환율을 조회합니다.

API 조회에 실패하면 설정된 기본 환율(FX_FALLBACK_USD_KRW)을 사용하며
출처(source)가 fallback으로 표시됩니다.

Example:
  go run ./cmd/rebalancer fx
  go run ./cmd/rebalancer fx --refresh`,
	RunE: runFX,
}

var fxRefresh bool

func init() {
	rootCmd.AddCommand(fxCmd)

	fxCmd.Flags().BoolVar(&fxRefresh, "refresh", false, "캐시를 무시하고 새로 조회")
}

func runFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	log := newCommandLogger(cfg)

	redisClient, err := connectRedis(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	market := buildMarketServices(cfg, log, redisClient)

	var rate contracts.ExchangeRate
	if fxRefresh {
		rate = market.rates.Refresh(ctx)
	} else {
		rate = market.rates.USDToKRW(ctx)
	}

	PrintHeader(report.FormatExchangeRate(rate))
	PrintField("Source", rate.Source)
	if !rate.FetchedAt.IsZero() {
		PrintField("Fetched", rate.FetchedAt.Format(time.RFC3339))
	}
	PrintField("Breaker", market.fxClient.BreakerState())
	PrintDoubleSeparator()

	return nil
}
