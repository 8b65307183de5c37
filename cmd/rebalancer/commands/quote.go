package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL",
	Short: "종목 정보 조회",
	Long: `종목 코드로 이름, 거래소, 현재가를 조회합니다.

6자리 숫자 코드는 국내(Naver Finance), 그 외는 해외(Yahoo Finance)로 조회하며
조회 실패 시 내장된 ETF 이름 테이블로 대체합니다.

Example:
  go run ./cmd/rebalancer quote 069500
  go run ./cmd/rebalancer quote SPY`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
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

	info, err := market.quotes.Lookup(ctx, args[0])
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	price := "N/A"
	if info.HasPrice() {
		price = fmt.Sprintf("%.2f %s", *info.CurrentPrice, info.Currency)
	}

	PrintHeader(info.Symbol)
	PrintField("Name", info.Name)
	PrintField("Exchange", info.Exchange)
	PrintField("Country", info.Country)
	PrintField("Price", price)
	PrintDoubleSeparator()

	return nil
}
