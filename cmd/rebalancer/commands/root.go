package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/etf-rebalancer/pkg/config"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

var (
	// Global flags
	env     string
	verbose bool

	// stdout은 리포트 출력 전용, 로그는 stderr
	logOutput io.Writer = os.Stderr
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rebalancer",
	Short: "ETF 포트폴리오 리밸런서",
	Long: `ETF Rebalancer Unified CLI

섹터별 목표 비중(성장 40 / 배당 40 / 채권 10 / 금 5 / 크립토 5)과
현재 보유 비중을 비교해 매수·매도 금액을 제안합니다.
모든 금액은 원화(KRW) 기준으로 환산됩니다.

Usage:
  go run ./cmd/rebalancer [command]

Examples:
  go run ./cmd/rebalancer api
  go run ./cmd/rebalancer analyze --file holdings.yaml
  go run ./cmd/rebalancer quote 069500
  go run ./cmd/rebalancer fx
  go run ./cmd/rebalancer test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}

// loadConfig loads configuration and applies global flag overrides
func loadConfig(requireDatabase bool) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if requireDatabase {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadWithoutDatabase()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// newCommandLogger creates the logger for report-printing commands
func newCommandLogger(cfg *config.Config) *logger.Logger {
	return logger.NewWithWriter(cfg, logOutput)
}
