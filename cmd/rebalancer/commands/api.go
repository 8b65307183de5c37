package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/etf-rebalancer/internal/api"
	"github.com/wonny/etf-rebalancer/internal/api/handlers"
	"github.com/wonny/etf-rebalancer/internal/portfolio"
	"github.com/wonny/etf-rebalancer/internal/scheduler"
	"github.com/wonny/etf-rebalancer/internal/scheduler/jobs"
	"github.com/wonny/etf-rebalancer/pkg/database"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- PostgreSQL 연결 및 스키마 생성
- 환율/종목 조회 클라이언트 초기화
- 환율 갱신 및 캐시 정리 스케줄러 실행
- HTTP API 서버 시작

Endpoints:
  GET    /health                          - Health check
  GET    /metrics                         - Prometheus metrics
  GET    /api/stock/{symbol}              - 종목 정보 조회
  GET    /api/exchange-rate               - USD/KRW 환율
  POST   /api/rebalance                   - 보유 종목 리밸런싱 분석
  POST   /api/portfolios                  - 포트폴리오 저장
  GET    /api/portfolios?user_id=         - 포트폴리오 목록
  GET    /api/portfolios/{id}             - 포트폴리오 조회
  PUT    /api/portfolios/{id}             - 포트폴리오 수정
  DELETE /api/portfolios/{id}             - 포트폴리오 삭제
  GET    /api/portfolios/{id}/rebalance   - 저장된 포트폴리오 분석

Example:
  go run ./cmd/rebalancer api
  go run ./cmd/rebalancer api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ETF Rebalancer API Server ===")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load config
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Ensure schema
	repo := portfolio.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// 5. Connect to Redis (optional)
	redisClient, err := connectRedis(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// 6. Create external API clients and market services
	market := buildMarketServices(cfg, log, redisClient)

	// 7. Create rebalance engine
	engine, err := buildEngine(cfg.PolicyFile, log)
	if err != nil {
		return err
	}
	// 8. Create services
	portfolioService := portfolio.NewService(repo, engine, market.rates, log)

	// 9. Create handlers
	h := api.Handlers{
		Stock:        handlers.NewStockHandler(market.quotes, log),
		ExchangeRate: handlers.NewExchangeRateHandler(market.rates),
		Rebalance:    handlers.NewRebalanceHandler(engine, market.rates, log),
		Portfolio:    handlers.NewPortfolioHandler(portfolioService, log),
	}

	// 10. Create router
	router := api.NewRouter(h, api.RouterOptions{
		CORSOrigins:    cfg.CORSOrigins,
		MetricsEnabled: cfg.MetricsEnabled,
	}, log)

	// 11. Start scheduler
	sched := scheduler.New(log)
	for _, job := range []scheduler.Job{
		jobs.NewFXRefreshJob(market.rates, log.WithComponent("fx")),
		jobs.NewQuoteCacheCleanupJob(market.quotes, log.WithComponent("quote")),
	} {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// 12. Create server
	server := api.New(cfg, log, router)

	// 13. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
