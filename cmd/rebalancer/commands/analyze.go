package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/fx"
	"github.com/wonny/etf-rebalancer/internal/report"
	"github.com/wonny/etf-rebalancer/pkg/redis"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "보유 종목 파일로 리밸런싱 분석",
	Long: `JSON 또는 YAML 파일의 보유 종목으로 섹터 비중과 리밸런싱 제안을 출력합니다.

파일 형식 (둘 다 허용):
  {"holdings": [{"symbol": "QQQ", "shares": 10, "currentPrice": 480, ...}]}
  [{"symbol": "QQQ", ...}]

--rate를 지정하면 환율 API를 호출하지 않고 해당 USD/KRW 환율을 사용합니다.

Example:
  go run ./cmd/rebalancer analyze --file holdings.json
  go run ./cmd/rebalancer analyze --file holdings.yaml --rate 1350
  go run ./cmd/rebalancer analyze --file holdings.yaml --policy policy.yaml`,
	RunE: runAnalyze,
}

var (
	analyzeFile   string
	analyzeRate   float64
	analyzePolicy string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "보유 종목 파일 (.json, .yaml, .yml)")
	analyzeCmd.Flags().Float64Var(&analyzeRate, "rate", 0, "고정 USD/KRW 환율 (0이면 실시간 조회)")
	analyzeCmd.Flags().StringVar(&analyzePolicy, "policy", "", "섹터 목표 비중 정책 파일 (기본값: REBALANCE_POLICY_FILE)")
	_ = analyzeCmd.MarkFlagRequired("file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	log := newCommandLogger(cfg)

	holdings, err := loadHoldingsFile(analyzeFile)
	if err != nil {
		return err
	}

	valid := contracts.FilterValid(holdings)
	if skipped := len(holdings) - len(valid); skipped > 0 {
		PrintWarning(fmt.Sprintf("유효하지 않은 보유 종목 %d개를 제외했습니다", skipped))
	}

	policyPath := analyzePolicy
	if policyPath == "" {
		policyPath = cfg.PolicyFile
	}
	engine, err := buildEngine(policyPath, log)
	if err != nil {
		return err
	}

	// --rate가 있으면 고정 환율, 없으면 실시간 (Redis 미사용)
	var rates contracts.RateProvider
	if analyzeRate > 0 {
		rates = fx.Static(analyzeRate)
	} else {
		market := buildMarketServices(cfg, log, redis.Disabled())
		rates = market.rates
	}

	rate := rates.USDToKRW(ctx)
	analysis := engine.Analyze(ctx, valid, fx.NewConverter(fx.Static(rate.Rate), log))

	PrintHeader(fmt.Sprintf("리밸런싱 분석: %s (%d 종목)", filepath.Base(analyzeFile), len(valid)))
	if err := report.WriteAnalysis(os.Stdout, analysis, &rate); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	PrintDoubleSeparator()

	return nil
}

// holdingsFile is the object form of an input file
type holdingsFile struct {
	Holdings []contracts.Holding `json:"holdings" yaml:"holdings"`
}

// loadHoldingsFile reads holdings from a JSON or YAML file
func loadHoldingsFile(path string) ([]contracts.Holding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holdings file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseHoldingsJSON(data)
	case ".yaml", ".yml":
		return parseHoldingsYAML(data)
	default:
		return nil, fmt.Errorf("unsupported holdings file extension %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
}

func parseHoldingsJSON(data []byte) ([]contracts.Holding, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []contracts.Holding
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("parse holdings json: %w", err)
		}
		return list, nil
	}

	var file holdingsFile
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, fmt.Errorf("parse holdings json: %w", err)
	}
	return file.Holdings, nil
}

func parseHoldingsYAML(data []byte) ([]contracts.Holding, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse holdings yaml: %w", err)
	}

	// 빈 문서
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var list []contracts.Holding
		if err := node.Content[0].Decode(&list); err != nil {
			return nil, fmt.Errorf("parse holdings yaml: %w", err)
		}
		return list, nil
	}

	var file holdingsFile
	if err := node.Content[0].Decode(&file); err != nil {
		return nil, fmt.Errorf("parse holdings yaml: %w", err)
	}
	return file.Holdings, nil
}
