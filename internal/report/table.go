package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

const ruleWidth = 78

// WriteAnalysis prints allocation, recommendations and summary as fixed-width tables
func WriteAnalysis(w io.Writer, a contracts.Analysis, rate *contracts.ExchangeRate) error {
	p := &printer{w: w}

	if rate != nil {
		p.printf("환율: %s (%s)\n\n", FormatExchangeRate(*rate), rate.Source)
	}

	p.printf("📊 섹터별 비중\n")
	p.rule()
	p.printf("%-12s %18s %10s %10s %10s\n", "섹터", "평가금액", "현재", "목표", "차이")
	p.rule()
	for _, alloc := range a.Allocations {
		p.printf("%-12s %18s %10s %10s %10s\n",
			alloc.SectorName,
			KRW(alloc.Value),
			Percent(alloc.Percentage),
			Percent(alloc.TargetPercentage),
			SignedPercent(alloc.Percentage-alloc.TargetPercentage),
		)
	}
	p.printf("\n")

	p.printf("⚖️  리밸런싱 제안\n")
	p.rule()
	p.printf("%-12s %-6s %18s %10s\n", "섹터", "액션", "금액", "차이")
	p.rule()
	for _, rec := range a.Recommendations {
		p.printf("%-12s %-6s %18s %10s\n",
			rec.SectorName,
			strings.ToUpper(string(rec.Action)),
			SignedKRW(rec.RecommendedAmount),
			SignedPercent(rec.CurrentWeight-rec.TargetWeight),
		)
	}
	p.printf("\n")

	s := a.Summary
	p.printf("💰 요약\n")
	p.rule()
	p.printf("%-16s %18s\n", "총 평가금액", KRW(s.TotalValue))
	p.printf("%-16s %18s\n", "총 투자금액", KRW(s.TotalValue-s.TotalReturn))
	p.printf("%-16s %18s (%s)\n", "총 수익", SignedKRW(s.TotalReturn), SignedPercent(s.TotalReturnPercent))

	return p.err
}

// printer remembers the first write error so callers check once
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) rule() {
	p.printf("%s\n", strings.Repeat("─", ruleWidth))
}
