package report

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

// Money formats an amount in the given currency ("₩1,300,000", "$1,234.56")
// ⭐ SSOT: 금액 표시는 이 함수에서만
func Money(amount float64, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)

	// 등록되지 않은 통화는 템플릿이 없음
	if cur.Template == "" {
		f := money.NewFormatter(cur.Fraction, ".", ",", "", "1")
		return f.Format(minor.IntPart()) + " " + currency
	}
	return cur.Formatter().Format(minor.IntPart())
}

// KRW formats an amount in Korean won
func KRW(amount float64) string {
	return Money(amount, money.KRW)
}

// SignedKRW formats a won amount with an explicit sign, zero as "-"
func SignedKRW(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	switch {
	case d.IsZero():
		return "-"
	case d.IsPositive():
		return "+" + KRW(amount)
	default:
		return KRW(amount)
	}
}

// Percent formats a percentage with one decimal ("40.0%")
func Percent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}

// SignedPercent formats a percentage difference with an explicit sign
func SignedPercent(p float64) string {
	d := decimal.NewFromFloat(p).Round(1)
	if d.IsPositive() {
		return "+" + d.StringFixed(1) + "%"
	}
	return d.StringFixed(1) + "%"
}

// FormatExchangeRate renders "1 USD = 1,300 KRW"
// 정수 환율은 소수점 없이, 아니면 소수 둘째 자리까지
func FormatExchangeRate(rate contracts.ExchangeRate) string {
	d := decimal.NewFromFloat(rate.Rate).Round(2)

	fraction := 2
	if d.Equal(d.Truncate(0)) {
		fraction = 0
	}

	f := money.NewFormatter(fraction, ".", ",", "", "1")
	return fmt.Sprintf("1 %s = %s %s", rate.Base, f.Format(d.Shift(int32(fraction)).IntPart()), rate.Quote)
}
