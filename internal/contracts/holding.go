package contracts

import (
	"math"
	"strings"
)

// Currency codes understood by the converter
const (
	CurrencyKRW = "KRW"
	CurrencyUSD = "USD"
)

// Holding is one ETF position as entered by the user
// ⭐ 엔진에 전달된 이후에는 수정하지 않음
type Holding struct {
	ID            string  `json:"id,omitempty" yaml:"id,omitempty"`
	Symbol        string  `json:"symbol" yaml:"symbol"`
	Name          string  `json:"name" yaml:"name"`
	Shares        float64 `json:"shares" yaml:"shares"`
	CurrentPrice  float64 `json:"currentPrice" yaml:"current_price"`
	PurchasePrice float64 `json:"purchasePrice" yaml:"purchase_price"`
	PurchaseDate  string  `json:"purchaseDate,omitempty" yaml:"purchase_date,omitempty"` // YYYY-MM-DD
	Sector        Sector  `json:"sector" yaml:"sector"`
	Currency      string  `json:"currency,omitempty" yaml:"currency,omitempty"` // 비어 있으면 USD
}

// CurrencyCode returns the upper-cased currency, USD when empty
func (h Holding) CurrencyCode() string {
	c := strings.ToUpper(strings.TrimSpace(h.Currency))
	if c == "" {
		return CurrencyUSD
	}
	return c
}

// MarketValue returns shares × currentPrice in the holding's own currency
func (h Holding) MarketValue() float64 {
	return h.Shares * h.CurrentPrice
}

// CostBasis returns shares × purchasePrice in the holding's own currency
func (h Holding) CostBasis() float64 {
	return h.Shares * h.PurchasePrice
}

// IsValid reports whether the holding can be fed to the engine:
// known sector, non-empty symbol, positive finite shares and prices.
// 누락된 숫자 필드는 0으로 디코딩되므로 0도 부분 입력으로 취급
func (h Holding) IsValid() bool {
	if strings.TrimSpace(h.Symbol) == "" || !h.Sector.IsValid() {
		return false
	}
	for _, v := range []float64{h.Shares, h.CurrentPrice, h.PurchasePrice} {
		if !IsPositiveAmount(v) {
			return false
		}
	}
	return true
}

// IsPositiveAmount reports whether v is a finite number greater than zero
func IsPositiveAmount(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FilterValid returns the valid holdings, preserving order
func FilterValid(holdings []Holding) []Holding {
	out := make([]Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.IsValid() {
			out = append(out, h)
		}
	}
	return out
}
