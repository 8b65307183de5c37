package contracts

import "time"

// StockInfo is the result of a symbol lookup
type StockInfo struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Exchange     string   `json:"exchange"`
	Country      string   `json:"country"`
	CurrentPrice *float64 `json:"current_price"` // 조회 실패 시 nil
	Currency     string   `json:"currency"`
}

// HasPrice reports whether a live price is available
func (s *StockInfo) HasPrice() bool {
	return s.CurrentPrice != nil
}

// RateSource tells where an exchange rate came from
type RateSource string

const (
	RateSourceAPI      RateSource = "api"
	RateSourceCache    RateSource = "cache"
	RateSourceFallback RateSource = "fallback"
)

// ExchangeRate is a resolved currency rate
type ExchangeRate struct {
	Base      string     `json:"base"`
	Quote     string     `json:"quote"`
	Rate      float64    `json:"rate"`
	Source    RateSource `json:"source"`
	FetchedAt time.Time  `json:"fetched_at"`
}
