package contracts

import "context"

// RateProvider resolves the USD→KRW rate
// ⭐ SSOT: 환율 조회 인터페이스 (실패 시에도 항상 사용 가능한 값 반환)
type RateProvider interface {
	USDToKRW(ctx context.Context) ExchangeRate
}

// QuoteProvider resolves symbol information
// ⭐ SSOT: 종목 조회 인터페이스
type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (*StockInfo, error)
}
