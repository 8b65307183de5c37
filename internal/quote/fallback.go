package quote

import (
	"fmt"
	"strings"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

// 조회 실패 시 사용하는 국내 ETF 이름
var koreanETFNames = map[string]string{
	"069500": "KODEX 200",
	"114800": "KODEX 인버스",
	"251350": "KODEX 코스닥150",
	"102110": "TIGER 200",
	"148070": "KOSEF 국고채10년",
	"233740": "KODEX 코스닥150 레버리지",
	"251340": "KODEX 코스닥150선물인버스",
	"122630": "KODEX 레버리지",
	"279530": "KODEX 3X 인버스",
	"308620": "KODEX 미국달러선물",
	"182490": "TIGER 200 IT",
	"091180": "KODEX 은행",
	"091170": "KODEX 은행 인버스",
	"229200": "KODEX 코스닥150 IT",
	"152100": "TIGER 200 건설",
	"169950": "KODEX 200 선물인버스2X",
}

type knownETF struct {
	name     string
	exchange string
}

// 조회 실패 시 사용하는 해외 대표 ETF
var famousETFs = map[string]knownETF{
	"SPY":  {"SPDR S&P 500 ETF Trust", "ARCA"},
	"QQQ":  {"Invesco QQQ Trust", "NASDAQ"},
	"VTI":  {"Vanguard Total Stock Market ETF", "ARCA"},
	"VOO":  {"Vanguard S&P 500 ETF", "ARCA"},
	"IVV":  {"iShares Core S&P 500 ETF", "ARCA"},
	"VEA":  {"Vanguard FTSE Developed Markets ETF", "ARCA"},
	"VWO":  {"Vanguard FTSE Emerging Markets ETF", "ARCA"},
	"BND":  {"Vanguard Total Bond Market ETF", "NASDAQ"},
	"AGG":  {"iShares Core U.S. Aggregate Bond ETF", "ARCA"},
	"GLD":  {"SPDR Gold Shares", "ARCA"},
	"SCHD": {"Schwab US Dividend Equity ETF", "ARCA"},
	"VYM":  {"Vanguard High Dividend Yield ETF", "ARCA"},
	"VXUS": {"Vanguard Total International Stock ETF", "NASDAQ"},
	"IEFA": {"iShares Core MSCI EAFE IMI Index ETF", "ARCA"},
	"IEMG": {"iShares Core MSCI Emerging Markets IMI Index ETF", "ARCA"},
}

// exchangeCountries maps exchange codes to ISO country codes; anything else is US
var exchangeCountries = map[string]string{
	"LSE": "GB", "LON": "GB",
	"TSE": "JP", "TYO": "JP", "JPX": "JP",
	"ETR": "DE", "FRA": "DE", "GER": "DE",
	"EPA": "FR", "PAR": "FR",
	"AMS": "NL",
	"SWX": "CH", "EBS": "CH",
	"TSX": "CA", "TOR": "CA",
	"ASX": "AU",
	"HKG": "HK",
	"SHA": "CN", "SHE": "CN", "SHH": "CN", "SHZ": "CN",
}

// CountryForExchange returns the country of an exchange code (default US)
func CountryForExchange(exchange string) string {
	if country, ok := exchangeCountries[strings.ToUpper(exchange)]; ok {
		return country
	}
	return "US"
}

// koreanFallback returns the degraded result for a Korean symbol.
// known is false when the symbol is not in the table.
func koreanFallback(symbol string) (*contracts.StockInfo, bool) {
	name, known := koreanETFNames[symbol]
	if !known {
		name = fmt.Sprintf("종목 %s", symbol)
	}

	return &contracts.StockInfo{
		Symbol:   symbol,
		Name:     name,
		Exchange: "KRX",
		Country:  "KR",
		Currency: contracts.CurrencyKRW,
	}, known
}

// foreignFallback returns the degraded result for a foreign symbol
func foreignFallback(symbol string) (*contracts.StockInfo, bool) {
	if etf, ok := famousETFs[symbol]; ok {
		return &contracts.StockInfo{
			Symbol:   symbol,
			Name:     etf.name,
			Exchange: etf.exchange,
			Country:  "US",
			Currency: contracts.CurrencyUSD,
		}, true
	}

	return &contracts.StockInfo{
		Symbol:   symbol,
		Name:     fmt.Sprintf("%s ETF", symbol),
		Exchange: "US",
		Country:  "US",
		Currency: contracts.CurrencyUSD,
	}, false
}
