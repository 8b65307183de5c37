package quote

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidSymbol is returned for symbols that match neither format
var ErrInvalidSymbol = errors.New("invalid symbol")

// Market tells which upstream serves a symbol
type Market string

const (
	MarketKorea   Market = "KR"
	MarketForeign Market = "FOREIGN"
)

var (
	koreanSymbolRe  = regexp.MustCompile(`^\d{6}$`)
	foreignSymbolRe = regexp.MustCompile(`^[A-Z]+[A-Z0-9]*$`)
)

// ValidateSymbol trims and upper-cases raw and classifies it.
// 국내: 6자리 숫자, 해외: 영문으로 시작하는 영숫자
func ValidateSymbol(raw string) (string, Market, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))

	switch {
	case koreanSymbolRe.MatchString(symbol):
		return symbol, MarketKorea, nil
	case foreignSymbolRe.MatchString(symbol):
		return symbol, MarketForeign, nil
	default:
		return "", "", ErrInvalidSymbol
	}
}
