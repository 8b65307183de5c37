package naver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrItemNotFound means Naver served an item page without a company
// (종목코드가 존재하지 않음)
var ErrItemNotFound = errors.New("naver: item not found")

// ItemQuote is the name and last price of a KRX listing
type ItemQuote struct {
	Code     string
	Name     string
	Market   string   // KOSPI, KOSDAQ, KRX
	Price    *float64 // 가격 파싱 실패 시 nil
	Currency string
}

// FetchItem fetches the item main page and extracts name, market and price
// ⭐ SSOT: 국내 종목 시세 조회는 이 함수에서만
func (c *Client) FetchItem(ctx context.Context, code string) (*ItemQuote, error) {
	params := url.Values{}
	params.Set("code", code)

	body, err := c.fetchHTML(ctx, "/item/main.naver", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	quote, err := parseItemPage(body)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", code, err)
	}
	quote.Code = code

	c.logger.WithFields(map[string]interface{}{
		"code":   code,
		"name":   quote.Name,
		"market": quote.Market,
	}).Debug("Fetched Naver item")

	return quote, nil
}

// parseItemPage extracts the quote from item/main.naver HTML
func parseItemPage(r io.Reader) (*ItemQuote, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	name := strings.TrimSpace(doc.Find("div.wrap_company h2").First().Text())
	if name == "" {
		return nil, ErrItemNotFound
	}

	quote := &ItemQuote{
		Name:     name,
		Market:   "KRX",
		Currency: "KRW",
	}

	// 시장 구분 이미지: <img class="kospi"> / <img class="kosdaq">
	desc := doc.Find("div.wrap_company div.description img")
	switch {
	case desc.HasClass("kospi"):
		quote.Market = "KOSPI"
	case desc.HasClass("kosdaq"):
		quote.Market = "KOSDAQ"
	}

	priceText := doc.Find("p.no_today span.blind").First().Text()
	if price, ok := parsePrice(priceText); ok {
		quote.Price = &price
	}

	return quote, nil
}

// parsePrice parses "35,425" style numbers
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
