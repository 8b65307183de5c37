package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wonny/etf-rebalancer/pkg/httputil"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// DefaultBaseURL is the Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrSymbolNotFound means Yahoo answered that the symbol does not exist
var ErrSymbolNotFound = errors.New("yahoo: symbol not found")

// Client calls the Yahoo Finance chart API
// ⭐ SSOT: 해외 종목 시세 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a Yahoo client limited to rps requests per second
func NewClient(httpClient *httputil.Client, baseURL string, rps int, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 5
	}

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		logger:     log.WithComponent("yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ChartMeta is the meta block of /v8/finance/chart/{symbol}
type ChartMeta struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	ExchangeName       string   `json:"exchangeName"`
	FullExchangeName   string   `json:"fullExchangeName"`
	InstrumentType     string   `json:"instrumentType"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	PreviousClose      *float64 `json:"previousClose"`
	LongName           string   `json:"longName"`
	ShortName          string   `json:"shortName"`
}

// Name returns longName, falling back to shortName
func (m *ChartMeta) Name() string {
	if m.LongName != "" {
		return m.LongName
	}
	return m.ShortName
}

// Price returns the first available of regular market price, previous close
// and chart previous close
func (m *ChartMeta) Price() *float64 {
	for _, p := range []*float64{m.RegularMarketPrice, m.PreviousClose, m.ChartPreviousClose} {
		if p != nil && *p > 0 {
			v := *p
			return &v
		}
	}
	return nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta ChartMeta `json:"meta"`
		} `json:"result"`
		Error *chartError `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchChartMeta returns quote metadata for a symbol
func (c *Client) FetchChartMeta(ctx context.Context, symbol string) (*ChartMeta, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1d")
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &httputil.StatusError{URL: fullURL, StatusCode: resp.StatusCode}
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}

	if chart.Chart.Error != nil {
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			return nil, ErrSymbolNotFound
		}
		return nil, fmt.Errorf("yahoo chart error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}

	if len(chart.Chart.Result) == 0 {
		return nil, ErrSymbolNotFound
	}

	meta := chart.Chart.Result[0].Meta
	c.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"exchange": meta.ExchangeName,
		"currency": meta.Currency,
	}).Debug("Fetched Yahoo chart meta")

	return &meta, nil
}
