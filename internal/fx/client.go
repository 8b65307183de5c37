package fx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/etf-rebalancer/pkg/httputil"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// DefaultBaseURL is the exchangerate-api.com v4 endpoint
const DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"

// ErrRateMissing is returned when the response has no usable KRW rate
var ErrRateMissing = errors.New("KRW rate missing from response")

// latestResponse is the subset of /v4/latest/{BASE} we read
type latestResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Client fetches exchange rates from exchangerate-api.com
// ⭐ SSOT: 환율 API 호출은 이 클라이언트를 통해서만
type Client struct {
	httpClient *httputil.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	logger     *logger.Logger
}

// NewClient creates a new exchange rate client wrapped in a circuit breaker
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	st := gobreaker.Settings{
		Name:        "ExchangeRateAPI",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		breaker:    gobreaker.NewCircuitBreaker(st),
		logger:     log,
	}
}

// FetchRate fetches the from→to rate through the circuit breaker
func (c *Client) FetchRate(ctx context.Context, from, to string) (float64, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.ToUpper(from))

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var resp latestResponse
		if err := c.httpClient.GetJSON(ctx, url, &resp); err != nil {
			return nil, err
		}

		rate, ok := resp.Rates[strings.ToUpper(to)]
		if !ok || rate <= 0 {
			return nil, ErrRateMissing
		}
		return rate, nil
	})
	if err != nil {
		return 0, fmt.Errorf("fetch %s/%s rate: %w", from, to, err)
	}

	return result.(float64), nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}
