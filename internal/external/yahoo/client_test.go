package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/etf-rebalancer/pkg/httputil"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

func newTestClient(url string) *Client {
	return NewClient(httputil.New(logger.Nop()).DisableRetry(), url, 100, logger.Nop())
}

func TestFetchChartMeta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/SPY", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart":{"result":[{"meta":{
			"symbol":"SPY","currency":"USD","exchangeName":"PCX","fullExchangeName":"NYSEArca",
			"instrumentType":"ETF","regularMarketPrice":580.12,"chartPreviousClose":575.3,
			"longName":"SPDR S&P 500 ETF Trust","shortName":"SPDR S&P 500"}}],"error":null}}`))
	}))
	defer server.Close()

	meta, err := newTestClient(server.URL).FetchChartMeta(context.Background(), "SPY")
	require.NoError(t, err)

	assert.Equal(t, "SPDR S&P 500 ETF Trust", meta.Name())
	assert.Equal(t, "PCX", meta.ExchangeName)
	assert.Equal(t, "USD", meta.Currency)
	require.NotNil(t, meta.Price())
	assert.Equal(t, 580.12, *meta.Price())
}

func TestFetchChartMeta_NotFound404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchChartMeta(context.Background(), "ZZZZZ")
	assert.True(t, errors.Is(err, ErrSymbolNotFound))
}

func TestFetchChartMeta_ChartErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchChartMeta(context.Background(), "ZZZZZ")
	assert.True(t, errors.Is(err, ErrSymbolNotFound))
}

func TestFetchChartMeta_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchChartMeta(context.Background(), "SPY")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSymbolNotFound))
}

func TestChartMeta_PriceFallbacks(t *testing.T) {
	prev := 99.5
	zero := 0.0
	meta := &ChartMeta{RegularMarketPrice: &zero, ChartPreviousClose: &prev, ShortName: "Short"}

	require.NotNil(t, meta.Price())
	assert.Equal(t, 99.5, *meta.Price())
	assert.Equal(t, "Short", meta.Name())

	assert.Nil(t, (&ChartMeta{}).Price())
}
