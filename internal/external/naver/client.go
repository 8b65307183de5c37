package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/wonny/etf-rebalancer/pkg/httputil"
	"github.com/wonny/etf-rebalancer/pkg/logger"
)

// DefaultBaseURL is the Naver Finance web root
const DefaultBaseURL = "https://finance.naver.com"

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		httpClient: httpClient.Clone().WithHeader("Referer", baseURL+"/"),
		logger:     log.WithComponent("naver"),
		baseURL:    baseURL,
	}
}

// fetchHTML fetches a page and returns it decoded as UTF-8.
// 네이버 금융 페이지는 EUC-KR이므로 Content-Type 기준으로 디코딩
func (c *Client) fetchHTML(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &httputil.StatusError{URL: fullURL, StatusCode: resp.StatusCode}
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return &decodedBody{Reader: reader, closer: resp.Body}, nil
}

type decodedBody struct {
	io.Reader
	closer io.Closer
}

func (b *decodedBody) Close() error {
	return b.closer.Close()
}
