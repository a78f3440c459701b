package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"marketproxy/internal/httpx"
	"marketproxy/internal/market"
)

const defaultBaseURL = "https://api.coingecko.com"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=coingecko_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the CoinGecko API. Every request goes through the
// single-retry 429 policy: one retry after the advertised Retry-After delay,
// a second 429 surfaces as an upstream error.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// retryAfterDefault is the backoff used when a 429 carries no
	// Retry-After header.
	retryAfterDefault time.Duration
	// sleep performs backoff and stagger waits; replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// ClientOption is a configuration option for the CoinGecko client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithRetryAfterDefault sets the backoff used when a 429 response has no
// Retry-After header.
func WithRetryAfterDefault(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.retryAfterDefault = d
		}
	}
}

// NewClient creates a new CoinGecko API client.
func NewClient(options ...ClientOption) (*Client, error) {
	var client = &Client{
		baseURL:           defaultBaseURL,
		httpClient:        http.DefaultClient,
		header:            http.Header{},
		retryAfterDefault: 60 * time.Second,
		sleep:             httpx.SleepCtx,
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// MarketChartResponse is the market_chart endpoint payload: [ts_ms, value]
// pairs for prices and total volumes.
type MarketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// SimplePrice is one coin's entry in the simple/price endpoint payload.
type SimplePrice struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USDMarketCap float64 `json:"usd_market_cap"`
}

// MarketChart fetches the price/volume history for a coin over the last
// `days` days.
func (c *Client) MarketChart(ctx context.Context, id string, days int) (*MarketChartResponse, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", fmt.Sprintf("%d", days))

	var out MarketChartResponse
	path := fmt.Sprintf("/api/v3/coins/%s/market_chart", url.PathEscape(id))
	if err := c.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimplePrices fetches the current price snapshot for a coin.
func (c *Client) SimplePrices(ctx context.Context, id string) (map[string]SimplePrice, error) {
	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	q.Set("include_24hr_vol", "true")
	q.Set("include_market_cap", "true")

	out := map[string]SimplePrice{}
	if err := c.getJSON(ctx, "/api/v3/simple/price", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	issue := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}
		for key, values := range c.header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
		return c.httpClient.Do(req)
	}

	r := &retrier{defaultBackoff: c.retryAfterDefault, sleep: c.sleep}
	resp, err := r.do(ctx, issue)
	if err != nil {
		return fmt.Errorf("coingecko %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2<<10))
		return &market.UpstreamError{Provider: "coingecko", Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("coingecko %s decode: %w", path, err)
	}
	return nil
}
