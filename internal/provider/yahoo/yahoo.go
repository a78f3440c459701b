// Package yahoo normalizes Yahoo Finance chart responses into the canonical
// market types. One upstream call per fetch.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"marketproxy/internal/httpx"
	"marketproxy/internal/market"
	"marketproxy/internal/market/series"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

type Config struct {
	Name    string
	BaseURL string
	// SymbolMap rewrites internal symbols to Yahoo tickers.
	SymbolMap map[string]string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "yahoo"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// rangeParam maps a time range to the provider's (range, interval) query
// parameters.
type rangeParam struct {
	rng      string
	interval string
}

var rangeParams = map[market.TimeRange]rangeParam{
	market.Range1D: {"1d", "5m"},
	market.Range5D: {"5d", "15m"},
	market.Range1M: {"1mo", "1d"},
	market.Range3M: {"3mo", "1d"},
	market.Range6M: {"6mo", "1d"},
	market.Range1Y: {"1y", "1wk"},
	market.Range5Y: {"5y", "1mo"},
}

// chartResponse is the chart API shape: parallel timestamp/OHLCV arrays plus
// a metadata block with the current and previous price fields. Non-trading
// bars carry null closes.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
			Meta struct {
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				PreviousClose        float64 `json:"previousClose"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				RegularMarketVolume  float64 `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *Provider) Fetch(ctx context.Context, symbol string, rng market.TimeRange) (*market.Data, error) {
	rc, ok := rangeParams[rng]
	if !ok {
		return nil, fmt.Errorf("%s: unsupported range %q", p.cfg.Name, rng)
	}
	if mapped := p.cfg.SymbolMap[symbol]; mapped != "" {
		symbol = mapped
	}

	q := url.Values{}
	q.Set("range", rc.rng)
	q.Set("interval", rc.interval)
	q.Set("includePrePost", "false")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w", p.cfg.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2<<10))
		return nil, &market.UpstreamError{Provider: p.cfg.Name, Status: resp.StatusCode}
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("%s decode: %w", p.cfg.Name, err)
	}
	if chart.Chart.Error != nil {
		return nil, &market.DataError{Provider: p.cfg.Name, Reason: chart.Chart.Error.Description}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &market.DataError{Provider: p.cfg.Name, Reason: "empty result"}
	}
	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, &market.DataError{Provider: p.cfg.Name, Reason: "no timestamps"}
	}
	bars := result.Indicators.Quote[0]

	b := series.NewBuilder(rng.Intraday())
	barVolume := 0.0
	for i, ts := range result.Timestamp {
		// Null closes mark non-trading bars; they contribute nothing.
		close := at(bars.Close, i)
		if close == nil {
			continue
		}
		vol := 0.0
		if v := at(bars.Volume, i); v != nil {
			vol = *v
		}
		barVolume += vol
		b.Add(series.Sample{
			Unix:   ts,
			Close:  *close,
			Open:   at(bars.Open, i),
			High:   at(bars.High, i),
			Low:    at(bars.Low, i),
			Volume: vol,
		})
	}

	meta := result.Meta
	price := meta.RegularMarketPrice
	prevClose := meta.PreviousClose
	if prevClose == 0 {
		prevClose = meta.ChartPreviousClose
	}
	change := price - prevClose
	changePercent := 0.0
	if prevClose != 0 {
		changePercent = change / prevClose * 100
	}
	high := meta.RegularMarketDayHigh
	if high == 0 {
		high = price
	}
	low := meta.RegularMarketDayLow
	if low == 0 {
		low = price
	}
	volume := meta.RegularMarketVolume
	if volume == 0 {
		volume = barVolume
	}

	return &market.Data{
		Quote: market.Quote{
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
			High24h:       high,
			Low24h:        low,
			Volume:        volume,
			PreviousClose: prevClose,
		},
		Series: b.Build(),
	}, nil
}

// at guards the parallel arrays against ragged lengths.
func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}
