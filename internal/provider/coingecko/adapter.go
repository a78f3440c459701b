// Package coingecko normalizes CoinGecko responses into the canonical market
// types. Each fetch issues two upstream calls, history then current price,
// separated by a fixed stagger so both calls do not land in the same
// rate-limit window.
package coingecko

import (
	"context"
	"math"
	"time"

	"marketproxy/internal/market"
	"marketproxy/internal/market/series"
)

const (
	// DefaultStagger is the fixed delay between the chart and price calls.
	DefaultStagger = 1500 * time.Millisecond
	// DefaultMaxDays is the free-tier lookback cap in days.
	DefaultMaxDays = 365
)

type Config struct {
	Name string
	// Stagger overrides the inter-call delay; DefaultStagger when zero.
	Stagger time.Duration
	// MaxDays caps the lookback window; DefaultMaxDays when zero. Longer
	// requested windows are clamped, not rejected.
	MaxDays int
}

type Provider struct {
	cfg    Config
	client *Client
}

func New(cfg Config, client *Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "coingecko"
	}
	if cfg.Stagger <= 0 {
		cfg.Stagger = DefaultStagger
	}
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = DefaultMaxDays
	}
	return &Provider{cfg: cfg, client: client}
}

func (p *Provider) Name() string { return p.cfg.Name }

var daysByRange = map[market.TimeRange]int{
	market.Range1D: 1,
	market.Range5D: 5,
	market.Range1M: 30,
	market.Range3M: 90,
	market.Range6M: 180,
	market.Range1Y: 365,
	market.Range5Y: 1825,
}

// Days returns the lookback window for a range after the free-tier clamp.
func (p *Provider) Days(rng market.TimeRange) int {
	days, ok := daysByRange[rng]
	if !ok {
		days = 30
	}
	if days > p.cfg.MaxDays {
		days = p.cfg.MaxDays
	}
	return days
}

func (p *Provider) Fetch(ctx context.Context, id string, rng market.TimeRange) (*market.Data, error) {
	chart, err := p.client.MarketChart(ctx, id, p.Days(rng))
	if err != nil {
		return nil, err
	}
	if len(chart.Prices) == 0 {
		return nil, &market.DataError{Provider: p.cfg.Name, Reason: "empty price history"}
	}

	// Both calls count against the same quota window; the stagger keeps the
	// second call out of it.
	if err := p.client.sleep(ctx, p.cfg.Stagger); err != nil {
		return nil, err
	}

	prices, err := p.client.SimplePrices(ctx, id)
	if err != nil {
		return nil, err
	}
	sp, ok := prices[id]
	if !ok {
		return nil, &market.DataError{Provider: p.cfg.Name, Reason: "coin missing from price response"}
	}

	b := series.NewBuilder(rng.Intraday())
	for _, pt := range chart.Prices {
		// Timestamps arrive in milliseconds; only a scalar price per
		// sample, so bars are degenerate.
		b.Add(series.Sample{Unix: int64(pt[0]) / 1000, Close: pt[1]})
	}
	vols := make([]series.VolumeSample, 0, len(chart.TotalVolumes))
	for _, v := range chart.TotalVolumes {
		vols = append(vols, series.VolumeSample{Unix: int64(v[0]) / 1000, Value: v[1]})
	}
	b.ApplyVolumes(vols)

	price := sp.USD
	changePercent := sp.USD24hChange
	// The provider never reports the previous close directly; derive it from
	// the 24h change.
	prevClose := price / (1 + changePercent/100)
	change := price - prevClose
	// Free tier has no true 24h high/low; estimate from the change magnitude.
	spread := math.Abs(changePercent) / 100
	marketCap := sp.USDMarketCap

	return &market.Data{
		Quote: market.Quote{
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
			High24h:       price * (1 + spread),
			Low24h:        price * (1 - spread),
			Volume:        sp.USD24hVol,
			PreviousClose: prevClose,
			MarketCap:     &marketCap,
		},
		Series: b.Build(),
	}, nil
}
