package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"marketproxy/internal/market"
	"marketproxy/internal/provider/cache"
	"marketproxy/internal/proxy"
)

type countingProvider struct {
	name  string
	calls atomic.Int64
}

func (c *countingProvider) Name() string { return c.name }

func (c *countingProvider) Fetch(ctx context.Context, symbol string, rng market.TimeRange) (*market.Data, error) {
	c.calls.Add(1)
	return &market.Data{}, nil
}

func TestWarm_FillsCacheThroughOrchestrator(t *testing.T) {
	eq := &countingProvider{name: "yahoo"}
	cg := &countingProvider{name: "coingecko"}
	o := &proxy.Orchestrator{Cache: cache.New(10), Equities: eq, Crypto: cg}

	r := &Refresher{
		Orchestrator: o,
		Range:        market.Range1M,
	}
	r.warm([]market.Asset{
		{ID: "aapl", YahooSymbol: "AAPL"},
		{ID: "btc", Category: market.CategoryCrypto, CoinGeckoID: "bitcoin"},
	})

	if eq.calls.Load() != 1 || cg.calls.Load() != 1 {
		t.Fatalf("want one call per asset, got yahoo=%d coingecko=%d", eq.calls.Load(), cg.calls.Load())
	}
	if o.Cache.Size() != 2 {
		t.Fatalf("warm must populate the cache, got %d entries", o.Cache.Size())
	}
}

func TestStartStop(t *testing.T) {
	eq := &countingProvider{name: "yahoo"}
	o := &proxy.Orchestrator{Cache: cache.New(10), Equities: eq}

	r := &Refresher{
		Orchestrator: o,
		Assets:       []market.Asset{{ID: "aapl", YahooSymbol: "AAPL"}},
		CryptoEvery:  time.Hour,
		GeneralEvery: time.Hour,
	}
	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Hour-long cadences never fire during the test; Stop must still return.
	r.Stop()
}
