// Package proxy decides cache-hit vs upstream-fetch for asset requests and
// composes the adapters with the response cache.
package proxy

import (
	"context"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"marketproxy/internal/market"
	"marketproxy/internal/provider/cache"
)

// Default TTLs: crypto moves fast, so its entries live half as long.
const (
	DefaultEquitiesTTL = 60 * time.Second
	DefaultCryptoTTL   = 30 * time.Second
)

// Orchestrator routes each asset to its adapter by configured identifier and
// shields the upstreams behind the cache. Adapter failures are propagated
// unchanged and never cached.
type Orchestrator struct {
	Cache       *cache.Cache
	Equities    market.Provider
	Crypto      market.Provider
	EquitiesTTL time.Duration
	CryptoTTL   time.Duration
	Log         logrus.FieldLogger
}

// CacheKey builds the deterministic key "{provider}:{path}?{sorted-query}".
// url.Values.Encode sorts by key, so the key is stable regardless of the
// order parameters were supplied.
func CacheKey(provider, path string, params url.Values) string {
	return provider + ":" + path + "?" + params.Encode()
}

// Fetch returns the market data for one asset and range, from cache when
// fresh, otherwise from the asset's provider. Concurrent fetches for the same
// key may both reach upstream; the last write wins in the cache. That is
// accepted: there is no single-flight guarantee.
func (o *Orchestrator) Fetch(ctx context.Context, asset market.Asset, rng market.TimeRange) (*market.Data, error) {
	var (
		p      market.Provider
		symbol string
		ttl    time.Duration
	)
	switch {
	case asset.CoinGeckoID != "":
		p, symbol, ttl = o.Crypto, asset.CoinGeckoID, o.CryptoTTL
		if ttl <= 0 {
			ttl = DefaultCryptoTTL
		}
	case asset.YahooSymbol != "":
		p, symbol, ttl = o.Equities, asset.YahooSymbol, o.EquitiesTTL
		if ttl <= 0 {
			ttl = DefaultEquitiesTTL
		}
	default:
		return nil, &market.NoSourceError{AssetID: asset.ID}
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("range", string(rng))
	key := CacheKey(p.Name(), "/market", params)

	if v, ok := o.Cache.Get(key); ok {
		if d, ok := v.(*market.Data); ok {
			return d, nil
		}
	}

	d, err := p.Fetch(ctx, symbol, rng)
	if err != nil {
		// No negative caching.
		return nil, err
	}
	o.Cache.Set(key, d, ttl)
	if o.Log != nil {
		o.Log.WithFields(logrus.Fields{"asset": asset.ID, "range": rng, "provider": p.Name()}).Debug("cache filled")
	}
	return d, nil
}

// Result is one asset's outcome from FetchAll.
type Result struct {
	Asset market.Asset
	Data  *market.Data
	Err   error
}

// FetchAll fetches several assets concurrently, collecting per-asset
// outcomes instead of failing fast. At most four fetches run at once.
func (o *Orchestrator) FetchAll(ctx context.Context, assets []market.Asset, rng market.TimeRange) []Result {
	results := make([]Result, len(assets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, a := range assets {
		i, a := i, a
		g.Go(func() error {
			d, err := o.Fetch(ctx, a, rng)
			results[i] = Result{Asset: a, Data: d, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
