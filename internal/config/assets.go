package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"marketproxy/internal/market"
)

type assetsFile struct {
	Assets []market.Asset `yaml:"assets"`
}

// LoadAssets reads the asset catalog from a YAML file. An empty path returns
// the built-in catalog. Assets without any provider identifier are rejected
// here so a NoSourceError cannot reach the fetch path.
func LoadAssets(path string) ([]market.Asset, error) {
	if path == "" {
		return DefaultAssets(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets: %w", err)
	}
	var f assetsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse assets: %w", err)
	}
	if len(f.Assets) == 0 {
		return nil, fmt.Errorf("assets file %s lists no assets", path)
	}
	for _, a := range f.Assets {
		if a.ID == "" {
			return nil, fmt.Errorf("asset with empty id in %s", path)
		}
		if a.YahooSymbol == "" && a.CoinGeckoID == "" {
			return nil, fmt.Errorf("asset %s: %w", path, &market.NoSourceError{AssetID: a.ID})
		}
	}
	return f.Assets, nil
}

// DefaultAssets is the compiled-in catalog.
func DefaultAssets() []market.Asset {
	return []market.Asset{
		{ID: "googl", Symbol: "GOOGL", Name: "Alphabet", Category: market.CategoryStock, Color: "#4285f4", YahooSymbol: "GOOGL"},
		{ID: "nvda", Symbol: "NVDA", Name: "Nvidia", Category: market.CategoryStock, Color: "#76b900", YahooSymbol: "NVDA"},
		{ID: "tsla", Symbol: "TSLA", Name: "Tesla", Category: market.CategoryStock, Color: "#cc0000", YahooSymbol: "TSLA"},
		{ID: "aapl", Symbol: "AAPL", Name: "Apple", Category: market.CategoryStock, Color: "#a2aaad", YahooSymbol: "AAPL"},
		{ID: "btc", Symbol: "BTC", Name: "Bitcoin", Category: market.CategoryCrypto, Color: "#f7931a", CoinGeckoID: "bitcoin"},
		{ID: "eth", Symbol: "ETH", Name: "Ethereum", Category: market.CategoryCrypto, Color: "#627eea", CoinGeckoID: "ethereum"},
		{ID: "gold", Symbol: "XAU", Name: "Gold", Category: market.CategoryCommodity, Color: "#ffd700", YahooSymbol: "GC=F"},
		{ID: "silver", Symbol: "XAG", Name: "Silver", Category: market.CategoryCommodity, Color: "#c0c0c0", YahooSymbol: "SI=F"},
		{ID: "spy", Symbol: "SPY", Name: "S&P 500", Category: market.CategoryIndex, Color: "#8b5cf6", YahooSymbol: "SPY"},
	}
}
