package market

// AssetCategory groups assets for refresh cadence and presentation.
type AssetCategory string

const (
	CategoryStock     AssetCategory = "stock"
	CategoryCrypto    AssetCategory = "crypto"
	CategoryCommodity AssetCategory = "commodity"
	CategoryIndex     AssetCategory = "index"
)

// Asset is one configured instrument. Exactly one of YahooSymbol or
// CoinGeckoID should be set; it decides which adapter serves the asset.
type Asset struct {
	ID          string        `json:"id" yaml:"id"`
	Symbol      string        `json:"symbol" yaml:"symbol"`
	Name        string        `json:"name" yaml:"name"`
	Category    AssetCategory `json:"category" yaml:"category"`
	Color       string        `json:"color,omitempty" yaml:"color,omitempty"`
	YahooSymbol string        `json:"yahooSymbol,omitempty" yaml:"yahoo_symbol,omitempty"`
	CoinGeckoID string        `json:"coingeckoId,omitempty" yaml:"coingecko_id,omitempty"`
}
