package market

import "context"

// PricePoint is one closing value at one time bucket. Time is either a
// calendar date (YYYY-MM-DD) for daily-or-coarser ranges or a unix-second
// timestamp rendered as a string for intraday ranges; within one series all
// points use the same encoding.
type PricePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// OHLCBar is one candlestick. When the upstream only reports a scalar price,
// all four fields collapse to that scalar (degenerate bar).
type OHLCBar struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// ColorTag marks a volume bar as an up or down bar relative to the previous
// bar's close.
type ColorTag string

const (
	ColorUp   ColorTag = "up"
	ColorDown ColorTag = "down"
)

// VolumeBar is the traded volume for one time bucket.
type VolumeBar struct {
	Time  string   `json:"time"`
	Value float64  `json:"value"`
	Color ColorTag `json:"color"`
}

// Quote is the current snapshot for an asset.
// Change = Price - PreviousClose; ChangePercent = Change/PreviousClose*100
// (0 when PreviousClose is 0).
type Quote struct {
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	High24h       float64  `json:"high24h"`
	Low24h        float64  `json:"low24h"`
	Volume        float64  `json:"volume"`
	PreviousClose float64  `json:"previousClose"`
	MarketCap     *float64 `json:"marketCap,omitempty"`
}

// Series holds the canonical time series for one asset and range. The three
// slices share identical time keys at identical indices, ascending by time,
// with no duplicate keys.
type Series struct {
	History []PricePoint `json:"history"`
	OHLC    []OHLCBar    `json:"ohlc"`
	Volume  []VolumeBar  `json:"volume"`
}

// Data is the full fetch result for one asset: a quote plus the canonical
// series. It is plain data, never referencing adapter-internal state.
type Data struct {
	Quote  Quote  `json:"quote"`
	Series Series `json:"series"`
}

// Provider fetches and normalizes market data for one upstream source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string, rng TimeRange) (*Data, error)
}
