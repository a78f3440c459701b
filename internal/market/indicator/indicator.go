// Package indicator computes windowed technical indicators over a canonical
// price history. All functions are pure and deterministic: identical input
// yields identical output, no state carries across calls.
package indicator

import (
	"math"

	"marketproxy/internal/market"
)

// SMA computes the simple moving average over `period` points. The output is
// aligned with the tail of the input: the first point is keyed at
// history[period-1].Time. Returns nil when there are fewer points than the
// period.
func SMA(history []market.PricePoint, period int) []market.PricePoint {
	if period <= 0 || len(history) < period {
		return nil
	}

	out := make([]market.PricePoint, 0, len(history)-period+1)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += history[i].Value
	}
	out = append(out, market.PricePoint{Time: history[period-1].Time, Value: sum / float64(period)})

	for i := period; i < len(history); i++ {
		sum += history[i].Value - history[i-period].Value
		out = append(out, market.PricePoint{Time: history[i].Time, Value: sum / float64(period)})
	}
	return out
}

// EMA computes the exponential moving average with smoothing factor
// k = 2/(period+1), seeded with the SMA of the first `period` points.
func EMA(history []market.PricePoint, period int) []market.PricePoint {
	if period <= 0 || len(history) < period {
		return nil
	}

	k := 2.0 / float64(period+1)
	out := make([]market.PricePoint, 0, len(history)-period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += history[i].Value
	}
	ema := sum / float64(period)
	out = append(out, market.PricePoint{Time: history[period-1].Time, Value: ema})

	for i := period; i < len(history); i++ {
		ema = history[i].Value*k + ema*(1-k)
		out = append(out, market.PricePoint{Time: history[i].Time, Value: ema})
	}
	return out
}

// Bands holds the three Bollinger band series, keyed like SMA output.
type Bands struct {
	Upper  []market.PricePoint `json:"upper"`
	Middle []market.PricePoint `json:"middle"`
	Lower  []market.PricePoint `json:"lower"`
}

// Bollinger computes Bollinger Bands: for each trailing window the mean and
// the population standard deviation (denominator = period), emitting
// mean ± mult·σ. Returns empty bands when there are fewer points than the
// period.
func Bollinger(history []market.PricePoint, period int, mult float64) Bands {
	if period <= 0 || len(history) < period {
		return Bands{}
	}

	n := len(history) - period + 1
	b := Bands{
		Upper:  make([]market.PricePoint, 0, n),
		Middle: make([]market.PricePoint, 0, n),
		Lower:  make([]market.PricePoint, 0, n),
	}
	for i := period - 1; i < len(history); i++ {
		window := history[i-period+1 : i+1]
		mean := 0.0
		for _, p := range window {
			mean += p.Value
		}
		mean /= float64(period)

		variance := 0.0
		for _, p := range window {
			d := p.Value - mean
			variance += d * d
		}
		variance /= float64(period)
		sigma := math.Sqrt(variance)

		t := history[i].Time
		b.Upper = append(b.Upper, market.PricePoint{Time: t, Value: mean + mult*sigma})
		b.Middle = append(b.Middle, market.PricePoint{Time: t, Value: mean})
		b.Lower = append(b.Lower, market.PricePoint{Time: t, Value: mean - mult*sigma})
	}
	return b
}
