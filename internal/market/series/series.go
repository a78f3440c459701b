// Package series turns raw upstream (timestamp, value[, volume]) samples into
// a deduplicated canonical market.Series shared by all adapters.
package series

import (
	"strconv"
	"time"

	"marketproxy/internal/market"
)

// Sample is one raw upstream observation. Open/High/Low are nil when the
// upstream only reports a scalar price; the builder then emits a degenerate
// bar with all four OHLC fields equal to Close.
type Sample struct {
	Unix   int64
	Close  float64
	Open   *float64
	High   *float64
	Low    *float64
	Volume float64
}

// VolumeSample is one entry of a separate volume series keyed by timestamp.
type VolumeSample struct {
	Unix  int64
	Value float64
}

// Key derives the time key for a unix-second timestamp. Intraday series keep
// the raw unix seconds (as a string); daily-or-coarser series floor to a UTC
// calendar date.
func Key(unix int64, intraday bool) string {
	if intraday {
		return strconv.FormatInt(unix, 10)
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}

// Builder accumulates samples in upstream order. It never sorts: upstream is
// assumed pre-sorted, and for daily ranges a repeated date updates the value
// in place at its original position (last write wins, map insertion order).
type Builder struct {
	intraday bool
	keys     []string
	index    map[string]int
	samples  []Sample
}

func NewBuilder(intraday bool) *Builder {
	return &Builder{intraday: intraday, index: make(map[string]int)}
}

// Add appends one raw sample. Intraday series keep every sample; daily series
// collapse samples flooring to the same date, the later sample winning.
func (b *Builder) Add(s Sample) {
	key := Key(s.Unix, b.intraday)
	if !b.intraday {
		if i, ok := b.index[key]; ok {
			b.samples[i] = s
			return
		}
	}
	b.index[key] = len(b.keys)
	b.keys = append(b.keys, key)
	b.samples = append(b.samples, s)
}

// ApplyVolumes sets per-bucket volumes from a separate volume series. Volumes
// are matched by exact floored time key; buckets without a match keep volume 0.
func (b *Builder) ApplyVolumes(vols []VolumeSample) {
	byKey := make(map[string]float64, len(vols))
	for _, v := range vols {
		byKey[Key(v.Unix, b.intraday)] = v.Value
	}
	for i, key := range b.keys {
		if v, ok := byKey[key]; ok {
			b.samples[i].Volume = v
		}
	}
}

// Len reports the number of buckets accumulated so far.
func (b *Builder) Len() int { return len(b.keys) }

// Build materializes the canonical series. The three output slices share time
// keys index for index. Volume color tags compare each close against the
// previous bucket's close (up when >=); the first bucket's missing predecessor
// is treated as close 0.
func (b *Builder) Build() market.Series {
	s := market.Series{
		History: make([]market.PricePoint, 0, len(b.keys)),
		OHLC:    make([]market.OHLCBar, 0, len(b.keys)),
		Volume:  make([]market.VolumeBar, 0, len(b.keys)),
	}
	prevClose := 0.0
	for i, key := range b.keys {
		sm := b.samples[i]
		s.History = append(s.History, market.PricePoint{Time: key, Value: sm.Close})
		s.OHLC = append(s.OHLC, market.OHLCBar{
			Time:  key,
			Open:  orClose(sm.Open, sm.Close),
			High:  orClose(sm.High, sm.Close),
			Low:   orClose(sm.Low, sm.Close),
			Close: sm.Close,
		})
		color := market.ColorDown
		if sm.Close >= prevClose {
			color = market.ColorUp
		}
		s.Volume = append(s.Volume, market.VolumeBar{Time: key, Value: sm.Volume, Color: color})
		prevClose = sm.Close
	}
	return s
}

func orClose(v *float64, close float64) float64 {
	if v == nil {
		return close
	}
	return *v
}
