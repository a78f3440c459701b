package market

import "fmt"

// TimeRange is one of the fixed set of supported chart windows.
type TimeRange string

const (
	Range1D TimeRange = "1D"
	Range5D TimeRange = "5D"
	Range1M TimeRange = "1M"
	Range3M TimeRange = "3M"
	Range6M TimeRange = "6M"
	Range1Y TimeRange = "1Y"
	Range5Y TimeRange = "5Y"
)

// Ranges lists all supported time ranges, shortest first.
func Ranges() []TimeRange {
	return []TimeRange{Range1D, Range5D, Range1M, Range3M, Range6M, Range1Y, Range5Y}
}

// Intraday reports whether the range keeps sub-daily resolution. The two
// shortest ranges are intraday: their series use raw unix-second time keys and
// skip the per-date dedup.
func (r TimeRange) Intraday() bool {
	return r == Range1D || r == Range5D
}

// ParseRange validates a range token supplied by a caller.
func ParseRange(s string) (TimeRange, error) {
	for _, r := range Ranges() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown time range %q", s)
}
