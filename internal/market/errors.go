package market

import "fmt"

// UpstreamError is a non-2xx HTTP response from a provider. The status code is
// preserved for the caller; upstream errors are never retried except the
// crypto adapter's single 429 backoff retry.
type UpstreamError struct {
	Provider string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Provider, e.Status)
}

// DataError is a well-formed HTTP success whose payload lacks the expected
// result structure. Terminal for the fetch.
type DataError struct {
	Provider string
	Reason   string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: bad payload: %s", e.Provider, e.Reason)
}

// NoSourceError marks an asset configured without any recognized provider
// identifier. A configuration defect, caught before the fetch path.
type NoSourceError struct {
	AssetID string
}

func (e *NoSourceError) Error() string {
	return fmt.Sprintf("no data source configured for asset %q", e.AssetID)
}
