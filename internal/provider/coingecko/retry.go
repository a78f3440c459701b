package coingecko

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// retryState tracks the single-retry rate-limit policy as an explicit state
// machine so the one-retry guarantee is testable on its own.
type retryState int

const (
	stateIdle retryState = iota
	stateRequesting
	stateBackoff
	stateRetrying
	stateDone
	stateFailed
)

// retrier issues a request and, on a 429 response, waits the advertised
// Retry-After duration (defaultBackoff when absent) and retries exactly once.
// A second 429 is returned to the caller as-is; no further retries.
type retrier struct {
	defaultBackoff time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	state          retryState
}

func (r *retrier) do(ctx context.Context, issue func() (*http.Response, error)) (*http.Response, error) {
	r.state = stateRequesting
	resp, err := issue()
	if err != nil {
		r.state = stateFailed
		return nil, err
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		r.state = stateDone
		return resp, nil
	}

	wait := retryAfter(resp, r.defaultBackoff)
	drain(resp)
	r.state = stateBackoff
	if err := r.sleep(ctx, wait); err != nil {
		r.state = stateFailed
		return nil, err
	}

	r.state = stateRetrying
	resp, err = issue()
	if err != nil {
		r.state = stateFailed
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		r.state = stateFailed
		return resp, nil
	}
	r.state = stateDone
	return resp, nil
}

// retryAfter reads the Retry-After header as whole seconds, falling back to
// def when absent or unparsable.
func retryAfter(resp *http.Response, def time.Duration) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2<<10))
	resp.Body.Close()
}
