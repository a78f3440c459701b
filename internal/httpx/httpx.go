package httpx

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Client is a small wrapper around http.Client with sane defaults.
// MaxRetries additional attempts are made for transport-level failures on
// bodyless requests, with exponential backoff; responses carrying an HTTP
// status, 2xx or not, are never retried here.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	Headers    map[string]string
	MaxRetries int

	sleep func(ctx context.Context, d time.Duration) error
}

func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: "marketproxy/1.0",
		sleep:     SleepCtx,
	}
}

func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	sleep := c.sleep
	if sleep == nil {
		sleep = SleepCtx
	}
	resp, err := c.HTTP.Do(req)
	for attempt := 0; err != nil && attempt < c.MaxRetries && req.Body == nil; attempt++ {
		if werr := sleep(ctx, Backoff(attempt)); werr != nil {
			return nil, werr
		}
		resp, err = c.HTTP.Do(req.Clone(ctx))
	}
	return resp, err
}

// Std adapts the client to the stdlib-style Do(req) signature expected by
// interface-based API clients.
func (c *Client) Std() StdClient { return StdClient{c: c} }

type StdClient struct{ c *Client }

func (s StdClient) Do(req *http.Request) (*http.Response, error) {
	return s.c.Do(req.Context(), req)
}

// Backoff returns the delay before retry number attempt (0-based):
// 1s·2^attempt capped at 30s.
func Backoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d <= 0 || d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

// SleepCtx waits for d or until ctx is canceled.
func SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
