// Package httpclient provides the HTTP transport used by the api package:
// connection pooling, bounded retry with exponential backoff, and a circuit
// breaker in front of the backend.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Config controls timeouts and retry behaviour.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultConfig returns the defaults used when the caller supplies zero values.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: time.Second,
		RetryWaitMax: 5 * time.Second,
	}
}

// Client wraps http.Client with retry on network errors and 5xx responses.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a Client. Zero-valued config fields fall back to DefaultConfig.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = def.RetryWaitMin
	}
	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = def.RetryWaitMax
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}
}

// Do executes the request, retrying network failures and 5xx responses
// (except 501) up to MaxRetries times with exponential backoff.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	var resp *http.Response
	var err error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.config.RetryWaitMin * time.Duration(1<<uint(attempt-1))
			if wait > c.config.RetryWaitMax {
				wait = c.config.RetryWaitMax
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if req.GetBody != nil {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, errors.Wrap(bodyErr, "[Client.Do] rewind request body")
				}
				req.Body = body
			}
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if isRetryable(err) && attempt < c.config.MaxRetries {
				continue
			}
			return nil, errors.Wrapf(err, "[Client.Do] request failed after %d attempt(s)", attempt+1)
		}

		if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented && attempt < c.config.MaxRetries {
			resp.Body.Close()
			continue
		}
		return resp, nil
	}

	return resp, err
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
