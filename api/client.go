// Package api is the REST client for the booking backend. Every response
// arrives in an envelope {code, message, data}; the client unwraps data on
// success and turns non-success responses into classified *Error values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/modubooking/go-booking-client/credentials"
)

// Doer executes HTTP requests. Satisfied by internal/httpclient's Client and
// BreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the booking backend on behalf of both principals. The user
// and admin token sources are independent; admin-scoped calls never carry
// the user's token and vice versa.
type Client struct {
	baseURL string
	http    Doer
	user    oauth2.TokenSource
	admin   oauth2.TokenSource
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserTokenSource sets the token source for user-scoped calls.
func WithUserTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.user = ts }
}

// WithAdminTokenSource sets the token source for admin-scoped calls.
func WithAdminTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.admin = ts }
}

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, doer Doer, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}
	if doer == nil {
		return nil, errors.New("[api.New] doer is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// do issues one request and decodes the envelope. out may be nil when the
// caller does not need the data payload.
func (c *Client) do(ctx context.Context, method, path string, principal credentials.Principal, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client.do] marshal %s %s", method, path)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] new request %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req, principal); err != nil {
		return err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] read body %s %s", method, path)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return errors.Wrapf(err, "[Client.do] decode envelope %s %s", method, path)
		}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("principal", string(principal)).
		Msg("backend call")

	if resp.StatusCode >= 300 {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return classify(resp.StatusCode, env.Code, message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(err, "[Client.do] decode data %s %s", method, path)
	}
	return nil
}

// authorize attaches the bearer token for the requested principal. An empty
// principal means the endpoint is public.
func (c *Client) authorize(req *http.Request, principal credentials.Principal) error {
	var ts oauth2.TokenSource
	switch principal {
	case credentials.PrincipalUser:
		ts = c.user
	case credentials.PrincipalAdmin:
		ts = c.admin
	case "":
		return nil
	}
	if ts == nil {
		return nil
	}

	tok, err := ts.Token()
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredential) {
			// Unauthenticated calls are allowed to proceed; the backend
			// rejects them and the rejection classifies as unauthorized.
			return nil
		}
		return errors.Wrap(err, "[Client.authorize] token source")
	}
	tok.SetAuthHeader(req)
	return nil
}

func (c *Client) get(ctx context.Context, path string, principal credentials.Principal, out any) error {
	return c.do(ctx, http.MethodGet, path, principal, nil, out)
}

func (c *Client) post(ctx context.Context, path string, principal credentials.Principal, body, out any) error {
	return c.do(ctx, http.MethodPost, path, principal, body, out)
}
