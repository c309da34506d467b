package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the breaker refuses requests.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds circuit breaker tuning.
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns the defaults used for the backend breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// BreakerClient wraps a Client with circuit breaker protection. Only
// transport-level failures and 5xx responses count as breaker failures;
// 4xx responses are application outcomes and pass through.
type BreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  zerolog.Logger
}

// NewBreakerClient wraps client with a circuit breaker.
func NewBreakerClient(client *Client, cfg BreakerConfig, logger zerolog.Logger) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	}

	return &BreakerClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:  logger,
	}
}

// Do executes the request through the breaker.
func (b *BreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := b.breaker.Execute(func() (*http.Response, error) {
		resp, err := b.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			// Count as a breaker failure but hand the response back so the
			// caller can read the envelope.
			return resp, errors.Errorf("server error: %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		if resp != nil {
			return resp, nil
		}
		return nil, err
	}
	return resp, nil
}
