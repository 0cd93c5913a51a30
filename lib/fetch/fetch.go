package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"dugout-backend/lib/telemetry"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

// ErrRetryLimitExceeded is fatal: the scheduler terminates the whole
// run when a fetch burns through its retry budget.
var ErrRetryLimitExceeded = fmt.Errorf("retry limit exceeded")

// Fetcher returns rendered HTML for a url. Everything about
// transport (politeness delays, retries, timeouts) lives behind this
// interface; callers only hand over urls.
type Fetcher interface {
	Render(ctx context.Context, url string) (string, error)
}

type DelayKind string

const (
	DelayDisabled      DelayKind = "disabled"
	DelayUniform       DelayKind = "uniform"
	DelayUniformRandom DelayKind = "uniform_random"
)

type DelayConfig struct {
	Kind  DelayKind `json:"kind"`
	Ms    int       `json:"ms"`
	MinMs int       `json:"min_ms"`
	MaxMs int       `json:"max_ms"`
}

func (c DelayConfig) duration() time.Duration {
	switch c.Kind {
	case DelayUniform:
		return time.Duration(c.Ms) * time.Millisecond
	case DelayUniformRandom:
		if c.MaxMs <= c.MinMs {
			return time.Duration(c.MinMs) * time.Millisecond
		}
		ms := c.MinMs + rand.Intn(c.MaxMs-c.MinMs)
		return time.Duration(ms) * time.Millisecond
	}
	return 0
}

type RetryConfig struct {
	Attempts  int `json:"attempts"`
	BackoffMs int `json:"backoff_ms"`
}

type Config struct {
	Delay          DelayConfig `json:"delay"`
	Retry          RetryConfig `json:"retry"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	UserAgent      string      `json:"user_agent"`
}

func DefaultConfig() Config {
	return Config{
		Delay:          DelayConfig{Kind: DelayUniformRandom, MinMs: 3000, MaxMs: 6000},
		Retry:          RetryConfig{Attempts: 15, BackoffMs: 5000},
		TimeoutSeconds: 15,
	}
}

// Client fetches pages over plain http with resty. Pages on both
// sites render server side so no browser is involved.
type Client struct {
	http  *resty.Client
	delay DelayConfig
	retry RetryConfig
}

func NewClient(cfg Config) *Client {
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = DefaultConfig().Retry
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultConfig().TimeoutSeconds
	}

	client := resty.New()
	client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	if cfg.UserAgent != "" {
		client.SetHeader("user-agent", cfg.UserAgent)
	}
	telemetry.InstrumentResty(client, "dugout.lib.fetch")

	return &Client{
		http:  client,
		delay: cfg.Delay,
		retry: cfg.Retry,
	}
}

func (c *Client) politeDelay(ctx context.Context) error {
	d := c.delay.duration()
	if d <= 0 {
		return nil
	}
	slog.DebugContext(ctx, "polite delay", "duration", d)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryPolicy backs off exponentially from the configured base delay;
// the attempt cap bounds the run, not elapsed time.
func (c *Client) retryPolicy(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Duration(c.retry.BackoffMs) * time.Millisecond
	bo.MaxElapsedTime = 0
	return backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(c.retry.Attempts-1)),
		ctx,
	)
}

func (c *Client) Render(ctx context.Context, url string) (string, error) {
	attempt := func() (string, error) {
		if err := c.politeDelay(ctx); err != nil {
			return "", backoff.Permanent(err)
		}

		res, err := c.http.R().
			SetContext(ctx).
			Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(ctx.Err())
			}
			return "", err
		}
		if res.StatusCode() < 200 || res.StatusCode() >= 300 {
			return "", fmt.Errorf("GET %s: unexpected status %d", url, res.StatusCode())
		}
		return res.String(), nil
	}

	html, err := backoff.RetryWithData(attempt, c.retryPolicy(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: GET %s: %v", ErrRetryLimitExceeded, url, err)
	}
	return html, nil
}
