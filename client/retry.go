package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	gamelink "github.com/cory-johannsen/gamelink"
	"github.com/cory-johannsen/gamelink/api"
	"github.com/cory-johannsen/gamelink/config"
)

// RetryAdapter wraps another Adapter with exponential backoff and jitter.
// Only transient failures are retried: transport errors and 5xx statuses.
// Responses with any other status are returned to the caller immediately.
type RetryAdapter struct {
	next     Adapter
	cfg      config.RetryConfig
	logger   *zap.Logger
	listener RetryListener
}

// RetryListener observes each retry: the error that triggered it and the
// delay before the next attempt.
type RetryListener func(err error, delay time.Duration)

// NewRetryAdapter wraps next with the given retry policy.
func NewRetryAdapter(next Adapter, cfg config.RetryConfig, logger *zap.Logger) *RetryAdapter {
	return &RetryAdapter{next: next, cfg: cfg, logger: logger.Named("retry")}
}

// SetListener installs a retry observer. Call before the adapter is shared
// across goroutines.
func (r *RetryAdapter) SetListener(fn RetryListener) {
	r.listener = fn
}

func (r *RetryAdapter) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.BaseInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.RandomizationFactor = r.cfg.Jitter
	b.Multiplier = 2
	// Attempts are bounded by MaxRetries, not elapsed time.
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxRetries)), ctx)
}

// Send performs the round trip, retrying transient failures until the retry
// budget is exhausted. The last error or response wins.
func (r *RetryAdapter) Send(ctx context.Context, req *api.Request) (*api.Response, error) {
	if r.cfg.MaxRetries == 0 {
		return r.next.Send(ctx, req)
	}

	attempt := 0
	operation := func() (*api.Response, error) {
		attempt++
		resp, err := r.next.Send(ctx, req)
		if err != nil {
			if !gamelink.Retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if resp.Status >= 500 {
			return nil, gamelink.NewServerError(resp.Status, string(resp.Body))
		}
		return resp, nil
	}

	notify := func(err error, delay time.Duration) {
		if r.listener != nil {
			r.listener(err, delay)
		}
		r.logger.Warn("retrying request",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	resp, err := backoff.RetryNotifyWithData(operation, r.newBackOff(ctx), notify)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
