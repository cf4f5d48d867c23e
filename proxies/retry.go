package proxies

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/s0up4200/px6ctl/px6"
)

// RetryPolicy controls how read-only calls are repeated after a 429.
// Calls that change the account are never repeated.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     4,
		InitialInterval: time.Second,
		MaxInterval:     15 * time.Second,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}

// retry runs call, repeating it only while a read-only method is rate limited
func retry[T any](ctx context.Context, c *Client, method px6.Method, call func() (*T, error)) (*T, error) {
	if !method.ReadOnly() || c.retry.MaxAttempts <= 1 {
		return call()
	}

	attempt := 0
	operation := func() (*T, error) {
		attempt++
		res, err := call()
		if err != nil && px6.KindOf(err) != px6.KindRateLimited {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn().
			Err(err).
			Str("method", string(method)).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Rate limited, retrying")
	}

	return backoff.RetryNotifyWithData(operation, c.retry.backOff(ctx), notify)
}
