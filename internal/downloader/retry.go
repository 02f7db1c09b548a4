package downloader

import (
	"context"
	"math"
	"time"

	"github.com/mbarden/gopull/internal/infra/config"
)

// RetryPolicy bounds the per-segment attempt loop. The default policy
// (MaxAttempts 0, Delay 0) retries forever with no pause, matching the
// classic "hammer until it works" downloader behavior; deployments that
// prefer to fail can cap attempts and space them out in config.
type RetryPolicy struct {
	MaxAttempts   int           // 0 = unlimited
	Delay         time.Duration // base delay before a retry; 0 = immediate
	MaxDelay      time.Duration
	BackoffFactor float64
}

func policyFromConfig(dc *config.DownloadConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   dc.RetryAttempts,
		Delay:         dc.RetryDelay(),
		MaxDelay:      dc.RetryMaxDelay(),
		BackoffFactor: 2.0,
	}
}

// Allow reports whether another attempt may be made after `attempts`
// failures.
func (p RetryPolicy) Allow(attempts int) bool {
	return p.MaxAttempts == 0 || attempts < p.MaxAttempts
}

// Backoff computes the pause before retry number `attempt`.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.Delay <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.Delay) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// Wait blocks for the backoff delay or until the context ends.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	d := p.Backoff(attempt)
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
