package harvester

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// ExponentialRetryPolicy implements RetryPolicy with jittered backoff.
type ExponentialRetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewExponentialRetryPolicy builds a policy with the default fetch budget:
// three attempts, one second base delay doubled per attempt.
func NewExponentialRetryPolicy() *ExponentialRetryPolicy {
	return &ExponentialRetryPolicy{
		maxAttempts: 3,
		baseDelay:   time.Second,
		maxDelay:    30 * time.Second,
	}
}

// NewRetryPolicy builds a policy with explicit attempt and delay settings.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) *ExponentialRetryPolicy {
	return &ExponentialRetryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    30 * time.Second,
	}
}

// MaxAttempts returns the attempt budget.
func (p *ExponentialRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry decides whether the error is retryable after the given number
// of completed attempts. Cancellation and client-side HTTP errors are
// permanent; server errors, throttling, and transport timeouts are transient.
func (p *ExponentialRetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= p.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= http.StatusInternalServerError ||
			statusErr.Code == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return true
}

// Backoff returns the wait before the next attempt: half the exponential
// delay plus a random jitter up to the other half.
func (p *ExponentialRetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.baseDelay
	for i := 0; i < attempt && delay < p.maxDelay; i++ {
		delay *= 2
	}
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + time.Duration(rand.Int63n(int64(half)))
}
