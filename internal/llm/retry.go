package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Retry defaults.
const (
	DefaultMaxAttempts   = 3
	DefaultRateLimitBase = 30 * time.Second
	DefaultTransientWait = 5 * time.Second
)

// RetryPolicy decides how often and how long to wait between attempts
// against a single provider.
type RetryPolicy struct {
	MaxAttempts   int
	RateLimitBase time.Duration // Rate limit wait is RateLimitBase * attempt
	TransientWait time.Duration // Fixed wait for other retryable errors
	Retryable     func(error) bool
	Sleep         func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns 3 attempts with 30s*attempt rate-limit backoff
// and a 5s wait for other transient errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   DefaultMaxAttempts,
		RateLimitBase: DefaultRateLimitBase,
		TransientWait: DefaultTransientWait,
		Retryable:     IsRetryable,
		Sleep:         SleepContext,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int, err error) time.Duration {
	if IsRateLimit(err) {
		return p.RateLimitBase * time.Duration(attempt)
	}
	return p.TransientWait
}

// Run calls fn until it succeeds, the error is not retryable, or the
// attempts are used up. onRetry is called before each wait and may be nil.
// It returns the number of attempts made.
func (p RetryPolicy) Run(ctx context.Context, fn func(context.Context) (string, error), onRetry func(attempt int, err error, wait time.Duration)) (string, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, attempt, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) || attempt == maxAttempts {
			return "", attempt, lastErr
		}
		wait := p.Backoff(attempt, err)
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return "", attempt, err
		}
	}
	return "", maxAttempts, lastErr
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// HTTPStatusCoder is implemented by errors that carry an HTTP status.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// HTTPError is a non-2xx provider response.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// IsRateLimit reports whether err looks like a rate limit or quota error.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "ratelimit", "quota", "resource_exhausted", "too many requests"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsRetryable treats everything as transient except caller cancellation
// and client errors other than 408 and 429.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatusCode()
		if code >= 400 && code < 500 {
			return code == 408 || code == 429
		}
	}
	return true
}
