package retry

import (
	"context"
	"time"

	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
)

// Retrier executes operations with bounded retries and capped exponential
// backoff. Provider-supplied retry hints (Retry-After) set the floor for the
// next sleep.
type Retrier struct {
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	multiplier  float64

	logger *logger.Logger
}

// Config configures the retrier
type Config struct {
	MaxAttempts int           // Max attempts per operation (e.g. 5)
	MinBackoff  time.Duration // Initial backoff (e.g. 1s)
	MaxBackoff  time.Duration // Max backoff (e.g. 60s)
	Multiplier  float64       // Multiplier for exponential backoff (e.g. 2.0)
}

// New creates a retrier with sensible defaults
func New(config Config, log *logger.Logger) *Retrier {
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 5
	}
	if config.MinBackoff == 0 {
		config.MinBackoff = 1 * time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 60 * time.Second
	}
	if config.Multiplier == 0 {
		config.Multiplier = 2.0
	}

	return &Retrier{
		maxAttempts: config.MaxAttempts,
		minBackoff:  config.MinBackoff,
		maxBackoff:  config.MaxBackoff,
		multiplier:  config.Multiplier,
		logger:      log,
	}
}

// RateLimitError signals a provider rate limit, optionally carrying the
// provider's requested delay before the next attempt.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return "rate limited by provider, retry after " + e.RetryAfter.String()
	}
	return "rate limited by provider"
}

// Unwrap makes the error match errors.ErrRateLimited
func (e *RateLimitError) Unwrap() error {
	return errors.ErrRateLimited
}

// retryable reports whether the operation is worth repeating
func retryable(err error) bool {
	return errors.Is(err, errors.ErrRateLimited) ||
		errors.Is(err, errors.ErrUnavailable) ||
		errors.Is(err, errors.ErrTimeout)
}

// Do runs fn, retrying retryable failures up to MaxAttempts. The sleep before
// each retry is the larger of the current backoff and the provider's
// Retry-After hint. Context cancellation aborts the wait.
func (r *Retrier) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := r.minBackoff

	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt == r.maxAttempts {
			break
		}

		sleep := backoff
		var rateLimit *RateLimitError
		if errors.As(err, &rateLimit) && rateLimit.RetryAfter > sleep {
			sleep = rateLimit.RetryAfter
		}

		r.logger.Warnw("Retryable failure, backing off",
			"operation", op,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"sleep", sleep,
		)

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff = time.Duration(float64(backoff) * r.multiplier)
		if backoff > r.maxBackoff {
			backoff = r.maxBackoff
		}
	}

	return errors.Wrapf(err, "%s: giving up after %d attempts", op, r.maxAttempts)
}
