package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// StatusError reports a non-2xx HTTP response. Always retryable.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// ValidationError reports a response that parsed but failed a required-field
// check. Treated the same as a malformed payload: retryable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid response: " + e.Reason
}

// Policy wraps a single remote operation with bounded retries and growing
// backoff. Retryable outcomes are transport failures, non-2xx statuses and
// malformed or invalid response payloads; anything else aborts immediately.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep is swappable for tests. Defaults to a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy matches the pipeline-wide retry contract: three attempts
// with 4s/6s pauses between them.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second}

// Do invokes fn up to MaxAttempts times, sleeping (attempt+2) x BaseDelay
// between retryable failures. It returns the last error once attempts are
// exhausted or immediately on a fatal error.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}
		delay := time.Duration(attempt+2) * p.BaseDelay
		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

// IsRetryable classifies an error as transient. Transport errors, bad
// statuses and unparseable or invalid payloads are worth another attempt;
// everything else (programming errors, rejected content) is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}

	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
