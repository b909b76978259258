package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sethvargo/go-retry"

	"github.com/Changaizkhan/autopair-final/internal/config"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
)

// RetryPolicy retries transient failures a fixed number of times with a fixed delay.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy is three attempts two seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: defaultRetryAttempts, Delay: defaultRetryDelay}
}

// NewRetryPolicy builds a policy from configuration, filling in defaults.
func NewRetryPolicy(cfg config.RetryConfig) RetryPolicy {
	p := DefaultRetryPolicy()
	if cfg.Attempts >= 1 {
		p.Attempts = cfg.Attempts
	}
	if cfg.Delay > 0 {
		p.Delay = cfg.Delay
	}
	return p
}

// Do runs fn until it succeeds, returns a permanent error, or the attempts run
// out. fn marks transient failures with transient(err).
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		var te *transientError
		if !errors.As(err, &te) {
			return err
		}
		if attempt < attempts {
			log.Warnf("🔁 %s failed (attempt %d/%d), retrying in %v: %v", op, attempt, attempts, delay, te.err)
		}
		return retry.RetryableError(te.err)
	})
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transient marks err as worth retrying.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// isTransientStatus reports the HTTP status codes retried by every client.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isConnectionError reports network-level failures (refused, reset, timeouts).
func isConnectionError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
