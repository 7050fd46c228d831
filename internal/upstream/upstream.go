// Package upstream provides the shared calling conventions for collaborator
// services: short per-call timeouts, exponential backoff on transient
// failures, and immediate failure on client errors. Every attempt outcome is
// reported to an injected recorder.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Upstream failure classes. Transient failures are retried per the backoff
// policy; permanent failures abort immediately.
var (
	ErrTransient = errors.New("transient upstream failure")
	ErrPermanent = errors.New("permanent upstream failure")
)

// AttemptRecorder observes the outcome of every individual upstream attempt.
type AttemptRecorder interface {
	Attempt(operation string, success bool)
}

// Policy describes the retry behavior for transient failures.
type Policy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxAttempts  int
}

// Caller performs HTTP exchanges against one collaborator service, applying
// the retry policy and recording per-attempt outcomes under the configured
// operation name.
type Caller struct {
	client    *http.Client
	policy    Policy
	recorder  AttemptRecorder
	logger    *slog.Logger
	operation string
}

// NewCaller creates a caller for the named operation.
func NewCaller(client *http.Client, policy Policy, recorder AttemptRecorder, logger *slog.Logger, operation string) *Caller {
	return &Caller{
		client:    client,
		policy:    policy,
		recorder:  recorder,
		logger:    logger.With("operation", operation),
		operation: operation,
	}
}

// Do executes the request produced by build, retrying transient failures.
// build is invoked once per attempt so request bodies are re-created.
// On a 2xx response the body is returned; 4xx responses fail immediately
// with ErrPermanent, network errors and all other statuses are retried and
// eventually surface as ErrTransient.
func (c *Caller) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	op := func() ([]byte, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			c.recorder.Attempt(c.operation, false)
			c.logger.Warn("upstream request failed", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.recorder.Attempt(c.operation, false)
			return nil, fmt.Errorf("%w: read response: %v", ErrTransient, err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			c.recorder.Attempt(c.operation, true)
			return body, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			c.recorder.Attempt(c.operation, false)
			c.logger.Error("upstream rejected request", "status", resp.StatusCode, "url", req.URL.Redacted())
			return nil, backoff.Permanent(fmt.Errorf("%w: %s returned status %d", ErrPermanent, c.operation, resp.StatusCode))
		default:
			c.recorder.Attempt(c.operation, false)
			c.logger.Warn("upstream returned server error", "status", resp.StatusCode, "url", req.URL.Redacted())
			return nil, fmt.Errorf("%w: %s returned status %d", ErrTransient, c.operation, resp.StatusCode)
		}
	}

	return backoff.RetryWithData(op, backoff.WithContext(c.backoff(), ctx))
}

func (c *Caller) backoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.policy.InitialDelay
	bo.Multiplier = c.policy.Multiplier
	bo.RandomizationFactor = 0

	attempts := c.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithMaxRetries(bo, uint64(attempts-1))
}
