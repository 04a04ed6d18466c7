package translator

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds the attempts of one batch call. Backoff grows
// linearly: the delay after attempt n is Backoff * n.
type RetryPolicy struct {
	MaxAttempts int           `mapstructure:"max_attempts" json:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff" json:"backoff"`
}

// DefaultRetryPolicy allows four total attempts with a 1.5-second
// backoff base.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, Backoff: 1500 * time.Millisecond}
}

// Delay returns the wait before the attempt following attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return p.Backoff * time.Duration(attempt)
}

// BatchResult is the outcome of one batch translation. When Fallback is
// true every attempt failed and Texts holds the untranslated originals.
type BatchResult struct {
	Texts    []string `json:"texts"`
	Fallback bool     `json:"fallback"`
	Attempts int      `json:"attempts"`
}

// Client wraps a TranslationService with retry, backoff and the
// degrade-to-original fallback. It never surfaces a remote failure as an
// error: after the last attempt it returns the input texts unchanged,
// flagged as a fallback, so the run completes with original text in
// place of the failed batch. The only error it returns is context
// cancellation.
type Client struct {
	service TranslationService
	policy  RetryPolicy

	// Logf receives retry and fallback notices. Nil disables them.
	Logf func(format string, args ...interface{})
}

// NewClient builds a Client over service. Non-positive policy fields are
// filled from DefaultRetryPolicy.
func NewClient(service TranslationService, policy RetryPolicy) *Client {
	def := DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.Backoff <= 0 {
		policy.Backoff = def.Backoff
	}
	return &Client{service: service, policy: policy}
}

// ServiceName reports the wrapped service's name.
func (c *Client) ServiceName() string {
	return c.service.Name()
}

// TranslateBatch issues one remote call per attempt until one succeeds
// or the policy is exhausted, sleeping Delay(attempt) between attempts.
func (c *Client) TranslateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if len(req.Texts) == 0 {
		return &BatchResult{}, nil
	}

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		out, err := c.service.TranslateBatch(ctx, req)
		if err == nil {
			if len(out) != len(req.Texts) {
				err = fmt.Errorf("service returned %d translations for %d inputs", len(out), len(req.Texts))
			} else {
				return &BatchResult{Texts: out, Attempts: attempt}, nil
			}
		}

		c.logf("%s: attempt %d/%d failed: %v", c.service.Name(), attempt, c.policy.MaxAttempts, err)

		if attempt == c.policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.policy.Delay(attempt)):
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.logf("%s: all %d attempts failed, keeping original text for %d item(s)",
		c.service.Name(), c.policy.MaxAttempts, len(req.Texts))

	originals := make([]string, len(req.Texts))
	copy(originals, req.Texts)
	return &BatchResult{Texts: originals, Fallback: true, Attempts: c.policy.MaxAttempts}, nil
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}
