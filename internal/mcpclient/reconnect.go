package mcpclient

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// reconnector serializes reconnect attempts behind the exact doubling
// sequence from spec §4.D (1s, 2s, 4s, 8s, 16s), capped at maxAttempts, and
// guarantees only one dial is ever in flight. onExhausted is invoked once
// the attempt counter reaches maxAttempts, so the owning Client can make
// the terminal connected -> error -> disconnected transition spec §4.D
// requires instead of being parked in StateError forever.
type reconnector struct {
	baseDelay   time.Duration
	maxAttempts int
	dial        func(ctx context.Context) error
	onExhausted func()

	mu      sync.Mutex
	attempt int
	timer   *time.Timer
	stopped bool
	policy  *backoff.ExponentialBackOff
}

func newReconnector(baseDelay time.Duration, maxAttempts int, dial func(ctx context.Context) error, onExhausted func()) *reconnector {
	return &reconnector{
		baseDelay:   baseDelay,
		maxAttempts: maxAttempts,
		dial:        dial,
		onExhausted: onExhausted,
		policy:      newBackoffPolicy(baseDelay),
	}
}

// newBackoffPolicy configures backoff/v5's exponential policy to the exact
// 1/2/4/8/16s doubling sequence spec §4.D names: no jitter, a multiplier of
// 2, and a ceiling at 16x the base delay. maxAttempts, not the policy, is
// what bounds the retry count.
func newBackoffPolicy(baseDelay time.Duration) *backoff.ExponentialBackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.Multiplier = 2
	policy.MaxInterval = baseDelay * 16
	policy.RandomizationFactor = 0
	policy.Reset()
	return policy
}

// reset clears the attempt counter and rearms the backoff policy, called
// after a successful connect.
func (r *reconnector) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempt = 0
	r.policy.Reset()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// stop cancels any pending retry and prevents further scheduling.
func (r *reconnector) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// scheduleRetry arms a single timer for the next backoff delay, asking the
// policy for it rather than recomputing the doubling by hand — each call
// is one real attempt, so advancing policy state per call reproduces the
// spec's 1/2/4/8/16s sequence exactly. On exhaustion it fires onExhausted
// instead of silently leaving the client stuck (spec §4.D: "On exhaustion,
// transition to disconnected and emit error").
func (r *reconnector) scheduleRetry() {
	r.mu.Lock()

	if r.stopped {
		r.mu.Unlock()
		return
	}
	if r.attempt >= r.maxAttempts {
		r.mu.Unlock()
		if r.onExhausted != nil {
			r.onExhausted()
		}
		return
	}
	r.attempt++
	attempt := r.attempt
	delay := r.policy.NextBackOff()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(delay, func() {
		if err := r.dial(context.Background()); err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("mcpclient: reconnect attempt failed")
		}
	})
	r.mu.Unlock()
}
