package querycache

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ltaportal/procurement/pkg/apiclient"
)

// Policy bounds how often a failed request is retried per error class.
// Other 4xx responses and non-transport errors are never retried.
type Policy struct {
	ServerErrors int
	RateLimited  int
	Network      int
	// HonorRetryAfter waits for a parsed retry-after hint on 429.
	HonorRetryAfter bool
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// NewTimer overrides the wait timer; nil uses real time.
	NewTimer func() backoff.Timer
}

var (
	QueryPolicy = Policy{
		ServerErrors:    3,
		RateLimited:     3,
		Network:         2,
		HonorRetryAfter: true,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
	}
	MutationPolicy = Policy{
		ServerErrors:    1,
		RateLimited:     2,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
	}
	NoRetry = Policy{}
)

// ShouldRetry reports whether another attempt follows the failures-th
// failed one.
func (p Policy) ShouldRetry(failures int, err error) bool {
	switch {
	case err == nil:
		return false
	case apiclient.IsRateLimited(err):
		return failures <= p.RateLimited
	case apiclient.IsServerError(err):
		return failures <= p.ServerErrors
	case apiclient.IsNetwork(err):
		return failures <= p.Network
	}
	return false
}

// policyBackOff turns a Policy into a backoff.BackOff. The operation
// records its last error so the next delay depends on the error class.
type policyBackOff struct {
	policy   Policy
	exp      *backoff.ExponentialBackOff
	failures int
	lastErr  error
}

func newPolicyBackOff(p Policy) *policyBackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()
	return &policyBackOff{policy: p, exp: exp}
}

func (b *policyBackOff) Reset() {
	b.exp.Reset()
	b.failures = 0
}

func (b *policyBackOff) NextBackOff() time.Duration {
	b.failures++
	if !b.policy.ShouldRetry(b.failures, b.lastErr) {
		return backoff.Stop
	}
	next := b.exp.NextBackOff()
	if b.policy.HonorRetryAfter && apiclient.IsRateLimited(b.lastErr) {
		if wait, ok := apiclient.RetryAfter(b.lastErr); ok {
			return wait
		}
	}
	return next
}

// Do runs op until it succeeds or the policy gives up. notify, when set,
// sees every error that will be retried and the wait before the retry.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, notify backoff.Notify) error {
	b := newPolicyBackOff(p)
	var timer backoff.Timer
	if p.NewTimer != nil {
		timer = p.NewTimer()
	}
	return backoff.RetryNotifyWithTimer(func() error {
		err := op(ctx)
		b.lastErr = err
		return err
	}, backoff.WithContext(b, ctx), notify, timer)
}
