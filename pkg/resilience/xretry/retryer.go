package xretry

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// Retryer 重试执行器，并发安全。
type Retryer struct {
	retryPolicy   RetryPolicy
	backoffPolicy BackoffPolicy
	onRetry       func(attempt int, err error)
}

// RetryerOption 执行器选项。
type RetryerOption func(*Retryer)

// WithRetryPolicy nil 被忽略。
func WithRetryPolicy(p RetryPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.retryPolicy = p
		}
	}
}

// WithBackoffPolicy nil 被忽略。
func WithBackoffPolicy(p BackoffPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.backoffPolicy = p
		}
	}
}

// WithOnRetry 每次决定重试后回调，attempt 从 1 开始。
func WithOnRetry(f func(attempt int, err error)) RetryerOption {
	return func(r *Retryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

// NewRetryer 默认 FixedRetry(3) + ExponentialBackoff。
func NewRetryer(opts ...RetryerOption) *Retryer {
	r := &Retryer{
		retryPolicy:   NewFixedRetry(3),
		backoffPolicy: NewExponentialBackoff(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Do 执行 fn 直到成功、策略放弃或 ctx 结束，返回最后一次错误。
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := r.check(ctx, fn == nil); err != nil {
		return err
	}
	return retry.New(r.options(ctx)...).Do(func() error {
		return fn(ctx)
	})
}

// DoWithResult Do 的带返回值版本。
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := r.check(ctx, fn == nil); err != nil {
		var zero T
		return zero, err
	}
	return retry.NewWithData[T](r.options(ctx)...).Do(func() (T, error) {
		return fn(ctx)
	})
}

func (r *Retryer) check(ctx context.Context, nilFn bool) error {
	switch {
	case r == nil:
		return ErrNilRetryer
	case ctx == nil:
		return ErrNilContext
	case nilFn:
		return ErrNilFunc
	}
	return nil
}

func (r *Retryer) options(ctx context.Context) []retry.Option {
	policy := r.retryPolicy
	if policy == nil {
		policy = NewFixedRetry(3)
	}
	backoff := r.backoffPolicy
	if backoff == nil {
		backoff = NewExponentialBackoff()
	}

	opts := []retry.Option{retry.Context(ctx), retry.LastErrorOnly(true)}
	if n := policy.MaxAttempts(); n <= 0 {
		opts = append(opts, retry.UntilSucceeded())
	} else {
		opts = append(opts, retry.Attempts(uint(n)))
	}

	// 每次执行独立计数
	var failures atomic.Int64
	opts = append(opts,
		retry.RetryIf(func(err error) bool {
			n := int(failures.Add(1))
			return retry.IsRecoverable(err) && policy.ShouldRetry(ctx, n, err)
		}),
		retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
			return backoff.NextDelay(clampUint(n))
		}),
	)
	if r.onRetry != nil {
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			// retry-go 的 n 从 0 开始
			r.onRetry(clampUint(n)+1, err)
		}))
	}
	return opts
}

func clampUint(n uint) int {
	if n > uint(math.MaxInt) {
		return math.MaxInt
	}
	return int(n)
}
