package xbreaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker 熔断器，并发安全。
type Breaker struct {
	name          string
	tripPolicy    TripPolicy
	isSuccessful  func(err error) bool
	timeout       time.Duration
	interval      time.Duration
	maxRequests   uint32
	onStateChange func(name string, from, to State)

	cb *gobreaker.CircuitBreaker[any]
}

// BreakerOption 熔断器选项。
type BreakerOption func(*Breaker)

// WithTripPolicy 默认连续失败 5 次。
func WithTripPolicy(p TripPolicy) BreakerOption {
	return func(b *Breaker) {
		if p != nil {
			b.tripPolicy = p
		}
	}
}

// WithSuccessFunc 自定义成功判定，默认 err == nil。
func WithSuccessFunc(f func(err error) bool) BreakerOption {
	return func(b *Breaker) {
		b.isSuccessful = f
	}
}

// WithTimeout Open 到 HalfOpen 的等待时间，默认 60s。
func WithTimeout(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithInterval Closed 状态下清零计数的周期，默认 0 不清零。
func WithInterval(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d >= 0 {
			b.interval = d
		}
	}
}

// WithMaxRequests HalfOpen 状态允许的探测请求数，默认 1。
func WithMaxRequests(n uint32) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.maxRequests = n
		}
	}
}

// WithOnStateChange 状态变化回调。
func WithOnStateChange(f func(name string, from, to State)) BreakerOption {
	return func(b *Breaker) {
		b.onStateChange = f
	}
}

// NewBreaker 创建熔断器。
func NewBreaker(name string, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		name:        name,
		tripPolicy:  NewConsecutiveFailures(5),
		timeout:     60 * time.Second,
		maxRequests: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	st := gobreaker.Settings{
		Name:        b.name,
		MaxRequests: b.maxRequests,
		Interval:    b.interval,
		Timeout:     b.timeout,
		ReadyToTrip: b.tripPolicy.ReadyToTrip,
	}
	if b.isSuccessful != nil {
		st.IsSuccessful = b.isSuccessful
	}
	if b.onStateChange != nil {
		st.OnStateChange = b.onStateChange
	}
	b.cb = gobreaker.NewCircuitBreaker[any](st)
	return b
}

// Do 执行受保护的操作。ctx 仅用于入口检查。
func (b *Breaker) Do(ctx context.Context, fn func() error) error {
	_, err := Execute(ctx, b, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Execute Do 的泛型版本。
func Execute[T any](ctx context.Context, b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	switch {
	case b == nil:
		return zero, ErrNilBreaker
	case ctx == nil:
		return zero, ErrNilContext
	case fn == nil:
		return zero, ErrNilFunc
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, wrapBreakerError(err, b.name)
	}
	if typed, ok := out.(T); ok {
		return typed, nil
	}
	return zero, nil
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State { return b.cb.State() }

func (b *Breaker) Counts() Counts { return b.cb.Counts() }
