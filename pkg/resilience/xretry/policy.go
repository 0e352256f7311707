package xretry

import (
	"context"
	"time"
)

// RetryPolicy 决定失败后是否继续。
type RetryPolicy interface {
	// MaxAttempts 最大尝试次数（含首次），0 表示不限。
	MaxAttempts() int
	// ShouldRetry attempt 为已失败次数，从 1 开始。
	ShouldRetry(ctx context.Context, attempt int, err error) bool
}

// BackoffPolicy 计算第 attempt 次失败后的等待时间。
type BackoffPolicy interface {
	NextDelay(attempt int) time.Duration
}

// FixedRetryPolicy 固定次数重试。
type FixedRetryPolicy struct {
	maxAttempts int
}

// NewFixedRetry maxAttempts 小于 1 时按 1 处理。
func NewFixedRetry(maxAttempts int) *FixedRetryPolicy {
	return &FixedRetryPolicy{maxAttempts: max(maxAttempts, 1)}
}

func (p *FixedRetryPolicy) MaxAttempts() int { return p.maxAttempts }

func (p *FixedRetryPolicy) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	if ctx.Err() != nil || attempt >= p.maxAttempts {
		return false
	}
	return IsRetryable(err)
}

// NeverRetryPolicy 只执行一次。
type NeverRetryPolicy struct{}

func NewNeverRetry() *NeverRetryPolicy { return &NeverRetryPolicy{} }

func (*NeverRetryPolicy) MaxAttempts() int { return 1 }

func (*NeverRetryPolicy) ShouldRetry(context.Context, int, error) bool { return false }

var (
	_ RetryPolicy = (*FixedRetryPolicy)(nil)
	_ RetryPolicy = (*NeverRetryPolicy)(nil)
)
