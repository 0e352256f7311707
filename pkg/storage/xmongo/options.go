package xmongo

import (
	"context"
	"time"

	"github.com/omeyang/xpage/internal/storageopt"
	"github.com/omeyang/xpage/pkg/observability/xlog"
	"github.com/omeyang/xpage/pkg/observability/xmetrics"
	"github.com/omeyang/xpage/pkg/resilience/xbreaker"
	"github.com/omeyang/xpage/pkg/resilience/xretry"
)

// SlowQueryInfo 慢查询信息。
type SlowQueryInfo struct {
	Database   string
	Collection string
	// Operation find / count / aggregate。
	Operation string
	// Filter 原始查询条件或管道，写日志时注意脱敏。
	Filter   any
	Duration time.Duration
}

// SlowQueryHook 同步钩子，在请求路径上执行。
type SlowQueryHook func(ctx context.Context, info SlowQueryInfo)

// AsyncSlowQueryHook 异步钩子，经 worker pool 执行，队列满时丢弃。
type AsyncSlowQueryHook func(info SlowQueryInfo)

// DefaultQueryTimeout 数据源操作的默认兜底超时。
const DefaultQueryTimeout = 30 * time.Second

// Options 包装器配置。
type Options struct {
	HealthTimeout time.Duration

	// SlowQueryThreshold 为 0 时禁用慢查询检测。
	SlowQueryThreshold      time.Duration
	SlowQueryHook           SlowQueryHook
	AsyncSlowQueryHook      AsyncSlowQueryHook
	AsyncSlowQueryWorkers   int
	AsyncSlowQueryQueueSize int

	// QueryTimeout 仅在调用方 context 无 deadline 时生效，0 关闭。
	QueryTimeout time.Duration

	Observer xmetrics.Observer
	// Logger 记录异步慢查询钩子的 panic。
	Logger  xlog.Logger
	Retryer *xretry.Retryer
	Breaker *xbreaker.Breaker
}

// Option 配置函数。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		HealthTimeout:           storageopt.DefaultHealthTimeout,
		AsyncSlowQueryWorkers:   storageopt.DefaultAsyncWorkers,
		AsyncSlowQueryQueueSize: storageopt.DefaultAsyncQueueSize,
		QueryTimeout:            DefaultQueryTimeout,
		Observer:                xmetrics.NoopObserver{},
	}
}

// WithHealthTimeout 非正值被忽略。
func WithHealthTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.HealthTimeout = timeout
		}
	}
}

// WithSlowQueryThreshold 0 禁用，负值被忽略。
func WithSlowQueryThreshold(threshold time.Duration) Option {
	return func(o *Options) {
		if threshold >= 0 {
			o.SlowQueryThreshold = threshold
		}
	}
}

func WithSlowQueryHook(hook SlowQueryHook) Option {
	return func(o *Options) {
		o.SlowQueryHook = hook
	}
}

func WithAsyncSlowQueryHook(hook AsyncSlowQueryHook) Option {
	return func(o *Options) {
		o.AsyncSlowQueryHook = hook
	}
}

// WithAsyncSlowQueryWorkers 非正值被忽略。
func WithAsyncSlowQueryWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.AsyncSlowQueryWorkers = n
		}
	}
}

// WithAsyncSlowQueryQueueSize 非正值被忽略。
func WithAsyncSlowQueryQueueSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.AsyncSlowQueryQueueSize = n
		}
	}
}

// WithQueryTimeout 0 关闭兜底，负值被忽略。
func WithQueryTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout >= 0 {
			o.QueryTimeout = timeout
		}
	}
}

func WithObserver(observer xmetrics.Observer) Option {
	return func(o *Options) {
		if observer != nil {
			o.Observer = observer
		}
	}
}

func WithLogger(logger xlog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithRetry 对网络错误与超时重试。
func WithRetry(r *xretry.Retryer) Option {
	return func(o *Options) {
		o.Retryer = r
	}
}

// WithBreaker 为数据源操作加熔断。
func WithBreaker(b *xbreaker.Breaker) Option {
	return func(o *Options) {
		o.Breaker = b
	}
}
