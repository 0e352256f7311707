package storageopt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/omeyang/xpage/pkg/observability/xlog"
	"github.com/omeyang/xpage/pkg/util/xpool"
)

// SlowQueryHook 同步钩子，在请求路径上执行，应保持微秒级。
type SlowQueryHook[T any] func(ctx context.Context, info T)

// AsyncSlowQueryHook 异步钩子，经 worker pool 执行；队列满时丢弃。
type AsyncSlowQueryHook[T any] func(info T)

const (
	DefaultAsyncWorkers   = 4
	DefaultAsyncQueueSize = 1000
)

// SlowQueryOptions 慢查询检测配置，Threshold 为 0 时禁用。
type SlowQueryOptions[T any] struct {
	Threshold      time.Duration
	SyncHook       SlowQueryHook[T]
	AsyncHook      AsyncSlowQueryHook[T]
	AsyncWorkers   int
	AsyncQueueSize int
	// Logger 记录异步钩子的 panic，可为 nil。
	Logger xlog.Logger
}

// SlowQueryDetector 慢查询检测器，并发安全。
type SlowQueryDetector[T any] struct {
	opts SlowQueryOptions[T]

	mu     sync.RWMutex
	pool   *xpool.Pool[T]
	closed bool
}

// NewSlowQueryDetector 设置了 AsyncHook 时立即创建 worker pool，参数非法返回错误。
func NewSlowQueryDetector[T any](opts SlowQueryOptions[T]) (*SlowQueryDetector[T], error) {
	if opts.AsyncWorkers <= 0 {
		opts.AsyncWorkers = DefaultAsyncWorkers
	}
	if opts.AsyncQueueSize <= 0 {
		opts.AsyncQueueSize = DefaultAsyncQueueSize
	}

	d := &SlowQueryDetector[T]{opts: opts}
	if opts.AsyncHook != nil {
		pool, err := xpool.New(opts.AsyncWorkers, opts.AsyncQueueSize, opts.AsyncHook,
			xpool.WithName("slow-query"), xpool.WithLogger(opts.Logger))
		if err != nil {
			return nil, fmt.Errorf("storageopt: create async pool: %w", err)
		}
		d.pool = pool
	}
	return d, nil
}

// Enabled 阈值大于 0 时启用。
func (d *SlowQueryDetector[T]) Enabled() bool {
	return d != nil && d.opts.Threshold > 0
}

// MaybeSlowQuery duration >= Threshold 时触发钩子并返回 true。
func (d *SlowQueryDetector[T]) MaybeSlowQuery(ctx context.Context, info T, duration time.Duration) bool {
	if !d.Enabled() || duration < d.opts.Threshold {
		return false
	}

	if d.opts.SyncHook != nil {
		d.opts.SyncHook(ctx, info)
	}

	d.mu.RLock()
	if !d.closed && d.pool != nil {
		_ = d.pool.Submit(info) //nolint:errcheck // 队列满时丢弃通知
	}
	d.mu.RUnlock()
	return true
}

// Close 排空异步队列后返回，可重复调用。
func (d *SlowQueryDetector[T]) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	pool := d.pool
	d.pool = nil
	d.mu.Unlock()

	// 锁外排空，避免阻塞并发的 MaybeSlowQuery
	if pool != nil {
		_ = pool.Close() //nolint:errcheck // 仅首次关闭会走到这里
	}
}
