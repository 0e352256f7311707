package xpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
)

const (
	// MaxWorkers worker 数量上限。
	MaxWorkers = 1 << 16

	// MaxQueueSize 队列大小上限。
	MaxQueueSize = 1 << 24
)

var _ io.Closer = (*Pool[struct{}])(nil)

// Pool 是泛型 worker pool。
type Pool[T any] struct {
	handler func(T)
	queue   chan T
	opts    options
	workers int

	// mu 保护 closed 与 queue 的关闭，Submit 持读锁发送，Close 持写锁关闭。
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New 创建并启动 worker pool。
func New[T any](workers, queueSize int, handler func(T), opts ...Option) (*Pool[T], error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if workers < 1 || workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}
	if queueSize < 1 || queueSize > MaxQueueSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQueueSize, queueSize)
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	p := &Pool[T]{
		handler: handler,
		queue:   make(chan T, queueSize),
		opts:    o,
		workers: workers,
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p, nil
}

// worker 从队列读取直到队列关闭，保证 Close 时处理完剩余任务。
func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

func (p *Pool[T]) run(task T) {
	defer func() {
		if r := recover(); r != nil {
			attrs := []slog.Attr{
				slog.String("pool", p.opts.name),
				slog.String("task_type", fmt.Sprintf("%T", task)),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			}
			if p.opts.logger != nil {
				p.opts.logger.Error(context.Background(), "xpool: worker panic recovered", attrs...)
				return
			}
			slog.LogAttrs(context.Background(), slog.LevelError, "xpool: worker panic recovered", attrs...)
		}
	}()
	p.handler(task)
}

// Submit 非阻塞地提交任务。
func (p *Pool[T]) Submit(task T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolStopped
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close 停止接收新任务并等待剩余任务处理完成。
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Workers 返回 worker 数量。
func (p *Pool[T]) Workers() int {
	return p.workers
}
