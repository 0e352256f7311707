package xmetrics

import (
	"context"
	"strconv"
)

// Kind 跨度类型。
type Kind int

const (
	// KindInternal 进程内计算，如一次分页调用。
	KindInternal Kind = iota
	// KindClient 对数据库的调用。
	KindClient
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindClient:
		return "client"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Status 调用结果。
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Attr 观测属性，Value 支持 string / bool / int / int64 / float64 / time.Duration。
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 跨度参数。Component 与 Operation 组成跨度名 "component.operation"。
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 跨度结束时的结果。
type Result struct {
	// Status 为空时按 Err 推导。
	Status Status
	Err    error
	// Records 本次调用返回的记录数，负数表示不记录。
	Records int64
	Attrs   []Attr
}

// Span 一次观测跨度，End 只生效一次。
type Span interface {
	End(result Result)
}

// Observer 观测入口。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 不做任何记录。
type NoopObserver struct{}

func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 空跨度。
type NoopSpan struct{}

func (NoopSpan) End(Result) {}

// Start 通过 observer 开始跨度，返回值总是非 nil。
// nil ctx 视为 Background，nil observer 或其返回的 nil 跨度退化为 NoopSpan。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	spanCtx, span := observer.Start(ctx, opts)
	if spanCtx == nil {
		spanCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return spanCtx, span
}

func (r Result) status() Status {
	switch {
	case r.Status != "":
		return r.Status
	case r.Err != nil:
		return StatusError
	}
	return StatusOK
}
