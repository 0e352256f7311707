package xmetrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrInstrument 创建 OTel 指标失败。
var ErrInstrument = errors.New("xmetrics: create instrument failed")

const (
	defaultInstrumentationName = "github.com/omeyang/xpage/xmetrics"

	metricCalls    = "xpage.calls"
	metricDuration = "xpage.call.duration"
	metricRecords  = "xpage.call.records"
)

type otelConfig struct {
	name           string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option OTel Observer 配置。
type Option func(*otelConfig)

// WithInstrumentationName 空字符串被忽略。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithTracerProvider nil 被忽略。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.tracerProvider = provider
		}
	}
}

// WithMeterProvider nil 被忽略。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelObserver 基于 OpenTelemetry 的 Observer，默认使用全局 provider。
//
// 指标：
//   - xpage.calls：调用次数（component / operation / status）
//   - xpage.call.duration：调用耗时，单位毫秒
//   - xpage.call.records：成功调用返回的记录数
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		name:           defaultInstrumentationName,
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.name)
	calls, err := meter.Int64Counter(metricCalls,
		metric.WithDescription("pagination and data source calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInstrument, metricCalls, err)
	}
	duration, err := meter.Float64Histogram(metricDuration,
		metric.WithDescription("call latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInstrument, metricDuration, err)
	}
	records, err := meter.Int64Histogram(metricRecords,
		metric.WithDescription("records returned per call"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInstrument, metricRecords, err)
	}

	return &otelObserver{
		tracer:   cfg.tracerProvider.Tracer(cfg.name),
		calls:    calls,
		duration: duration,
		records:  records,
	}, nil
}

type otelObserver struct {
	tracer   trace.Tracer
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	records  metric.Int64Histogram
}

func (o *otelObserver) Start(ctx context.Context, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	component, operation := orUnknown(opts.Component), orUnknown(opts.Operation)

	spanAttrs := append([]attribute.KeyValue{
		attribute.String("component", component),
		attribute.String("operation", operation),
	}, toOTel(opts.Attrs)...)
	kind := trace.SpanKindInternal
	if opts.Kind == KindClient {
		kind = trace.SpanKindClient
	}

	ctx, span := o.tracer.Start(ctx, component+"."+operation,
		trace.WithSpanKind(kind),
		trace.WithAttributes(spanAttrs...),
	)
	return ctx, &otelSpan{
		o:         o,
		span:      span,
		ctx:       ctx,
		component: component,
		operation: operation,
		start:     time.Now(),
	}
}

type otelSpan struct {
	o         *otelObserver
	span      trace.Span
	ctx       context.Context
	component string
	operation string
	start     time.Time
	once      sync.Once
}

func (s *otelSpan) End(result Result) {
	s.once.Do(func() { s.end(result) })
}

func (s *otelSpan) end(result Result) {
	status := result.status()
	if result.Err != nil {
		s.span.RecordError(result.Err)
	}
	switch {
	case status == StatusOK:
		s.span.SetStatus(codes.Ok, "")
	case result.Err != nil:
		s.span.SetStatus(codes.Error, result.Err.Error())
	default:
		s.span.SetStatus(codes.Error, "call failed")
	}
	if len(result.Attrs) > 0 {
		s.span.SetAttributes(toOTel(result.Attrs)...)
	}
	s.span.End()

	// 调用方 context 可能已取消
	ctx := context.WithoutCancel(s.ctx)
	set := metric.WithAttributes(
		attribute.String("component", s.component),
		attribute.String("operation", s.operation),
		attribute.String("status", string(status)),
	)
	s.o.calls.Add(ctx, 1, set)
	s.o.duration.Record(ctx, float64(time.Since(s.start))/float64(time.Millisecond), set)
	if status == StatusOK && result.Records >= 0 {
		s.o.records.Record(ctx, result.Records, set)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func toOTel(attrs []Attr) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "" || a.Value == nil {
			continue
		}
		out = append(out, keyValue(a))
	}
	return out
}

func keyValue(a Attr) attribute.KeyValue {
	switch v := a.Value.(type) {
	case string:
		return attribute.String(a.Key, v)
	case bool:
		return attribute.Bool(a.Key, v)
	case int:
		return attribute.Int(a.Key, v)
	case int64:
		return attribute.Int64(a.Key, v)
	case float64:
		return attribute.Float64(a.Key, v)
	case time.Duration:
		return attribute.Int64(a.Key, v.Nanoseconds())
	}
	return attribute.String(a.Key, fmt.Sprint(a.Value))
}
