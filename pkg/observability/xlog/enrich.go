package xlog

import (
	"context"
	"log/slog"
)

type runIDKey struct{}

// ContextWithRunID 在 ctx 中携带一次执行的标识，经由该 ctx 写出的日志自动带 run_id。
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID 返回 ctx 携带的 run_id，没有时为空字符串。
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// enrichHandler 从 ctx 注入 run_id。
type enrichHandler struct {
	base slog.Handler
}

func (h enrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h enrichHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RunID(ctx); id != "" {
		// slog 约定修改前先 Clone
		r = r.Clone()
		r.AddAttrs(slog.String("run_id", id))
	}
	return h.base.Handle(ctx, r)
}

func (h enrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return enrichHandler{base: h.base.WithAttrs(attrs)}
}

func (h enrichHandler) WithGroup(name string) slog.Handler {
	return enrichHandler{base: h.base.WithGroup(name)}
}
