package xpage

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/omeyang/xpage/pkg/observability/xlog"
	"github.com/omeyang/xpage/pkg/observability/xmetrics"
)

const componentName = "xpage"

// call 单次分页调用的观测状态。
type call struct {
	op     string
	opts   options
	w      window
	extra  []xmetrics.Attr
	span   xmetrics.Span
	start  time.Time
	parent context.Context
}

func startCall(ctx context.Context, op string, o options, w window, extra ...xmetrics.Attr) (context.Context, *call) {
	attrs := append(xmetrics.Window(w.page, w.limit), extra...)
	spanCtx, span := xmetrics.Start(ctx, o.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: op,
		Kind:      xmetrics.KindInternal,
		Attrs:     attrs,
	})
	return spanCtx, &call{op: op, opts: o, w: w, extra: extra, span: span, start: time.Now(), parent: spanCtx}
}

func (c *call) end(res *Result, err error) {
	var total, returned int64
	if res != nil {
		total = res.Pagination.TotalItems
		returned = int64(len(res.Data))
	}
	c.span.End(xmetrics.Result{
		Err:     err,
		Records: returned,
		Attrs:   []xmetrics.Attr{xmetrics.Int64(xmetrics.KeyTotalItems, total)},
	})

	if c.opts.logger == nil {
		return
	}
	attrs := []slog.Attr{
		xlog.Component(componentName),
		slog.String("op", c.op),
		slog.Int64("page", c.w.page),
		slog.Int64("limit", c.w.limit),
		slog.Duration("duration", time.Since(c.start)),
	}
	for _, a := range c.extra {
		attrs = append(attrs, slog.Any(strings.TrimPrefix(a.Key, "xpage."), a.Value))
	}
	if err != nil {
		c.opts.logger.Warn(c.parent, "pagination failed", append(attrs, xlog.Err(err))...)
		return
	}
	c.opts.logger.Debug(c.parent, "page served",
		append(attrs, slog.Int64("total_items", total), slog.Int64("returned", returned))...)
}
