// Package xmetrics 分页调用与数据库调用的观测接口。
//
// 调用方只依赖 Observer / Span / Attr，默认实现基于 OpenTelemetry；
// 未配置时使用 NoopObserver。
//
//	obs, err := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xpage",
//		Operation: "paginate",
//		Attrs:     xmetrics.Window(page, limit),
//	})
//	defer func() { span.End(xmetrics.Result{Err: err, Records: int64(len(docs))}) }()
//
// 跨度名为 "component.operation"，指标见 NewOTelObserver。
package xmetrics
