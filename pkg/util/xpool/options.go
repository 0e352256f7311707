package xpool

import "github.com/omeyang/xpage/pkg/observability/xlog"

// Option Pool 配置。
type Option func(*options)

type options struct {
	// logger 为 nil 时 panic 写入 slog.Default()
	logger xlog.Logger
	name   string
}

// WithLogger 记录 handler panic 的日志，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 出现在 panic 日志的 pool 字段中。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
