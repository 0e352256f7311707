package xpage

import (
	"fmt"

	"github.com/omeyang/xpage/pkg/observability/xlog"
	"github.com/omeyang/xpage/pkg/observability/xmetrics"
)

// Strategy 聚合分页策略。
type Strategy int

const (
	// StrategyFacet 追加一个 $facet 阶段，一次往返取回窗口与总数。
	StrategyFacet Strategy = iota
	// StrategyTwoCall 并发执行窗口管道与计数管道。
	StrategyTwoCall
)

func (s Strategy) String() string {
	switch s {
	case StrategyFacet:
		return "facet"
	case StrategyTwoCall:
		return "twocall"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy 解析 facet / twocall。
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "facet":
		return StrategyFacet, nil
	case "twocall", "two-call":
		return StrategyTwoCall, nil
	default:
		return StrategyFacet, fmt.Errorf("xpage: unknown strategy %q", s)
	}
}

type options struct {
	observer xmetrics.Observer
	logger   xlog.Logger
	strategy Strategy
}

// Option 分页调用选项。
type Option func(*options)

// WithObserver 设置观测器，nil 被忽略。
func WithObserver(o xmetrics.Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithLogger 设置日志，默认不输出。
func WithLogger(l xlog.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// WithStrategy 设置聚合分页策略，仅对 PaginateAggregate 生效。
func WithStrategy(s Strategy) Option {
	return func(opts *options) {
		if s == StrategyFacet || s == StrategyTwoCall {
			opts.strategy = s
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{observer: xmetrics.NoopObserver{}, strategy: StrategyFacet}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
