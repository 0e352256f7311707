package xbreaker

import "github.com/sony/gobreaker/v2"

type (
	// Counts 统计窗口内的请求计数。
	Counts = gobreaker.Counts
	// State 熔断器状态。
	State = gobreaker.State
)

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

var (
	// ErrOpenState 熔断器打开。
	ErrOpenState = gobreaker.ErrOpenState
	// ErrTooManyRequests 半开状态请求超限。
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)
