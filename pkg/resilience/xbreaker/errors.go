package xbreaker

import (
	"errors"
	"fmt"
)

var (
	ErrNilBreaker = errors.New("xbreaker: nil breaker")
	ErrNilContext = errors.New("xbreaker: nil context")
	ErrNilFunc    = errors.New("xbreaker: nil function")
)

// BreakerError 熔断拒绝。
type BreakerError struct {
	Err   error
	Name  string
	State State
}

func (e *BreakerError) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("breaker %s: %v", e.Name, e.Err)
}

func (e *BreakerError) Unwrap() error { return e.Err }

// Retryable 熔断拒绝不重试。
func (e *BreakerError) Retryable() bool { return false }

// wrapBreakerError 只包装本熔断器直接返回的哨兵错误，状态由错误类型推导。
func wrapBreakerError(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case err == ErrOpenState: //nolint:errorlint // 只认直接返回的哨兵
		return &BreakerError{Err: err, Name: name, State: StateOpen}
	case err == ErrTooManyRequests: //nolint:errorlint // 同上
		return &BreakerError{Err: err, Name: name, State: StateHalfOpen}
	default:
		return err
	}
}

// IsOpen 是否因熔断器打开被拒绝。
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpenState)
}

// IsTooManyRequests 是否因半开请求超限被拒绝。
func IsTooManyRequests(err error) bool {
	return errors.Is(err, ErrTooManyRequests)
}

// IsBreakerError 是否为熔断拒绝。
func IsBreakerError(err error) bool {
	return IsOpen(err) || IsTooManyRequests(err)
}
