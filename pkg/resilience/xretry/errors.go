package xretry

import "errors"

var (
	ErrNilRetryer = errors.New("xretry: nil retryer")
	ErrNilContext = errors.New("xretry: nil context")
	ErrNilFunc    = errors.New("xretry: nil function")
)

// RetryableError 可声明自身是否可重试的错误。
type RetryableError interface {
	error
	Retryable() bool
}

// PermanentError 不应重试的错误。
type PermanentError struct {
	Err error
}

// NewPermanentError 包装为永久性错误，nil 返回 nil。
func NewPermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

func (e *PermanentError) Retryable() bool { return false }

// TemporaryError 应当重试的错误。
type TemporaryError struct {
	Err error
}

// NewTemporaryError 包装为临时性错误，nil 返回 nil。
func NewTemporaryError(err error) error {
	if err == nil {
		return nil
	}
	return &TemporaryError{Err: err}
}

func (e *TemporaryError) Error() string { return e.Err.Error() }

func (e *TemporaryError) Unwrap() error { return e.Err }

func (e *TemporaryError) Retryable() bool { return true }

// IsRetryable nil 不重试；RetryableError 按声明；其他错误默认可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}

// IsPermanent 是否为不可重试错误。
func IsPermanent(err error) bool {
	return err != nil && !IsRetryable(err)
}
