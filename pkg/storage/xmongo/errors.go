package xmongo

import "errors"

var (
	// ErrNilClient 传入的客户端为 nil。
	ErrNilClient = errors.New("xmongo: nil client")

	// ErrNilContext 传入的 context 为 nil。Close 例外，nil 视为 Background。
	ErrNilContext = errors.New("xmongo: context must not be nil")

	// ErrClosed 包装器已关闭。
	ErrClosed = errors.New("xmongo: client closed")

	// ErrNilCollection 传入的集合为 nil。
	ErrNilCollection = errors.New("xmongo: nil collection")
)
