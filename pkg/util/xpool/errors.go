package xpool

import "errors"

var (
	ErrNilHandler       = errors.New("xpool: nil handler")
	ErrPoolStopped      = errors.New("xpool: pool stopped")
	ErrQueueFull        = errors.New("xpool: queue full")
	ErrInvalidWorkers   = errors.New("xpool: workers out of range")
	ErrInvalidQueueSize = errors.New("xpool: queue size out of range")
)
