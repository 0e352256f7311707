package storageopt

import (
	"context"
	"time"
)

// DefaultHealthTimeout 健康检查默认超时。
const DefaultHealthTimeout = 5 * time.Second

// OperationContext 为 ctx 附加 timeout，timeout <= 0 时原样返回。nil ctx 视为 Background。
func OperationContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
