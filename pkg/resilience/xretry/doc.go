// Package xretry 基于 avast/retry-go/v5 的重试执行器。
//
// Retryer 组合 RetryPolicy（是否继续）与 BackoffPolicy（等多久）：
//
//	r := xretry.NewRetryer(
//		xretry.WithRetryPolicy(xretry.NewFixedRetry(3)),
//		xretry.WithBackoffPolicy(xretry.NewExponentialBackoff()),
//	)
//	docs, err := xretry.DoWithResult(ctx, r, func(ctx context.Context) ([]bson.M, error) {
//		return src.Find(ctx, q)
//	})
//
// 错误分类：实现 RetryableError 的错误按其 Retryable() 判断，
// PermanentError 永不重试，其余错误默认可重试。
package xretry
