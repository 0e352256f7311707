// Package xbreaker 基于 sony/gobreaker/v2 的熔断器。
//
// Breaker 用 TripPolicy 决定何时从 Closed 进入 Open。熔断拒绝返回 *BreakerError，
// 其 Retryable() 为 false，与 xretry 组合时不会被重试。
//
//	b := xbreaker.NewBreaker("mongo",
//		xbreaker.WithTripPolicy(xbreaker.NewFailureRatio(0.5, 20)),
//		xbreaker.WithTimeout(30*time.Second),
//	)
//	n, err := xbreaker.Execute(ctx, b, func() (int64, error) {
//		return coll.CountDocuments(ctx, filter)
//	})
package xbreaker
