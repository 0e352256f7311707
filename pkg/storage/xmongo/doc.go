// Package xmongo 基于 *mongo.Collection 的分页数据源与客户端包装器。
//
// # 设计理念
//
// xmongo 不包装底层客户端的全部 API，只提供：
//   - 统一的工厂方法（New）与底层客户端直接暴露（Client）
//   - 健康检查（Health）、统计（Stats）、关闭（Close）
//   - xpage.Source 实现（Source），供 xpage.Paginate / PaginateAggregate 使用
//   - 慢查询检测：同步（SlowQueryHook）与异步（AsyncSlowQueryHook）回调
//   - 可选的重试（WithRetry）与熔断（WithBreaker）
//
// 通过 Client() 直接执行的操作不会进入统计和慢查询检测。
//
//	m, err := xmongo.New(client, xmongo.WithSlowQueryThreshold(200*time.Millisecond))
//	if err != nil {
//		return err
//	}
//	defer m.Close(context.Background())
//
//	res, err := xpage.Paginate(ctx, m.Source(client.Database("shop").Collection("orders")), xpage.Query{
//		Filter:   bson.D{{Key: "status", Value: "paid"}},
//		Populate: []xpage.Populate{{Path: "customer", From: "customers"}},
//	})
//
// # 关联展开
//
// FindQuery.Populate 非空时，Find 改为等价的聚合：
// $match → $sort → $skip → $limit → 每个关联一个 $lookup（单值关联再 $unwind）→ $project。
//
// # 超时兜底
//
// 调用方 context 没有 deadline 时，每个数据源操作附加 QueryTimeout（默认 30 秒）。
// WithQueryTimeout(0) 关闭兜底。
//
// # 重试与熔断
//
// WithRetry 只重试网络错误与超时，其余错误立即返回。WithBreaker 包在重试内层，
// 熔断拒绝不会被重试。
//
// Close() 后除 Client() 和 Stats() 外的方法均返回 ErrClosed。并发安全。
package xmongo
