// Package xpage 为 MongoDB 风格的数据源提供分页查询。
//
// 两个入口：
//
//   - Paginate：过滤条件 + 排序 + 投影 + 关联展开，窗口查询与计数并发执行
//   - PaginateAggregate：聚合管道，默认用单个 $facet 阶段同时取窗口与总数，
//     也可选择 StrategyTwoCall 发两次聚合
//
// 两者都返回 Result：当前页数据与分页元数据（Meta）。每条记录会附加 id 字段，
// 值为 _id 的字符串形式；原记录不被修改。
//
// # 默认值
//
// Page、Limit 为 0 时取默认值 1、10，负数返回 ErrInvalidPage / ErrInvalidLimit。
// Sort 为 nil 时按 {createdAt: -1} 排序，Select 为 nil 时排除 password 字段；
// 传入空的 bson.D{} 可关闭对应默认值。
//
// # 数据源
//
// Source 抽象 find / count / aggregate 三种能力，xmongo.Mongo.Source 提供
// 基于 *mongo.Collection 的实现：
//
//	res, err := xpage.Paginate(ctx, m.Source(db.Collection("orders")), xpage.Query{
//		Filter: bson.D{{Key: "status", Value: "paid"}},
//		Page:   2,
//		Limit:  20,
//	})
//
// # 一致性
//
// 窗口与总数是两次独立读取（$facet 策略除外），并发写入下二者可能不一致，
// 本包不提供快照保证。
package xpage
