// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xmongo: MongoDB 客户端封装，实现 xpage.Source
//
// 设计原则：
//   - 直接暴露底层客户端，只增强分页路径
//   - 内置可观测性（追踪、慢查询、统计）
//   - 可选重试与熔断
package storage
