// Package storageopt 提供分页与存储适配层共享的工具：
// 分页参数校验与页数计算、慢查询检测、健康检查超时、原子统计计数器。
//
// 依赖方向：pkg/pagination/xpage、pkg/storage/xmongo → internal/storageopt → pkg/util/xpool。
package storageopt
