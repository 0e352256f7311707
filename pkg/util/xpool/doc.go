// Package xpool 提供轻量级泛型 worker pool，用于异步执行可丢弃的任务。
//
// 典型用途是 storage 包的异步慢查询钩子：请求路径只负责 Submit，
// 回调在 worker 中执行，不增加请求延迟。
//
// # 注意事项
//
//   - New 创建后自动启动 worker，无需手动 Start
//   - Submit 非阻塞，队列满时返回 ErrQueueFull
//   - Close 等待队列中剩余任务处理完成后返回，重复调用返回 ErrPoolStopped
//   - Close 不可在 handler 内调用，否则会死锁
//   - handler panic 会被恢复，经 WithLogger 的 xlog.Logger（默认 slog.Default）记录 task 类型与堆栈，pool 继续工作
package xpool
