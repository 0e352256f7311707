// Package xlog 基于 log/slog 的结构化日志库。
//
// # 创建 Logger
//
// 使用 Builder 模式，first-error-wins：遇到第一个配置错误后，后续设置被跳过，
// 错误在 Build 时返回。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xpagectl.log", xlog.RotateMaxSize(100)).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)，与 slog 一致。
// Level 实现 encoding.TextUnmarshaler，可直接从配置文件反序列化。
// Build 返回的 LoggerWithLevel 支持运行时调整级别，派生 logger 共享同一 LevelVar。
//
// # 文件轮转
//
// SetRotation 基于 lumberjack 按大小轮转，cleanup 负责关闭文件。
//
// # run_id
//
// ContextWithRunID 把执行标识放进 ctx，所有使用该 ctx 的日志自动带 run_id 字段，
// 下游包无需感知。
package xlog
