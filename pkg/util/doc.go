// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xjson: JSON 序列化工具，Pretty 格式化输出
//   - xpool: 泛型 Worker Pool，可配置 worker/队列大小、优雅关闭
package util
