// Package xjson 提供面向输出的 JSON 辅助函数。
package xjson
