package xjson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Pretty 将任意值序列化为缩进 JSON 字符串，失败时返回 "<marshal error: ...>"。
func Pretty(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return string(data)
}

// Encode 将 v 以缩进 JSON 写入 w，不转义 HTML 字符。
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("xjson: encode: %w", err)
	}
	return nil
}
