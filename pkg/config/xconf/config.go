package xconf

import "github.com/knadh/koanf/v2"

// Format 配置格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 配置接口。
type Config interface {
	// Client 返回底层 koanf 实例。
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置反序列化到 target，path 为空时反序列化全部。
	Unmarshal(path string, target any) error

	// Exists 判断 path 是否存在。
	Exists(path string) bool

	// Reload 重新读取配置文件，并发安全。
	Reload() error

	// Path 返回配置文件路径，字节配置返回空字符串。
	Path() string

	Format() Format
}

// Options 加载选项。
type Options struct {
	// Delim 键分隔符，默认 "."。
	Delim string
	// Tag 结构体标签名，默认 "koanf"。
	Tag string
}

// Option 加载选项函数。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Delim: ".", Tag: "koanf"}
}

// WithDelim 设置键分隔符，空字符串被忽略。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置结构体标签名，空字符串被忽略。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}
