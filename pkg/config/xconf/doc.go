// Package xconf 基于 koanf 的配置加载。
//
// 支持 YAML 与 JSON 两种格式，从文件加载时按扩展名识别格式：
//
//	cfg, err := xconf.New("xpagectl.yaml")
//	if err != nil {
//		return err
//	}
//	var pc PageConfig
//	if err := cfg.Unmarshal("xpage", &pc); err != nil {
//		return err
//	}
//
// 从内存加载（如 ConfigMap 挂载内容）使用 NewFromBytes 并显式指定格式。
// 底层 koanf 实例可通过 Client() 直接访问。
package xconf
