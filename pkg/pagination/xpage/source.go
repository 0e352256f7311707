package xpage

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

//go:generate mockgen -source=source.go -destination=mock_source_test.go -package=xpage

// Source 分页所需的数据源能力。
//
// 实现需要并发安全：Find 与 Count 会在不同 goroutine 中同时调用。
type Source interface {
	// Find 返回匹配 Filter 的窗口内记录，已应用排序、投影、关联展开。
	Find(ctx context.Context, q FindQuery) ([]bson.M, error)

	// Count 返回匹配 filter 的记录总数。
	Count(ctx context.Context, filter any) (int64, error)

	// Aggregate 执行聚合管道并返回全部结果。
	Aggregate(ctx context.Context, pipeline []bson.D) ([]bson.M, error)
}

// FindQuery 传给 Source.Find 的窗口查询，默认值已填充。
// Sort、Projection 为空时不排序、不投影。
type FindQuery struct {
	Filter     any
	Projection bson.D
	Sort       bson.D
	Populate   []Populate
	Skip       int64
	Limit      int64
}

// Populate 关联展开：用 Path 字段的值在 From 集合中按 ForeignField 查找。
type Populate struct {
	// Path 本地引用字段。
	Path string
	// From 外部集合名。
	From string
	// ForeignField 默认 "_id"。
	ForeignField string
	// As 结果字段，默认覆盖 Path。
	As string
	// Select 应用于被关联文档的投影。
	Select bson.D
	// Many 为 false 时展开为单个文档，找不到时字段缺失。
	Many bool
}

func (p Populate) normalize() (Populate, error) {
	if p.Path == "" || p.From == "" {
		return p, ErrInvalidPopulate
	}
	if p.ForeignField == "" {
		p.ForeignField = "_id"
	}
	if p.As == "" {
		p.As = p.Path
	}
	return p, nil
}
