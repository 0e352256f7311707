package xpage

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/omeyang/xpage/internal/storageopt"
)

// 默认分页参数。
const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 10
)

// DefaultSort 默认按创建时间倒序。
func DefaultSort() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}}
}

// DefaultSelect 默认排除 password 字段。
func DefaultSelect() bson.D {
	return bson.D{{Key: "password", Value: 0}}
}

// Query Paginate 的查询参数。
type Query struct {
	// Filter 过滤条件，nil 匹配全部。
	Filter any
	// Page 从 1 开始，0 取默认值。
	Page int64
	// Limit 每页条数，0 取默认值。
	Limit int64
	// Sort nil 使用 DefaultSort，bson.D{} 不排序。
	Sort bson.D
	// Select nil 使用 DefaultSelect，bson.D{} 不投影。
	Select bson.D
	// Populate 关联展开。
	Populate []Populate
}

// AggregateQuery PaginateAggregate 的查询参数。
type AggregateQuery struct {
	// Pipeline 不会被修改。
	Pipeline []bson.D
	Page     int64
	Limit    int64
}

// window 已解析的分页窗口。
type window struct {
	page  int64
	limit int64
	skip  int64
}

func resolveWindow(page, limit int64) (window, error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	skip, err := storageopt.ValidatePagination(page, limit)
	if err != nil {
		return window{}, mapWindowError(err)
	}
	return window{page: page, limit: limit, skip: skip}, nil
}

func (q Query) findQuery(w window) (FindQuery, error) {
	fq := FindQuery{
		Filter:     q.Filter,
		Sort:       q.Sort,
		Projection: q.Select,
		Skip:       w.skip,
		Limit:      w.limit,
	}
	if fq.Filter == nil {
		fq.Filter = bson.D{}
	}
	if fq.Sort == nil {
		fq.Sort = DefaultSort()
	}
	if fq.Projection == nil {
		fq.Projection = DefaultSelect()
	}
	if len(q.Populate) > 0 {
		fq.Populate = make([]Populate, 0, len(q.Populate))
		for _, p := range q.Populate {
			np, err := p.normalize()
			if err != nil {
				return FindQuery{}, err
			}
			fq.Populate = append(fq.Populate, np)
		}
	}
	return fq, nil
}
