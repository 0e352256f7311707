package xpage

import (
	"context"
	"fmt"
	"math"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/omeyang/xpage/pkg/observability/xmetrics"
)

// PaginateAggregate 按聚合管道查询一页数据。
//
// 默认 StrategyFacet 在管道末尾追加
//
//	{$facet: {data: [{$skip: s}, {$limit: l}], total: [{$count: "count"}]}}
//
// 一次往返取回数据与总数；StrategyTwoCall 并发执行
// pipeline+[$skip,$limit] 与 pipeline+[$count]。两种策略结果一致。
// 调用方的 Pipeline 不会被修改。
func PaginateAggregate(ctx context.Context, src Source, q AggregateQuery, opts ...Option) (res *Result, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if src == nil {
		return nil, ErrNilSource
	}
	w, err := resolveWindow(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	ctx, c := startCall(ctx, OpPaginateAggregate, o, w, xmetrics.String(xmetrics.KeyStrategy, o.strategy.String()))
	defer func() { c.end(res, err) }()

	if o.strategy == StrategyTwoCall {
		return aggregateTwoCall(ctx, src, q.Pipeline, w)
	}
	return aggregateFacet(ctx, src, q.Pipeline, w)
}

// FacetStage 返回分页用的 $facet 阶段。
func FacetStage(skip, limit int64) bson.D {
	return bson.D{{Key: "$facet", Value: bson.D{
		{Key: "data", Value: bson.A{
			bson.D{{Key: "$skip", Value: skip}},
			bson.D{{Key: "$limit", Value: limit}},
		}},
		{Key: "total", Value: bson.A{
			bson.D{{Key: "$count", Value: "count"}},
		}},
	}}}
}

func aggregateFacet(ctx context.Context, src Source, pipeline []bson.D, w window) (*Result, error) {
	out, err := src.Aggregate(ctx, slices.Concat(pipeline, []bson.D{FacetStage(w.skip, w.limit)}))
	if err != nil {
		return nil, &QueryError{Op: OpPaginateAggregate, Stage: StageAggregate, Err: err}
	}
	docs, total, err := decodeFacet(out)
	if err != nil {
		return nil, &QueryError{Op: OpPaginateAggregate, Stage: StageFacet, Err: err}
	}
	return buildResult(docs, total, w), nil
}

func aggregateTwoCall(ctx context.Context, src Source, pipeline []bson.D, w window) (*Result, error) {
	windowPipeline := slices.Concat(pipeline, []bson.D{
		{{Key: "$skip", Value: w.skip}},
		{{Key: "$limit", Value: w.limit}},
	})
	countPipeline := slices.Concat(pipeline, []bson.D{
		{{Key: "$count", Value: "count"}},
	})

	docs, total, err := join(ctx, StageAggregate,
		func(ctx context.Context) ([]bson.M, error) { return src.Aggregate(ctx, windowPipeline) },
		func(ctx context.Context) (int64, error) {
			out, err := src.Aggregate(ctx, countPipeline)
			if err != nil {
				return 0, err
			}
			return decodeCount(out)
		},
	)
	if err != nil {
		return nil, stageError(OpPaginateAggregate, err)
	}
	return buildResult(docs, total, w), nil
}

// decodeFacet 解析 $facet 输出。没有输出文档视为空页。
func decodeFacet(out []bson.M) ([]bson.M, int64, error) {
	switch len(out) {
	case 0:
		return nil, 0, nil
	case 1:
	default:
		return nil, 0, fmt.Errorf("%w: %d documents", ErrMalformedFacet, len(out))
	}

	rawData, ok := out[0]["data"]
	if !ok {
		return nil, 0, fmt.Errorf("%w: missing data", ErrMalformedFacet)
	}
	items, ok := asArray(rawData)
	if !ok {
		return nil, 0, fmt.Errorf("%w: data is %T", ErrMalformedFacet, rawData)
	}
	docs := make([]bson.M, 0, len(items))
	for i, item := range items {
		doc, ok := asDocument(item)
		if !ok {
			return nil, 0, fmt.Errorf("%w: data[%d] is %T", ErrMalformedFacet, i, item)
		}
		docs = append(docs, doc)
	}

	rawTotal, ok := out[0]["total"]
	if !ok {
		return nil, 0, fmt.Errorf("%w: missing total", ErrMalformedFacet)
	}
	totals, ok := asArray(rawTotal)
	if !ok {
		return nil, 0, fmt.Errorf("%w: total is %T", ErrMalformedFacet, rawTotal)
	}
	counts := make([]bson.M, 0, len(totals))
	for _, t := range totals {
		doc, ok := asDocument(t)
		if !ok {
			return nil, 0, fmt.Errorf("%w: total entry is %T", ErrMalformedFacet, t)
		}
		counts = append(counts, doc)
	}
	total, err := decodeCount(counts)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// decodeCount 解析 $count 输出，空结果为 0。
func decodeCount(out []bson.M) (int64, error) {
	if len(out) == 0 {
		return 0, nil
	}
	raw, ok := out[0]["count"]
	if !ok {
		return 0, fmt.Errorf("%w: missing count field", ErrInvalidCount)
	}
	n, ok := toInt64(raw)
	if !ok || n < 0 {
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidCount, raw, raw)
	}
	return n, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	default:
		return 0, false
	}
}

func asArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []any:
		return a, true
	case []bson.M:
		out := make([]any, len(a))
		for i := range a {
			out[i] = a[i]
		}
		return out, true
	case []bson.D:
		out := make([]any, len(a))
		for i := range a {
			out[i] = a[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// asDocument 顶层转为 bson.M，嵌套值不变。
func asDocument(v any) (bson.M, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]any:
		return bson.M(d), true
	case bson.D:
		m := make(bson.M, len(d))
		for _, e := range d {
			m[e.Key] = e.Value
		}
		return m, true
	default:
		return nil, false
	}
}
