package xpage

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"
)

// Paginate 按 Query 查询一页数据。
//
// 窗口查询与计数并发执行，任一失败会取消另一个并返回 *QueryError，不返回部分结果。
// 参数错误在调用数据源之前返回。
func Paginate(ctx context.Context, src Source, q Query, opts ...Option) (res *Result, err error) {
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
	fq, err := q.findQuery(w)
	if err != nil {
		return nil, err
	}

	ctx, c := startCall(ctx, OpPaginate, applyOptions(opts), w)
	defer func() { c.end(res, err) }()

	docs, total, err := join(ctx, StageFind,
		func(ctx context.Context) ([]bson.M, error) { return src.Find(ctx, fq) },
		func(ctx context.Context) (int64, error) { return src.Count(ctx, fq.Filter) },
	)
	if err != nil {
		return nil, stageError(OpPaginate, err)
	}
	return buildResult(docs, total, w), nil
}

// stagedError 标记 join 中失败的一侧。
type stagedError struct {
	stage string
	err   error
}

func (e *stagedError) Error() string { return e.err.Error() }

func stageError(op string, err error) error {
	if se, ok := err.(*stagedError); ok { //nolint:errorlint // join 直接返回
		return &QueryError{Op: op, Stage: se.stage, Err: se.err}
	}
	return &QueryError{Op: op, Stage: StageFind, Err: err}
}

// join 并发执行窗口查询与计数，任一失败取消另一侧。
// 窗口侧失败标记为 fetchStage，计数侧标记为 count。
func join(
	ctx context.Context,
	fetchStage string,
	fetch func(context.Context) ([]bson.M, error),
	count func(context.Context) (int64, error),
) ([]bson.M, int64, error) {
	var (
		docs  []bson.M
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := fetch(gctx)
		if err != nil {
			return &stagedError{stage: fetchStage, err: err}
		}
		docs = d
		return nil
	})
	g.Go(func() error {
		n, err := count(gctx)
		if err != nil {
			return &stagedError{stage: StageCount, err: err}
		}
		if n < 0 {
			return &stagedError{stage: StageCount, err: ErrInvalidCount}
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func buildResult(docs []bson.M, total int64, w window) *Result {
	if int64(len(docs)) > w.limit {
		docs = docs[:w.limit]
	}
	return &Result{
		Data:       withIDs(docs),
		Pagination: NewMeta(total, w.limit, w.page),
	}
}
