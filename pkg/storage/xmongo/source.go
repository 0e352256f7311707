package xmongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/omeyang/xpage/internal/storageopt"
	"github.com/omeyang/xpage/pkg/observability/xmetrics"
	"github.com/omeyang/xpage/pkg/pagination/xpage"
	"github.com/omeyang/xpage/pkg/resilience/xbreaker"
	"github.com/omeyang/xpage/pkg/resilience/xretry"
)

const (
	componentName = "xmongo"

	opFind      = "find"
	opCount     = "count"
	opAggregate = "aggregate"
)

// collectionSource 单个集合上的 xpage.Source。
type collectionSource struct {
	w    *mongoWrapper
	coll collectionOperations
}

func (s *collectionSource) Find(ctx context.Context, q xpage.FindQuery) ([]bson.M, error) {
	if len(q.Populate) > 0 {
		pipeline := BuildFindPipeline(q)
		return doQuery(ctx, s, opFind, q.Filter, func(ctx context.Context) ([]bson.M, error) {
			cursor, err := s.coll.Aggregate(ctx, pipeline)
			if err != nil {
				return nil, err
			}
			return decodeAll(ctx, cursor)
		})
	}

	filter := q.Filter
	if filter == nil {
		filter = bson.D{}
	}
	return doQuery(ctx, s, opFind, filter, func(ctx context.Context) ([]bson.M, error) {
		cursor, err := s.coll.Find(ctx, filter, buildFindOptions(q))
		if err != nil {
			return nil, err
		}
		return decodeAll(ctx, cursor)
	})
}

func (s *collectionSource) Count(ctx context.Context, filter any) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	return doQuery(ctx, s, opCount, filter, func(ctx context.Context) (int64, error) {
		return s.coll.CountDocuments(ctx, filter)
	})
}

func (s *collectionSource) Aggregate(ctx context.Context, pipeline []bson.D) ([]bson.M, error) {
	if pipeline == nil {
		pipeline = []bson.D{}
	}
	return doQuery(ctx, s, opAggregate, pipeline, func(ctx context.Context) ([]bson.M, error) {
		cursor, err := s.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, err
		}
		return decodeAll(ctx, cursor)
	})
}

// doQuery 数据源操作的公共路径：入参检查、超时兜底、观测、慢查询、重试与熔断。
func doQuery[T any](ctx context.Context, s *collectionSource, op string, filter any, fn func(context.Context) (T, error)) (out T, err error) {
	if ctx == nil {
		return out, ErrNilContext
	}
	if s.w.closed.Load() {
		return out, ErrClosed
	}
	if s.coll == nil {
		return out, ErrNilCollection
	}

	ctx, cancel := s.w.applyTimeout(ctx)
	defer cancel()

	db, coll := s.coll.DatabaseName(), s.coll.Name()
	ctx, span := xmetrics.Start(ctx, s.w.options.Observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: op,
		Kind:      xmetrics.KindClient,
		Attrs:     xmetrics.MongoCollection(db, coll),
	})

	start := time.Now()
	defer func() {
		s.w.queryCounter.Observe(err)
		s.w.maybeSlowQuery(ctx, SlowQueryInfo{
			Database:   db,
			Collection: coll,
			Operation:  op,
			Filter:     filter,
		}, storageopt.MeasureOperation(start))
		span.End(xmetrics.Result{Err: err, Records: records(out)})
	}()

	out, err = guard(ctx, s.w.options, fn)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("xmongo %s %s.%s: %w", op, db, coll, err)
	}
	return out, nil
}

// guard 熔断在内、重试在外。只有网络错误和超时会重试。
func guard[T any](ctx context.Context, o *Options, fn func(context.Context) (T, error)) (T, error) {
	call := fn
	if o.Breaker != nil {
		call = func(ctx context.Context) (T, error) {
			return xbreaker.Execute(ctx, o.Breaker, func() (T, error) {
				return fn(ctx)
			})
		}
	}
	if o.Retryer == nil {
		return call(ctx)
	}

	out, err := xretry.DoWithResult(ctx, o.Retryer, func(ctx context.Context) (T, error) {
		v, err := call(ctx)
		if err != nil && !isTransient(err) {
			return v, xretry.NewPermanentError(err)
		}
		return v, err
	})
	var pe *xretry.PermanentError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return out, err
}

// records 文档结果的条数，计数结果不记录。
func records(v any) int64 {
	if docs, ok := v.([]bson.M); ok {
		return int64(len(docs))
	}
	return -1
}

func isTransient(err error) bool {
	if xbreaker.IsBreakerError(err) {
		return false
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

func (w *mongoWrapper) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return storageopt.OperationContext(ctx, w.options.QueryTimeout)
}

// decodeAll 读取全部结果并关闭游标，空结果返回非 nil 切片。
func decodeAll(ctx context.Context, cursor *mongo.Cursor) (docs []bson.M, err error) {
	defer func() {
		if cerr := cursor.Close(ctx); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []bson.M{}
	}
	return docs, nil
}
