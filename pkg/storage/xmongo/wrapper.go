package xmongo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/omeyang/xpage/internal/storageopt"
	"github.com/omeyang/xpage/pkg/pagination/xpage"
)

type mongoWrapper struct {
	client    *mongo.Client
	clientOps clientOperations
	options   *Options

	slowQueryDetector *storageopt.SlowQueryDetector[SlowQueryInfo]

	healthCounter    storageopt.HealthCounter
	slowQueryCounter storageopt.SlowQueryCounter
	queryCounter     storageopt.QueryCounter

	closed atomic.Bool
}

func (w *mongoWrapper) Client() *mongo.Client {
	return w.client
}

func (w *mongoWrapper) Health(ctx context.Context) (err error) {
	if ctx == nil {
		return ErrNilContext
	}
	if w.closed.Load() {
		return ErrClosed
	}

	w.healthCounter.IncPing()
	defer func() {
		if err != nil {
			w.healthCounter.IncPingError()
		}
	}()

	ctx, cancel := storageopt.OperationContext(ctx, w.options.HealthTimeout)
	defer cancel()
	return w.clientOps.Ping(ctx, readpref.Primary())
}

func (w *mongoWrapper) Stats() Stats {
	return Stats{
		PingCount:   w.healthCounter.PingCount(),
		PingErrors:  w.healthCounter.PingErrors(),
		SlowQueries: w.slowQueryCounter.Count(),
		Queries:     w.queryCounter.QueryCount(),
		QueryErrors: w.queryCounter.QueryErrors(),
		Pool: PoolStats{
			InUseConnections: w.clientOps.NumberSessionsInProgress(),
		},
	}
}

func (w *mongoWrapper) Close(ctx context.Context) error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	w.slowQueryDetector.Close()
	if err := w.clientOps.Disconnect(ctx); err != nil {
		return fmt.Errorf("xmongo: disconnect: %w", err)
	}
	return nil
}

func (w *mongoWrapper) Source(coll *mongo.Collection) xpage.Source {
	return &collectionSource{w: w, coll: adaptCollection(coll)}
}

func (w *mongoWrapper) maybeSlowQuery(ctx context.Context, info SlowQueryInfo, duration time.Duration) {
	info.Duration = duration
	if w.slowQueryDetector.MaybeSlowQuery(ctx, info, duration) {
		w.slowQueryCounter.Inc()
	}
}
