package xmongo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// mockClientOps 实现 clientOperations 接口
type mockClientOps struct {
	mu                 sync.Mutex
	pingErr            error
	pingCount          int
	pingHasDeadline    bool
	disconnectErr      error
	disconnectCount    int
	sessionsInProgress int
}

func (m *mockClientOps) Ping(ctx context.Context, _ *readpref.ReadPref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingCount++
	_, m.pingHasDeadline = ctx.Deadline()
	return m.pingErr
}

func (m *mockClientOps) Disconnect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectCount++
	return m.disconnectErr
}

func (m *mockClientOps) NumberSessionsInProgress() int {
	return m.sessionsInProgress
}

// mockCollectionOps 实现 collectionOperations 接口，每次调用按文档生成新游标
type mockCollectionOps struct {
	mu sync.Mutex

	db   string
	name string

	countResult int64
	countErr    error
	findDocs    []any
	findErr     error
	aggDocs     []any
	aggErr      error

	// errs 非空时按顺序消费，先于上面的固定错误
	errs []error

	countFilters []any
	findFilters  []any
	findOpts     []options.FindOptions
	pipelines    []any
	deadlines    []bool
	calls        int
}

func (m *mockCollectionOps) record(ctx context.Context) error {
	m.calls++
	_, ok := ctx.Deadline()
	m.deadlines = append(m.deadlines, ok)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	return nil
}

func (m *mockCollectionOps) CountDocuments(ctx context.Context, filter any, _ ...options.Lister[options.CountOptions]) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countFilters = append(m.countFilters, filter)
	if err := m.record(ctx); err != nil {
		return 0, err
	}
	return m.countResult, m.countErr
}

func (m *mockCollectionOps) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findFilters = append(m.findFilters, filter)
	var applied options.FindOptions
	for _, opt := range opts {
		applied = mergeFindOptions(applied, opt)
	}
	m.findOpts = append(m.findOpts, applied)
	if err := m.record(ctx); err != nil {
		return nil, err
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	return mongo.NewCursorFromDocuments(m.findDocs, nil, nil)
}

func (m *mockCollectionOps) Aggregate(ctx context.Context, pipeline any, _ ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelines = append(m.pipelines, pipeline)
	if err := m.record(ctx); err != nil {
		return nil, err
	}
	if m.aggErr != nil {
		return nil, m.aggErr
	}
	return mongo.NewCursorFromDocuments(m.aggDocs, nil, nil)
}

func (m *mockCollectionOps) DatabaseName() string { return m.db }

func (m *mockCollectionOps) Name() string { return m.name }

func (m *mockCollectionOps) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestWrapper(ops *mockClientOps, opts ...Option) (*mongoWrapper, error) {
	if ops == nil {
		ops = &mockClientOps{}
	}
	return newWrapper(nil, ops, opts...)
}

func newTestSource(w *mongoWrapper, coll *mockCollectionOps) *collectionSource {
	return &collectionSource{w: w, coll: coll}
}

func orderDocs(n int) []any {
	docs := make([]any, n)
	for i := range docs {
		docs[i] = bson.D{{Key: "_id", Value: bson.NewObjectID()}, {Key: "seq", Value: int32(i)}}
	}
	return docs
}

func mergeFindOptions(base options.FindOptions, opt options.Lister[options.FindOptions]) options.FindOptions {
	for _, set := range opt.List() {
		_ = set(&base)
	}
	return base
}

func applyFindOptions(opt options.Lister[options.FindOptions]) options.FindOptions {
	return mergeFindOptions(options.FindOptions{}, opt)
}
