package xmongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/omeyang/xpage/internal/storageopt"
	"github.com/omeyang/xpage/pkg/pagination/xpage"
)

// Mongo MongoDB 包装器。
type Mongo interface {
	// Client 返回底层客户端，经此执行的操作不计入统计。
	Client() *mongo.Client

	// Health 以主节点 Ping 检查连接，受 HealthTimeout 约束。
	Health(ctx context.Context) error

	Stats() Stats

	// Close 释放慢查询 worker 并断开连接，可重复调用。
	Close(ctx context.Context) error

	// Source 返回 coll 上的分页数据源。
	Source(coll *mongo.Collection) xpage.Source
}

// New 包装已连接的客户端。
func New(client *mongo.Client, opts ...Option) (Mongo, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return newWrapper(client, client, opts...)
}

func newWrapper(client *mongo.Client, ops clientOperations, opts ...Option) (*mongoWrapper, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	detector, err := storageopt.NewSlowQueryDetector(storageopt.SlowQueryOptions[SlowQueryInfo]{
		Threshold:      options.SlowQueryThreshold,
		SyncHook:       storageopt.SlowQueryHook[SlowQueryInfo](options.SlowQueryHook),
		AsyncHook:      storageopt.AsyncSlowQueryHook[SlowQueryInfo](options.AsyncSlowQueryHook),
		AsyncWorkers:   options.AsyncSlowQueryWorkers,
		AsyncQueueSize: options.AsyncSlowQueryQueueSize,
		Logger:         options.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &mongoWrapper{
		client:            client,
		clientOps:         ops,
		options:           options,
		slowQueryDetector: detector,
	}, nil
}
