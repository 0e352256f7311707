package xmongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// clientOperations 客户端级操作，*mongo.Client 实现此接口。
type clientOperations interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
	NumberSessionsInProgress() int
}

// collectionOperations 数据源用到的集合操作，便于注入 mock。
type collectionOperations interface {
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error)
	DatabaseName() string
	Name() string
}

// collectionAdapter 将 *mongo.Collection 适配为 collectionOperations。
type collectionAdapter struct {
	*mongo.Collection
}

func (a collectionAdapter) DatabaseName() string {
	if db := a.Database(); db != nil {
		return db.Name()
	}
	return ""
}

func adaptCollection(coll *mongo.Collection) collectionOperations {
	if coll == nil {
		return nil
	}
	return collectionAdapter{Collection: coll}
}
