//go:build integration

package xmongo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/xpage/pkg/pagination/xpage"
)

// =============================================================================
// 测试环境设置
// =============================================================================

func setupMongo(t *testing.T) *mongo.Client {
	t.Helper()

	uri := os.Getenv("XPAGE_MONGO_URI")
	if uri == "" {
		uri = startMongoContainer(t)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err, "mongo connect failed")
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Fatalf("mongo ping failed: %v", err)
	}
	return client
}

func startMongoContainer(t *testing.T) string {
	t.Helper()

	// 探测 Docker 可用性，避免 testcontainers 内部 panic
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not found in PATH, skipping integration test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("mongo container not available: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

// seedOrders 写入 25 个订单，每个关联一个客户，createdAt 递增。
func seedOrders(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx := context.Background()

	customers := make([]any, 5)
	customerIDs := make([]bson.ObjectID, 5)
	for i := range customers {
		customerIDs[i] = bson.NewObjectID()
		customers[i] = bson.D{
			{Key: "_id", Value: customerIDs[i]},
			{Key: "name", Value: fmt.Sprintf("customer-%d", i)},
			{Key: "email", Value: fmt.Sprintf("c%d@example.com", i)},
		}
	}
	_, err := db.Collection("customers").InsertMany(ctx, customers)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := make([]any, 25)
	for i := range orders {
		status := "paid"
		if i%5 == 0 {
			status = "refunded"
		}
		orders[i] = bson.D{
			{Key: "seq", Value: i},
			{Key: "status", Value: status},
			{Key: "customer", Value: customerIDs[i%5]},
			{Key: "password", Value: "secret"},
			{Key: "createdAt", Value: base.Add(time.Duration(i) * time.Hour)},
		}
	}
	_, err = db.Collection("orders").InsertMany(ctx, orders)
	require.NoError(t, err)
}

func TestXpage_Integration(t *testing.T) {
	client := setupMongo(t)

	db := client.Database(fmt.Sprintf("xpage_it_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
	})
	seedOrders(t, db)

	m, err := New(client, WithSlowQueryThreshold(time.Minute))
	require.NoError(t, err)
	defer m.Close(context.Background())

	require.NoError(t, m.Health(context.Background()))
	src := m.Source(db.Collection("orders"))
	ctx := context.Background()

	t.Run("Paginate_DefaultSortAndSelect", func(t *testing.T) {
		res, err := xpage.Paginate(ctx, src, xpage.Query{Page: 1, Limit: 10})
		require.NoError(t, err)

		require.Len(t, res.Data, 10)
		assert.EqualValues(t, 24, res.Data[0]["seq"])
		assert.NotContains(t, res.Data[0], "password")
		oid := res.Data[0]["_id"].(bson.ObjectID)
		assert.Equal(t, oid.Hex(), res.Data[0]["id"])

		assert.Equal(t, int64(25), res.Pagination.TotalItems)
		assert.Equal(t, int64(3), res.Pagination.TotalPages)
		require.NotNil(t, res.Pagination.NextPage)
		assert.Equal(t, int64(2), *res.Pagination.NextPage)
		assert.Nil(t, res.Pagination.PrevPage)
	})

	t.Run("Paginate_LastPage", func(t *testing.T) {
		res, err := xpage.Paginate(ctx, src, xpage.Query{Page: 3, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, res.Data, 5)
		assert.False(t, res.Pagination.HasNextPage)
		assert.True(t, res.Pagination.HasPrevPage)
	})

	t.Run("Paginate_Filter", func(t *testing.T) {
		res, err := xpage.Paginate(ctx, src, xpage.Query{
			Filter: bson.D{{Key: "status", Value: "refunded"}},
			Sort:   bson.D{{Key: "seq", Value: 1}},
			Limit:  2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Pagination.TotalItems)
		require.Len(t, res.Data, 2)
		assert.EqualValues(t, 0, res.Data[0]["seq"])
		assert.EqualValues(t, 5, res.Data[1]["seq"])
	})

	t.Run("Paginate_Populate", func(t *testing.T) {
		res, err := xpage.Paginate(ctx, src, xpage.Query{
			Limit: 5,
			Populate: []xpage.Populate{{
				Path:   "customer",
				From:   "customers",
				Select: bson.D{{Key: "email", Value: 0}},
			}},
		})
		require.NoError(t, err)
		require.Len(t, res.Data, 5)
		for _, doc := range res.Data {
			customer, ok := doc["customer"].(bson.D)
			require.True(t, ok, "customer should be populated, got %T", doc["customer"])
			c := customer.Map()
			assert.Contains(t, c, "name")
			assert.NotContains(t, c, "email")
			assert.NotContains(t, doc, "password")
		}
	})

	t.Run("PaginateAggregate_Strategies", func(t *testing.T) {
		pipeline := []bson.D{
			{{Key: "$match", Value: bson.D{{Key: "status", Value: "paid"}}}},
			{{Key: "$sort", Value: bson.D{{Key: "seq", Value: 1}}}},
		}
		for _, strategy := range []xpage.Strategy{xpage.StrategyFacet, xpage.StrategyTwoCall} {
			t.Run(strategy.String(), func(t *testing.T) {
				res, err := xpage.PaginateAggregate(ctx, src, xpage.AggregateQuery{
					Pipeline: pipeline,
					Page:     2,
					Limit:    8,
				}, xpage.WithStrategy(strategy))
				require.NoError(t, err)

				assert.Equal(t, int64(20), res.Pagination.TotalItems)
				assert.Equal(t, int64(3), res.Pagination.TotalPages)
				require.Len(t, res.Data, 8)
				assert.EqualValues(t, 11, res.Data[0]["seq"])
				assert.NotEmpty(t, res.Data[0]["id"])
			})
		}
	})

	t.Run("PaginateAggregate_Empty", func(t *testing.T) {
		res, err := xpage.PaginateAggregate(ctx, src, xpage.AggregateQuery{
			Pipeline: []bson.D{{{Key: "$match", Value: bson.D{{Key: "status", Value: "void"}}}}},
		})
		require.NoError(t, err)
		assert.Empty(t, res.Data)
		assert.Zero(t, res.Pagination.TotalItems)
		assert.Zero(t, res.Pagination.TotalPages)
	})

	stats := m.Stats()
	assert.Positive(t, stats.Queries)
	assert.Zero(t, stats.QueryErrors)
	assert.Equal(t, int64(1), stats.PingCount)
}
