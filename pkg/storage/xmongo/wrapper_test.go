package xmongo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew_NilClient(t *testing.T) {
	m, err := New(nil)
	assert.ErrorIs(t, err, ErrNilClient)
	assert.Nil(t, m)
}

func TestNewWrapper_Defaults(t *testing.T) {
	w, err := newTestWrapper(nil)
	require.NoError(t, err)
	defer w.Close(context.Background())

	assert.Equal(t, DefaultQueryTimeout, w.options.QueryTimeout)
	assert.False(t, w.slowQueryDetector.Enabled())
	assert.Nil(t, w.Client())
}

func TestWrapper_Stats_Initial(t *testing.T) {
	w, err := newTestWrapper(&mockClientOps{sessionsInProgress: 3})
	require.NoError(t, err)
	defer w.Close(context.Background())

	stats := w.Stats()
	assert.Zero(t, stats.PingCount)
	assert.Zero(t, stats.PingErrors)
	assert.Zero(t, stats.SlowQueries)
	assert.Zero(t, stats.Queries)
	assert.Zero(t, stats.QueryErrors)
	assert.Equal(t, 3, stats.Pool.InUseConnections)
}

func TestWrapper_Health(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ops := &mockClientOps{}
		w, err := newTestWrapper(ops, WithHealthTimeout(time.Second))
		require.NoError(t, err)
		defer w.Close(context.Background())

		require.NoError(t, w.Health(context.Background()))
		assert.True(t, ops.pingHasDeadline)
		assert.Equal(t, int64(1), w.Stats().PingCount)
		assert.Zero(t, w.Stats().PingErrors)
	})

	t.Run("ping error", func(t *testing.T) {
		pingErr := errors.New("no primary")
		w, err := newTestWrapper(&mockClientOps{pingErr: pingErr})
		require.NoError(t, err)
		defer w.Close(context.Background())

		assert.ErrorIs(t, w.Health(context.Background()), pingErr)
		assert.Equal(t, int64(1), w.Stats().PingErrors)
	})

	t.Run("nil context", func(t *testing.T) {
		w, err := newTestWrapper(nil)
		require.NoError(t, err)
		defer w.Close(context.Background())

		//nolint:staticcheck // 测试 nil ctx
		assert.ErrorIs(t, w.Health(nil), ErrNilContext)
	})

	t.Run("closed", func(t *testing.T) {
		w, err := newTestWrapper(nil)
		require.NoError(t, err)
		require.NoError(t, w.Close(context.Background()))

		assert.ErrorIs(t, w.Health(context.Background()), ErrClosed)
	})
}

func TestWrapper_Close(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		ops := &mockClientOps{}
		w, err := newTestWrapper(ops)
		require.NoError(t, err)

		require.NoError(t, w.Close(context.Background()))
		require.NoError(t, w.Close(context.Background()))
		assert.Equal(t, 1, ops.disconnectCount)
	})

	t.Run("disconnect error", func(t *testing.T) {
		discErr := errors.New("socket closed")
		w, err := newTestWrapper(&mockClientOps{disconnectErr: discErr})
		require.NoError(t, err)

		err = w.Close(context.Background())
		assert.ErrorIs(t, err, discErr)
		assert.Contains(t, err.Error(), "xmongo: disconnect")
	})

	t.Run("nil context", func(t *testing.T) {
		w, err := newTestWrapper(nil)
		require.NoError(t, err)
		//nolint:staticcheck // nil 视为 Background
		assert.NoError(t, w.Close(nil))
	})
}

func TestWrapper_SlowQuery(t *testing.T) {
	t.Run("sync hook", func(t *testing.T) {
		var captured SlowQueryInfo
		w, err := newTestWrapper(nil,
			WithSlowQueryThreshold(10*time.Millisecond),
			WithSlowQueryHook(func(_ context.Context, info SlowQueryInfo) {
				captured = info
			}),
		)
		require.NoError(t, err)
		defer w.Close(context.Background())

		w.maybeSlowQuery(context.Background(), SlowQueryInfo{Database: "shop", Collection: "orders", Operation: opFind}, 5*time.Millisecond)
		assert.Zero(t, w.Stats().SlowQueries)

		w.maybeSlowQuery(context.Background(), SlowQueryInfo{Database: "shop", Collection: "orders", Operation: opFind}, 20*time.Millisecond)
		assert.Equal(t, int64(1), w.Stats().SlowQueries)
		assert.Equal(t, "orders", captured.Collection)
		assert.Equal(t, 20*time.Millisecond, captured.Duration)
	})

	t.Run("async hook drained on close", func(t *testing.T) {
		var n atomic.Int64
		w, err := newTestWrapper(nil,
			WithSlowQueryThreshold(time.Millisecond),
			WithAsyncSlowQueryHook(func(SlowQueryInfo) { n.Add(1) }),
			WithAsyncSlowQueryWorkers(2),
			WithAsyncSlowQueryQueueSize(16),
		)
		require.NoError(t, err)

		for range 5 {
			w.maybeSlowQuery(context.Background(), SlowQueryInfo{Operation: opCount}, time.Second)
		}
		require.NoError(t, w.Close(context.Background()))
		assert.Equal(t, int64(5), n.Load())
		assert.Equal(t, int64(5), w.Stats().SlowQueries)
	})

	t.Run("disabled", func(t *testing.T) {
		called := false
		w, err := newTestWrapper(nil, WithSlowQueryHook(func(context.Context, SlowQueryInfo) { called = true }))
		require.NoError(t, err)
		defer w.Close(context.Background())

		w.maybeSlowQuery(context.Background(), SlowQueryInfo{}, time.Hour)
		assert.False(t, called)
	})
}
