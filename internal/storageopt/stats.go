package storageopt

import (
	"sync/atomic"
	"time"
)

// HealthCounter 健康检查计数。
type HealthCounter struct {
	pings      atomic.Int64
	pingErrors atomic.Int64
}

func (h *HealthCounter) IncPing()          { h.pings.Add(1) }
func (h *HealthCounter) IncPingError()     { h.pingErrors.Add(1) }
func (h *HealthCounter) PingCount() int64  { return h.pings.Load() }
func (h *HealthCounter) PingErrors() int64 { return h.pingErrors.Load() }

// SlowQueryCounter 慢查询计数。
type SlowQueryCounter struct {
	count atomic.Int64
}

func (s *SlowQueryCounter) Inc()         { s.count.Add(1) }
func (s *SlowQueryCounter) Count() int64 { return s.count.Load() }

// QueryCounter 查询次数与失败次数。
type QueryCounter struct {
	queries atomic.Int64
	errors  atomic.Int64
}

// Observe 记录一次查询，err 非 nil 时计为失败。
func (q *QueryCounter) Observe(err error) {
	q.queries.Add(1)
	if err != nil {
		q.errors.Add(1)
	}
}

func (q *QueryCounter) QueryCount() int64  { return q.queries.Load() }
func (q *QueryCounter) QueryErrors() int64 { return q.errors.Load() }

// MeasureOperation 返回自 start 起的耗时。
func MeasureOperation(start time.Time) time.Duration {
	return time.Since(start)
}
