package xmongo

// Stats 包装器统计。
type Stats struct {
	PingCount   int64
	PingErrors  int64
	SlowQueries int64
	// Queries 数据源操作次数（find / count / aggregate）。
	Queries     int64
	QueryErrors int64
	Pool        PoolStats
}

// PoolStats 连接池状态。
//
// driver v2 不暴露连接池明细，InUseConnections 取自 NumberSessionsInProgress，
// 是活跃会话数的近似。
type PoolStats struct {
	InUseConnections int
}
