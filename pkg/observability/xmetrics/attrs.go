package xmetrics

import "time"

// 分页与数据库调用使用的属性名。
const (
	KeyPage       = "xpage.page"
	KeyLimit      = "xpage.limit"
	KeyStrategy   = "xpage.strategy"
	KeyTotalItems = "xpage.total_items"

	KeyDBSystem     = "db.system"
	KeyDBName       = "db.name"
	KeyDBCollection = "db.collection"
)

func String(key, value string) Attr { return Attr{Key: key, Value: value} }

func Bool(key string, value bool) Attr { return Attr{Key: key, Value: value} }

func Int(key string, value int) Attr { return Attr{Key: key, Value: value} }

func Int64(key string, value int64) Attr { return Attr{Key: key, Value: value} }

// Duration OTel 中以纳秒记录。
func Duration(key string, value time.Duration) Attr { return Attr{Key: key, Value: value} }

// Window 分页窗口属性：页码与每页条数。
func Window(page, limit int64) []Attr {
	return []Attr{Int64(KeyPage, page), Int64(KeyLimit, limit)}
}

// MongoCollection 数据库调用属性，system 固定为 mongodb。
func MongoCollection(database, collection string) []Attr {
	return []Attr{
		String(KeyDBSystem, "mongodb"),
		String(KeyDBName, database),
		String(KeyDBCollection, collection),
	}
}
