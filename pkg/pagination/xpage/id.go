package xpage

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// IDString 返回 _id 值的字符串形式。
//
// ObjectID 为 24 位小写十六进制，字符串原样，整数为十进制，
// 其他实现 fmt.Stringer 的类型用 String()，其余用 fmt.Sprint。
func IDString(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case int:
		return strconv.Itoa(id)
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// WithID 返回附加了 id 字段的浅拷贝；无 _id 或 _id 为 null 时只拷贝。
func WithID(doc bson.M) bson.M {
	out := make(bson.M, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	if raw, ok := doc["_id"]; ok && raw != nil {
		out["id"] = IDString(raw)
	}
	return out
}

func withIDs(docs []bson.M) []bson.M {
	out := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		out = append(out, WithID(doc))
	}
	return out
}
