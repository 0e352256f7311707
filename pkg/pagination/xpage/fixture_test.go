package xpage

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// memSource 内存数据源，支持等值过滤、单键排序和分页相关的聚合阶段。
type memSource struct {
	docs []bson.M
}

var _ Source = (*memSource)(nil)

func newMemSource(n int) *memSource {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := make([]bson.M, 0, n)
	for i := range n {
		status := "paid"
		if i%2 == 1 {
			status = "open"
		}
		docs = append(docs, bson.M{
			"_id":       bson.NewObjectIDFromTimestamp(base.Add(time.Duration(i) * time.Second)),
			"seq":       int32(i),
			"status":    status,
			"createdAt": base.Add(time.Duration(i) * time.Minute),
			"password":  "secret",
		})
	}
	return &memSource{docs: docs}
}

func (s *memSource) Find(ctx context.Context, q FindQuery) ([]bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := s.match(s.docs, q.Filter)
	out = sortDocs(out, q.Sort)
	out = sliceWindow(out, q.Skip, q.Limit)
	return project(out, q.Projection), nil
}

func (s *memSource) Count(ctx context.Context, filter any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(s.match(s.docs, filter))), nil
}

func (s *memSource) Aggregate(ctx context.Context, pipeline []bson.D) ([]bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.run(slices.Clone(s.docs), pipeline)
}

func (s *memSource) run(docs []bson.M, pipeline []bson.D) ([]bson.M, error) {
	for _, stage := range pipeline {
		if len(stage) != 1 {
			return nil, fmt.Errorf("stage must have one key: %v", stage)
		}
		op, arg := stage[0].Key, stage[0].Value
		switch op {
		case "$match":
			docs = s.match(docs, arg)
		case "$sort":
			docs = sortDocs(docs, arg.(bson.D))
		case "$skip":
			docs = sliceWindow(docs, arg.(int64), 0)
		case "$limit":
			docs = sliceWindow(docs, 0, arg.(int64))
		case "$count":
			if len(docs) == 0 {
				return []bson.M{}, nil
			}
			docs = []bson.M{{arg.(string): int32(len(docs))}}
		case "$facet":
			facet := bson.M{}
			for _, e := range arg.(bson.D) {
				var sub []bson.D
				for _, st := range e.Value.(bson.A) {
					sub = append(sub, st.(bson.D))
				}
				res, err := s.run(slices.Clone(docs), sub)
				if err != nil {
					return nil, err
				}
				// 与驱动一致：嵌套文档解码为 bson.D
				arr := bson.A{}
				for _, r := range res {
					arr = append(arr, toD(r))
				}
				facet[e.Key] = arr
			}
			docs = []bson.M{facet}
		default:
			return nil, fmt.Errorf("unsupported stage %s", op)
		}
	}
	return docs, nil
}

func (s *memSource) match(docs []bson.M, filter any) []bson.M {
	var conds bson.D
	switch f := filter.(type) {
	case bson.D:
		conds = f
	case bson.M:
		for k, v := range f {
			conds = append(conds, bson.E{Key: k, Value: v})
		}
	}
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		ok := true
		for _, c := range conds {
			if d[c.Key] != c.Value {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func sortDocs(docs []bson.M, spec bson.D) []bson.M {
	if len(spec) == 0 {
		return docs
	}
	out := slices.Clone(docs)
	key, dir := spec[0].Key, spec[0].Value.(int)
	slices.SortStableFunc(out, func(a, b bson.M) int {
		c := compare(a[key], b[key])
		if dir < 0 {
			return -c
		}
		return c
	})
	return out
}

func compare(a, b any) int {
	switch x := a.(type) {
	case int32:
		return cmp.Compare(x, b.(int32))
	case string:
		return cmp.Compare(x, b.(string))
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}

func sliceWindow(docs []bson.M, skip, limit int64) []bson.M {
	if skip >= int64(len(docs)) {
		return []bson.M{}
	}
	docs = docs[skip:]
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

// project 只支持排除式投影。
func project(docs []bson.M, proj bson.D) []bson.M {
	if len(proj) == 0 {
		return docs
	}
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		c := make(bson.M, len(d))
		for k, v := range d {
			c[k] = v
		}
		for _, e := range proj {
			delete(c, e.Key)
		}
		out = append(out, c)
	}
	return out
}

func toD(m bson.M) bson.D {
	d := make(bson.D, 0, len(m))
	for k, v := range m {
		d = append(d, bson.E{Key: k, Value: v})
	}
	return d
}
