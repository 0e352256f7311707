package xmongo

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/xpage/pkg/pagination/xpage"
)

// BuildFindPipeline 把带关联展开的窗口查询转换为聚合管道。
//
// 先分页再 $lookup，关联只作用于当前页。
func BuildFindPipeline(q xpage.FindQuery) []bson.D {
	filter := q.Filter
	if filter == nil {
		filter = bson.D{}
	}

	pipeline := make([]bson.D, 0, 4+2*len(q.Populate))
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: filter}})
	if len(q.Sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: q.Sort}})
	}
	if q.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: q.Skip}})
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}

	for _, p := range q.Populate {
		if p.ForeignField == "" {
			p.ForeignField = "_id"
		}
		if p.As == "" {
			p.As = p.Path
		}
		pipeline = append(pipeline, lookupStage(p))
		if !p.Many {
			pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + p.As},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}})
		}
	}

	if len(q.Projection) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: q.Projection}})
	}
	return pipeline
}

func lookupStage(p xpage.Populate) bson.D {
	lookup := bson.D{
		{Key: "from", Value: p.From},
		{Key: "localField", Value: p.Path},
		{Key: "foreignField", Value: p.ForeignField},
		{Key: "as", Value: p.As},
	}
	if len(p.Select) > 0 {
		lookup = append(lookup, bson.E{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$project", Value: p.Select}},
		}})
	}
	return bson.D{{Key: "$lookup", Value: lookup}}
}

// buildFindOptions 空的排序、投影不下发。
func buildFindOptions(q xpage.FindQuery) *options.FindOptionsBuilder {
	opts := options.Find().SetSkip(q.Skip)
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}
	if len(q.Projection) > 0 {
		opts.SetProjection(q.Projection)
	}
	return opts
}
