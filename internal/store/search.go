package store

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/medlab-api/internal/pagination"
)

// Relevance weights per matched field group.
const (
	weightName            = 5
	weightTestName        = 4
	weightDescription     = 2
	weightTestDescription = 1
)

func searchPattern(term string) string {
	return regexp.QuoteMeta(strings.TrimSpace(term))
}

// searchFilter matches categories whose name or description, or any
// embedded test name or description, contains term (case-insensitive).
func searchFilter(term string) bson.M {
	if strings.TrimSpace(term) == "" {
		return bson.M{}
	}
	rx := primitive.Regex{Pattern: searchPattern(term), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": rx},
		bson.M{"tests.name": rx},
		bson.M{"description": rx},
		bson.M{"tests.description": rx},
	}}
}

// searchPipeline ranks matches by a weighted score, newest first on ties.
func searchPipeline(term string, p pagination.Params) mongo.Pipeline {
	pattern := searchPattern(term)

	matches := func(input any) bson.M {
		return bson.M{"$regexMatch": bson.M{
			"input":   bson.M{"$ifNull": bson.A{input, ""}},
			"regex":   pattern,
			"options": "i",
		}}
	}
	anyTest := func(field string) bson.M {
		return bson.M{"$anyElementTrue": bson.A{bson.M{"$map": bson.M{
			"input": bson.M{"$ifNull": bson.A{"$tests", bson.A{}}},
			"as":    "t",
			"in":    matches("$$t." + field),
		}}}}
	}
	weigh := func(cond bson.M, weight int) bson.M {
		return bson.M{"$cond": bson.A{cond, weight, 0}}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: searchFilter(term)}},
		{{Key: "$addFields", Value: bson.M{"score": bson.M{"$add": bson.A{
			weigh(matches("$name"), weightName),
			weigh(anyTest("name"), weightTestName),
			weigh(matches("$description"), weightDescription),
			weigh(anyTest("description"), weightTestDescription),
		}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "score", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: p.Skip()}},
		{{Key: "$limit", Value: int64(p.Limit)}},
	}
}
