package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskflow/task-api/internal/core/ports"
)

// taskFilter translates a TaskQuery into a Mongo filter. The owner clause is
// always present. Category and search are literal, case-insensitive substring
// matches.
func taskFilter(owner primitive.ObjectID, q ports.TaskQuery) bson.M {
	filter := bson.M{"user": owner}

	if q.Status != "" {
		filter["status"] = string(q.Status)
	}
	if q.Priority != "" {
		filter["priority"] = string(q.Priority)
	}
	if q.Category != "" {
		filter["category"] = containsCI(q.Category)
	}
	if q.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": containsCI(q.Search)},
			bson.M{"description": containsCI(q.Search)},
		}
	}
	return filter
}

// taskSort orders by the requested field with _id as tiebreaker, so pages
// never overlap or skip records when sort values repeat.
func taskSort(q ports.TaskQuery) bson.D {
	dir := 1
	if q.Descending {
		dir = -1
	}
	field := string(q.SortField)
	if field == "" {
		field = string(ports.SortCreatedAt)
	}
	return bson.D{
		{Key: field, Value: dir},
		{Key: "_id", Value: dir},
	}
}

func containsCI(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
