package mongo

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

func userFilter(f domain.UserFilter) bson.M {
	filter := bson.M{}
	if f.IsActive != nil {
		filter["is_active"] = *f.IsActive
	}
	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	return filter
}

// postFilter translates a PostFilter. The keyword is matched literally,
// case-insensitively, against title and content, and exactly against tags in
// lower case.
func postFilter(f domain.PostFilter) bson.M {
	filter := bson.M{}
	if f.Published != nil {
		filter["published"] = *f.Published
	}
	if f.AuthorID != nil {
		filter["author_id"] = *f.AuthorID
	} else if len(f.AuthorIDs) > 0 {
		filter["author_id"] = bson.M{"$in": f.AuthorIDs}
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
			bson.M{"tags": strings.ToLower(f.Search)},
		}
	}
	return filter
}

var sortFields = map[query.SortField]string{
	query.SortCreatedAt: "created_at",
	query.SortViewCount: "view_count",
	query.SortTitle:     "title",
}

// sortDoc orders by the requested field with _id ascending as tie-break.
func sortDoc(s query.Sort) bson.D {
	field, ok := sortFields[s.Field]
	if !ok {
		field = "created_at"
	}
	dir := 1
	if s.Order == query.Desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

func findOptions(opts ports.FindOptions) *options.FindOptions {
	fo := options.Find().SetSort(sortDoc(opts.Sort))
	if opts.Offset > 0 {
		fo.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		fo.SetLimit(int64(opts.Limit))
	}
	return fo
}
