package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

func TestPostFilter_Empty(t *testing.T) {
	assert.Empty(t, postFilter(domain.PostFilter{}))
}

func TestPostFilter_SearchEscapesAndLowersTag(t *testing.T) {
	published := true
	f := postFilter(domain.PostFilter{Search: "C++ Tips", Published: &published})

	assert.Equal(t, true, f["published"])
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	title := or[0].(bson.M)["title"].(primitive.Regex)
	assert.Equal(t, `C\+\+ Tips`, title.Pattern)
	assert.Equal(t, "i", title.Options)
	assert.Equal(t, bson.M{"tags": "c++ tips"}, or[2])
}

func TestPostFilter_AuthorIDWinsOverAuthorIDs(t *testing.T) {
	id := int64(3)
	f := postFilter(domain.PostFilter{AuthorID: &id, AuthorIDs: []int64{1, 2}})
	assert.Equal(t, int64(3), f["author_id"])

	f = postFilter(domain.PostFilter{AuthorIDs: []int64{1, 2}})
	assert.Equal(t, bson.M{"$in": []int64{1, 2}}, f["author_id"])
}

func TestUserFilter(t *testing.T) {
	active := false
	f := userFilter(domain.UserFilter{IsActive: &active, IDs: []int64{4}})
	assert.Equal(t, false, f["is_active"])
	assert.Equal(t, bson.M{"$in": []int64{4}}, f["_id"])
}

func TestSortDoc_AlwaysBreaksTiesByID(t *testing.T) {
	cases := []struct {
		in   query.Sort
		want bson.D
	}{
		{query.DefaultSort, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}},
		{query.Sort{Field: query.SortViewCount, Order: query.Asc}, bson.D{{Key: "view_count", Value: 1}, {Key: "_id", Value: 1}}},
		{query.Sort{Field: query.SortTitle, Order: query.Desc}, bson.D{{Key: "title", Value: -1}, {Key: "_id", Value: 1}}},
		{query.Sort{}, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sortDoc(tc.in))
	}
}

func TestFindOptions_UnlimitedWhenZero(t *testing.T) {
	fo := findOptions(ports.FindOptions{Sort: query.DefaultSort})
	assert.Nil(t, fo.Limit)
	assert.Nil(t, fo.Skip)

	fo = findOptions(ports.FindOptions{Offset: 20, Limit: 10, Sort: query.DefaultSort})
	require.NotNil(t, fo.Limit)
	assert.EqualValues(t, 10, *fo.Limit)
	assert.EqualValues(t, 20, *fo.Skip)
}
