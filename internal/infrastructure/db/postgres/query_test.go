package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

func TestPostWhere_Empty(t *testing.T) {
	w := postWhere(domain.PostFilter{})
	assert.Empty(t, w.String())
	assert.Empty(t, w.args)
}

func TestPostWhere_SearchReusesPlaceholder(t *testing.T) {
	published := false
	w := postWhere(domain.PostFilter{Published: &published, Search: "GoLang"})

	assert.Equal(t,
		" WHERE published = $1 AND (strpos(lower(title), $2) > 0"+
			" OR strpos(lower(coalesce(content, '')), $2) > 0 OR $2 = ANY(tags))",
		w.String())
	assert.Equal(t, []any{false, "golang"}, w.args)
}

func TestPostWhere_AuthorIDs(t *testing.T) {
	w := postWhere(domain.PostFilter{AuthorIDs: []int64{1, 2}})
	assert.Equal(t, " WHERE author_id = ANY($1)", w.String())
}

func TestOrderLimit(t *testing.T) {
	w := userWhere(domain.UserFilter{})
	got := orderLimit(w, ports.FindOptions{Offset: 10, Limit: 5, Sort: query.Sort{Field: query.SortViewCount, Order: query.Desc}})
	assert.Equal(t, " ORDER BY view_count DESC, id ASC LIMIT $1 OFFSET $2", got)
	assert.Equal(t, []any{5, 10}, w.args)

	w = &where{}
	assert.Equal(t, " ORDER BY created_at ASC, id ASC", orderLimit(w, ports.FindOptions{}))
	assert.Empty(t, w.args)
}
