package postgres

import (
	"strconv"
	"strings"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

// arg binds v and returns its placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) and(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func userWhere(f domain.UserFilter) *where {
	w := &where{}
	if f.IsActive != nil {
		w.and("is_active = " + w.arg(*f.IsActive))
	}
	if len(f.IDs) > 0 {
		w.and("id = ANY(" + w.arg(f.IDs) + ")")
	}
	return w
}

// postWhere translates a PostFilter. The keyword is matched as a
// case-insensitive substring of title or content, or as an exact lower-case
// tag.
func postWhere(f domain.PostFilter) *where {
	w := &where{}
	if f.Published != nil {
		w.and("published = " + w.arg(*f.Published))
	}
	if f.AuthorID != nil {
		w.and("author_id = " + w.arg(*f.AuthorID))
	} else if len(f.AuthorIDs) > 0 {
		w.and("author_id = ANY(" + w.arg(f.AuthorIDs) + ")")
	}
	if f.Search != "" {
		q := w.arg(strings.ToLower(f.Search))
		w.and("(strpos(lower(title), " + q + ") > 0" +
			" OR strpos(lower(coalesce(content, '')), " + q + ") > 0" +
			" OR " + q + " = ANY(tags))")
	}
	return w
}

var sortColumns = map[query.SortField]string{
	query.SortCreatedAt: "created_at",
	query.SortViewCount: "view_count",
	query.SortTitle:     "title",
}

// orderLimit renders ORDER BY with an id tie-break, then LIMIT and OFFSET.
func orderLimit(w *where, opts ports.FindOptions) string {
	col, ok := sortColumns[opts.Sort.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if opts.Sort.Order == query.Desc {
		dir = "DESC"
	}

	var b strings.Builder
	b.WriteString(" ORDER BY " + col + " " + dir + ", id ASC")
	if opts.Limit > 0 {
		b.WriteString(" LIMIT " + w.arg(opts.Limit))
	}
	if opts.Offset > 0 {
		b.WriteString(" OFFSET " + w.arg(opts.Offset))
	}
	return b.String()
}
