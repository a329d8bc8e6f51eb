// Package query turns raw request parameters into bounded, typed query
// descriptors shared by every list endpoint.
//
// Parsing never consults the store. Lenient parameters (page, limit, sort,
// boolean filters) fall back to defaults; strict ones (ids, the search
// keyword) return a *domain.ParamError.
package query

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/postboard/blog-api/internal/core/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps Offset within int for every limit up to MaxLimit.
	MaxPage = math.MaxInt/MaxLimit + 1
)

// Params is the read side of a query string. url.Values satisfies it.
type Params interface {
	Get(key string) string
}

// Page is a 1-based page window. Limit is always within [1, MaxLimit].
type Page struct {
	Number int
	Limit  int
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages returns ceil(total / limit).
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return int((total + limit - 1) / limit)
}

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortViewCount SortField = "viewCount"
	SortTitle     SortField = "title"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort orders a post query. Stores break ties by id ascending.
type Sort struct {
	Field SortField
	Order SortOrder
}

// DefaultSort is newest first.
var DefaultSort = Sort{Field: SortCreatedAt, Order: Desc}

// Descriptor is the validated form of a list request for one entity kind.
type Descriptor[F any] struct {
	Page   Page
	Filter F
	Sort   Sort
}

// ParsePage reads "page" and "limit". Absent, non-numeric or non-positive
// values take the defaults. Limit is capped at MaxLimit and page at MaxPage,
// so oversized pages stay past the end instead of wrapping.
func ParsePage(p Params) Page {
	page := pageNumber(p.Get("page"))
	limit := atoiOr(p.Get("limit"), DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	return Page{Number: page, Limit: min(limit, MaxLimit)}
}

// ParseBool reads a tri-state flag: absent or empty yields nil, "true"
// yields true and any other value yields false.
func ParseBool(p Params, key string) *bool {
	raw := p.Get(key)
	if raw == "" {
		return nil
	}
	v := raw == "true"
	return &v
}

// ParseSort reads "sortBy" and "order". Unknown fields fall back to
// createdAt; anything but "asc" sorts descending.
func ParseSort(p Params) Sort {
	s := DefaultSort
	switch f := SortField(p.Get("sortBy")); f {
	case SortCreatedAt, SortViewCount, SortTitle:
		s.Field = f
	}
	if p.Get("order") == string(Asc) {
		s.Order = Asc
	}
	return s
}

// ParseKeyword reads the mandatory search keyword "q".
func ParseKeyword(p Params) (string, error) {
	q := strings.TrimSpace(p.Get("q"))
	if q == "" {
		return "", domain.NewParamError("q", "search query parameter 'q' is required")
	}
	return q, nil
}

// ParseID parses a positive integer identifier taken from a path segment.
func ParseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewParamError(name, "must be a positive integer")
	}
	return id, nil
}

// ParseOptionalID reads an optional integer filter. Absent yields nil.
func ParseOptionalID(p Params, key string) (*int64, error) {
	raw := p.Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := ParseID(key, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Users shapes GET /users and GET /users/with-posts.
func Users(p Params) Descriptor[domain.UserFilter] {
	return Descriptor[domain.UserFilter]{
		Page:   ParsePage(p),
		Filter: domain.UserFilter{IsActive: ParseBool(p, "isActive")},
		Sort:   DefaultSort,
	}
}

// Posts shapes GET /posts.
func Posts(p Params) (Descriptor[domain.PostFilter], error) {
	authorID, err := ParseOptionalID(p, "authorId")
	if err != nil {
		return Descriptor[domain.PostFilter]{}, err
	}
	return Descriptor[domain.PostFilter]{
		Page: ParsePage(p),
		Filter: domain.PostFilter{
			Published: ParseBool(p, "published"),
			AuthorID:  authorID,
		},
		Sort: DefaultSort,
	}, nil
}

// Search shapes GET /posts/search. A missing or blank keyword fails.
func Search(p Params) (Descriptor[domain.PostFilter], error) {
	q, err := ParseKeyword(p)
	if err != nil {
		return Descriptor[domain.PostFilter]{}, err
	}
	return Descriptor[domain.PostFilter]{
		Page: ParsePage(p),
		Filter: domain.PostFilter{
			Published: ParseBool(p, "published"),
			Search:    q,
		},
		Sort: DefaultSort,
	}, nil
}

// AuthorPosts shapes GET /users/{id}/posts. The listing is unpaginated, so
// Page is left zero.
func AuthorPosts(authorID int64, p Params) Descriptor[domain.PostFilter] {
	return Descriptor[domain.PostFilter]{
		Filter: domain.PostFilter{
			Published: ParseBool(p, "published"),
			AuthorID:  &authorID,
		},
		Sort: ParseSort(p),
	}
}

func pageNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange) && n > 0:
		return MaxPage
	case err != nil, n < 1:
		return DefaultPage
	}
	return min(n, MaxPage)
}

func atoiOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}
