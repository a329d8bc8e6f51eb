package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"testing"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

func samplePost(id int64) *domain.PostWithAuthor {
	return &domain.PostWithAuthor{
		Post:   domain.Post{ID: id, Title: "Hello", Slug: "hello", Tags: []string{"go"}, AuthorID: 1, ViewCount: 3},
		Author: domain.AuthorSummary{ID: 1, Username: "alice"},
	}
}

func TestPostHandler_List_ParsesFilters(t *testing.T) {
	stub := &stubPostService{
		listFn: func(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error) {
			if d.Filter.Published == nil || !*d.Filter.Published {
				t.Fatalf("expected published filter")
			}
			if d.Filter.AuthorID == nil || *d.Filter.AuthorID != 1 {
				t.Fatalf("expected authorId filter")
			}
			return &ports.Page[domain.PostWithAuthor]{
				Items: []domain.PostWithAuthor{*samplePost(1)},
				Total: 1, Page: 1, Limit: 10, TotalPages: 1,
			}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/posts?published=true&authorId=1", "")

	if err := NewPostHandler(stub, &stubStatsService{}).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Data []struct {
			ID     int64          `json:"id"`
			Author map[string]any `json:"author"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Author["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
}

func TestPostHandler_List_InvalidAuthorID(t *testing.T) {
	stub := &stubPostService{}
	c, _ := newContext(http.MethodGet, "/api/posts?authorId=abc", "")

	if err := NewPostHandler(stub, &stubStatsService{}).List(c); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestPostHandler_Search_EchoesKeyword(t *testing.T) {
	stub := &stubPostService{
		searchFn: func(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error) {
			if d.Filter.Search != "golang" {
				t.Fatalf("unexpected keyword %q", d.Filter.Search)
			}
			return &ports.Page[domain.PostWithAuthor]{Page: 1, Limit: 10}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/posts/search?q=+golang+", "")

	if err := NewPostHandler(stub, &stubStatsService{}).Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Query      string          `json:"query"`
		Data       json.RawMessage `json:"data"`
		Pagination map[string]any  `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Query != "golang" || string(resp.Data) != "[]" || resp.Pagination["total"] != float64(0) {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestPostHandler_Search_BlankKeyword(t *testing.T) {
	stub := &stubPostService{}
	c, _ := newContext(http.MethodGet, "/api/posts/search?q=%20%20", "")

	if err := NewPostHandler(stub, &stubStatsService{}).Search(c); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestPostHandler_Tags(t *testing.T) {
	stats := &stubStatsService{
		tagsFn: func(ctx context.Context) ([]domain.TagCount, error) {
			return []domain.TagCount{{Tag: "a", Count: 2}, {Tag: "b", Count: 1}}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/posts/tags", "")

	if err := NewPostHandler(&stubPostService{}, stats).Tags(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp tagsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	want := []domain.TagCount{{Tag: "a", Count: 2}, {Tag: "b", Count: 1}}
	if !slices.Equal(resp.Data, want) {
		t.Fatalf("expected %v, got %v", want, resp.Data)
	}
}

func TestPostHandler_Get(t *testing.T) {
	stub := &stubPostService{
		getFn: func(ctx context.Context, id int64) (*domain.PostWithAuthor, error) {
			if id != 10 {
				t.Fatalf("unexpected id %d", id)
			}
			return samplePost(10), nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/posts/10", "", "id", "10")

	if err := NewPostHandler(stub, &stubStatsService{}).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPostHandler_GetBySlug_NotFound(t *testing.T) {
	stub := &stubPostService{
		getBySlugFn: func(ctx context.Context, slug string) (*domain.PostWithAuthor, error) {
			if slug != "missing" {
				t.Fatalf("unexpected slug %q", slug)
			}
			return nil, domain.ErrPostNotFound
		},
	}
	c, _ := newContext(http.MethodGet, "/api/posts/slug/missing", "", "slug", "missing")

	if err := NewPostHandler(stub, &stubStatsService{}).GetBySlug(c); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostHandler_Create_DefaultsTags(t *testing.T) {
	stub := &stubPostService{
		createFn: func(ctx context.Context, in ports.CreatePostInput) (*domain.PostWithAuthor, error) {
			if in.Tags == nil || len(in.Tags) != 0 {
				t.Fatalf("expected empty non-nil tags, got %#v", in.Tags)
			}
			if in.AuthorID != 1 || in.Slug != "hello" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return samplePost(1), nil
		},
	}
	body := `{"title":"Hello","slug":"hello","authorId":1}`
	c, rec := newContext(http.MethodPost, "/api/posts", body)

	if err := NewPostHandler(stub, &stubStatsService{}).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestPostHandler_Create_MissingFields(t *testing.T) {
	stub := &stubPostService{}
	c, _ := newContext(http.MethodPost, "/api/posts", `{"thumbnail":"nope"}`)

	err := NewPostHandler(stub, &stubStatsService{}).Create(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// title, slug, authorId and thumbnail
	if len(ve.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %v", ve.Fields)
	}
}

func TestPostHandler_Create_AuthorMissing(t *testing.T) {
	stub := &stubPostService{
		createFn: func(ctx context.Context, in ports.CreatePostInput) (*domain.PostWithAuthor, error) {
			return nil, domain.ErrAuthorNotFound
		},
	}
	c, _ := newContext(http.MethodPost, "/api/posts", `{"title":"t","slug":"s","authorId":99}`)

	if err := NewPostHandler(stub, &stubStatsService{}).Create(c); !errors.Is(err, domain.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

func TestPostHandler_Update_TagsOnlyWhenSent(t *testing.T) {
	calls := 0
	stub := &stubPostService{
		updateFn: func(ctx context.Context, id int64, in ports.UpdatePostInput) (*domain.PostWithAuthor, error) {
			calls++
			switch calls {
			case 1:
				if in.Tags != nil {
					t.Fatalf("tags must stay nil when absent, got %#v", in.Tags)
				}
			case 2:
				if in.Tags == nil || len(in.Tags) != 0 {
					t.Fatalf("explicit empty tags must be kept, got %#v", in.Tags)
				}
			}
			return samplePost(id), nil
		},
	}
	h := NewPostHandler(stub, &stubStatsService{})

	c, _ := newContext(http.MethodPut, "/api/posts/1", `{"title":"New"}`, "id", "1")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	c, _ = newContext(http.MethodPut, "/api/posts/1", `{"tags":[]}`, "id", "1")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestPostHandler_Delete_NotFound(t *testing.T) {
	stub := &stubPostService{
		deleteFn: func(ctx context.Context, id int64) error { return domain.ErrPostNotFound },
	}
	c, _ := newContext(http.MethodDelete, "/api/posts/8", "", "id", "8")

	if err := NewPostHandler(stub, &stubStatsService{}).Delete(c); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
