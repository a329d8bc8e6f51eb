package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

func TestUserHandler_List_PassesPagingAndRendersEnvelope(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[*domain.User], error) {
			if d.Page.Number != 2 || d.Page.Limit != 1 {
				t.Fatalf("unexpected page: %+v", d.Page)
			}
			return &ports.Page[*domain.User]{
				Items:      []*domain.User{{ID: 7, Email: "a@example.com", Username: "alice", PasswordHash: "secret-hash"}},
				Total:      3,
				Page:       2,
				Limit:      1,
				TotalPages: 3,
			}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/users?page=2&limit=1", "")

	if err := NewUserHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data       []map[string]any `json:"data"`
		Pagination map[string]any   `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0]["username"] != "alice" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
	if _, leaked := resp.Data[0]["passwordHash"]; leaked {
		t.Fatalf("password hash leaked: %+v", resp.Data[0])
	}
	if resp.Pagination["total"] != float64(3) || resp.Pagination["totalPages"] != float64(3) {
		t.Fatalf("unexpected pagination: %+v", resp.Pagination)
	}
}

func TestUserHandler_List_EmptyRendersArray(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[*domain.User], error) {
			return &ports.Page[*domain.User]{Page: 1, Limit: 10}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/users", "")

	if err := NewUserHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if string(resp["data"]) != "[]" {
		t.Fatalf("expected empty array, got %s", resp["data"])
	}
}

func TestUserHandler_ListWithPosts_AddsPostCount(t *testing.T) {
	stub := &stubUserService{
		listWithPostsFn: func(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[ports.UserWithPosts], error) {
			if d.Filter.IsActive == nil || !*d.Filter.IsActive {
				t.Fatalf("expected isActive=true filter")
			}
			return &ports.Page[ports.UserWithPosts]{
				Items: []ports.UserWithPosts{{
					User:  &domain.User{ID: 1, Username: "alice"},
					Posts: []*domain.Post{{ID: 10, Title: "a"}, {ID: 11, Title: "b"}},
				}},
				Total: 1, Page: 1, Limit: 10, TotalPages: 1,
			}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/users/with-posts?isActive=true", "")

	if err := NewUserHandler(stub).ListWithPosts(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Data []struct {
			Username string           `json:"username"`
			Posts    []map[string]any `json:"posts"`
			Count    struct {
				Posts int `json:"posts"`
			} `json:"_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Count.Posts != 2 || len(resp.Data[0].Posts) != 2 {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
}

func TestUserHandler_Get_RendersPostSummaries(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stub := &stubUserService{
		getFn: func(ctx context.Context, id int64) (*ports.UserDetail, error) {
			if id != 5 {
				t.Fatalf("unexpected id %d", id)
			}
			return &ports.UserDetail{
				User:  &domain.User{ID: 5, Username: "bob"},
				Posts: []*domain.Post{{ID: 1, Title: "t", Slug: "t", Content: strPtr("body"), CreatedAt: created}},
			}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/users/5", "", "id", "5")

	if err := NewUserHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Data struct {
			ID    int64            `json:"id"`
			Posts []map[string]any `json:"posts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Data.ID != 5 || len(resp.Data.Posts) != 1 {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
	if _, ok := resp.Data.Posts[0]["content"]; ok {
		t.Fatalf("summary must not carry content: %+v", resp.Data.Posts[0])
	}
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	stub := &stubUserService{
		getFn: func(ctx context.Context, id int64) (*ports.UserDetail, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	c, _ := newContext(http.MethodGet, "/api/users/abc", "", "id", "abc")

	err := NewUserHandler(stub).Get(c)
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	stub := &stubUserService{
		getFn: func(ctx context.Context, id int64) (*ports.UserDetail, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	c, _ := newContext(http.MethodGet, "/api/users/9", "", "id", "9")

	if err := NewUserHandler(stub).Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Posts_UsesSortAndRendersAuthor(t *testing.T) {
	stub := &stubUserService{
		authorPostsFn: func(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.AuthorPosts, error) {
			if d.Filter.AuthorID == nil || *d.Filter.AuthorID != 3 {
				t.Fatalf("unexpected author filter: %+v", d.Filter)
			}
			if d.Sort.Field != query.SortViewCount || d.Sort.Order != query.Asc {
				t.Fatalf("unexpected sort: %+v", d.Sort)
			}
			return &ports.AuthorPosts{
				Author: &domain.User{ID: 3, Username: "carol", Email: "c@example.com"},
				Posts:  []*domain.Post{{ID: 4}},
				Total:  1,
			}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/users/3/posts?sortBy=viewCount&order=asc", "", "id", "3")

	if err := NewUserHandler(stub).Posts(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		User  map[string]any   `json:"user"`
		Data  []map[string]any `json:"data"`
		Total int64            `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User["username"] != "carol" || resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, ok := resp.User["email"]; ok {
		t.Fatalf("author summary must not carry email")
	}
}

func TestUserHandler_Create_Success(t *testing.T) {
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			if in.Email != "a@example.com" || in.Username != "alice" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: 1, Email: in.Email, Username: in.Username, IsActive: true}, nil
		},
	}
	body := `{"email":"a@example.com","username":"alice","password":"secret1"}`
	c, rec := newContext(http.MethodPost, "/api/users", body)

	if err := NewUserHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "User created successfully" || resp.Data["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Create_ValidationFails(t *testing.T) {
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	body := `{"email":"not-an-email","username":"al","password":"123"}`
	c, _ := newContext(http.MethodPost, "/api/users", body)

	err := NewUserHandler(stub).Create(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", ve.Fields)
	}
}

func TestUserHandler_Create_Conflict(t *testing.T) {
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	body := `{"email":"a@example.com","username":"alice","password":"secret1"}`
	c, _ := newContext(http.MethodPost, "/api/users", body)

	if err := NewUserHandler(stub).Create(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUserHandler_Update_PassesOnlySetFields(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
			if id != 2 {
				t.Fatalf("unexpected id %d", id)
			}
			if in.IsActive == nil || *in.IsActive || in.Email != nil || in.Password != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: 2, Username: "bob"}, nil
		},
	}
	c, rec := newContext(http.MethodPut, "/api/users/2", `{"isActive":false}`, "id", "2")

	if err := NewUserHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Update_RejectsBadAvatar(t *testing.T) {
	stub := &stubUserService{}
	c, _ := newContext(http.MethodPut, "/api/users/2", `{"avatar":"not a url"}`, "id", "2")

	var ve *ValidationError
	if err := NewUserHandler(stub).Update(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	var deleted int64
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	c, rec := newContext(http.MethodDelete, "/api/users/4", "", "id", "4")

	if err := NewUserHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if deleted != 4 || rec.Code != http.StatusOK {
		t.Fatalf("unexpected result: id=%d code=%d", deleted, rec.Code)
	}
}
