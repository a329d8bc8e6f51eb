package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

type stubUserService struct {
	listFn          func(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[*domain.User], error)
	listWithPostsFn func(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[ports.UserWithPosts], error)
	getFn           func(ctx context.Context, id int64) (*ports.UserDetail, error)
	authorPostsFn   func(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.AuthorPosts, error)
	createFn        func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	updateFn        func(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn        func(ctx context.Context, id int64) error
}

func (s *stubUserService) ListUsers(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[*domain.User], error) {
	return s.listFn(ctx, d)
}

func (s *stubUserService) ListUsersWithPosts(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[ports.UserWithPosts], error) {
	return s.listWithPostsFn(ctx, d)
}

func (s *stubUserService) GetUser(ctx context.Context, id int64) (*ports.UserDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) ListAuthorPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.AuthorPosts, error) {
	return s.authorPostsFn(ctx, d)
}

func (s *stubUserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

type stubPostService struct {
	listFn      func(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error)
	searchFn    func(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error)
	getFn       func(ctx context.Context, id int64) (*domain.PostWithAuthor, error)
	getBySlugFn func(ctx context.Context, slug string) (*domain.PostWithAuthor, error)
	createFn    func(ctx context.Context, in ports.CreatePostInput) (*domain.PostWithAuthor, error)
	updateFn    func(ctx context.Context, id int64, in ports.UpdatePostInput) (*domain.PostWithAuthor, error)
	deleteFn    func(ctx context.Context, id int64) error
}

func (s *stubPostService) ListPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error) {
	return s.listFn(ctx, d)
}

func (s *stubPostService) SearchPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error) {
	return s.searchFn(ctx, d)
}

func (s *stubPostService) GetPost(ctx context.Context, id int64) (*domain.PostWithAuthor, error) {
	return s.getFn(ctx, id)
}

func (s *stubPostService) GetPostBySlug(ctx context.Context, slug string) (*domain.PostWithAuthor, error) {
	return s.getBySlugFn(ctx, slug)
}

func (s *stubPostService) CreatePost(ctx context.Context, in ports.CreatePostInput) (*domain.PostWithAuthor, error) {
	return s.createFn(ctx, in)
}

func (s *stubPostService) UpdatePost(ctx context.Context, id int64, in ports.UpdatePostInput) (*domain.PostWithAuthor, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubPostService) DeletePost(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

type stubStatsService struct {
	statsFn func(ctx context.Context) (*domain.StatsSnapshot, error)
	tagsFn  func(ctx context.Context) ([]domain.TagCount, error)
}

func (s *stubStatsService) Stats(ctx context.Context) (*domain.StatsSnapshot, error) {
	return s.statsFn(ctx)
}

func (s *stubStatsService) TagFrequency(ctx context.Context) ([]domain.TagCount, error) {
	return s.tagsFn(ctx)
}

func (s *stubStatsService) Refresh(context.Context) error { return nil }

// newContext builds an echo context for method/target with an optional JSON
// body and path params given as name, value pairs.
func newContext(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func strPtr(s string) *string { return &s }
