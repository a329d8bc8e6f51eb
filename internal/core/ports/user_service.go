package ports

import (
	"context"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/query"
)

// Page is the envelope returned by every paginated listing.
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CreateUserInput carries a validated user registration.
type CreateUserInput struct {
	Email    string
	Username string
	Password string
	Name     *string
	Avatar   *string
}

// UpdateUserInput carries the optional fields of a user update.
type UpdateUserInput struct {
	Email    *string
	Username *string
	Password *string
	Name     *string
	Avatar   *string
	IsActive *bool
}

// UserDetail is a user with every post they own, newest first.
type UserDetail struct {
	User  *domain.User
	Posts []*domain.Post
}

// UserWithPosts is one item of the users-with-posts listing.
type UserWithPosts struct {
	User  *domain.User
	Posts []*domain.Post
}

// AuthorPosts is the author-scoped post listing.
type AuthorPosts struct {
	Author *domain.User
	Posts  []*domain.Post
	Total  int64
}

// UserService defines use-case operations for users.
type UserService interface {
	ListUsers(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*Page[*domain.User], error)
	ListUsersWithPosts(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*Page[UserWithPosts], error)
	GetUser(ctx context.Context, id int64) (*UserDetail, error)
	ListAuthorPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*AuthorPosts, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
