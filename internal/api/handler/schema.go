package handler

import (
	"time"

	"github.com/postboard/blog-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type createUserRequest struct {
	Email    string  `json:"email"    validate:"required,email"`
	Username string  `json:"username" validate:"required,min=3"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     *string `json:"name"`
	Avatar   *string `json:"avatar"   validate:"omitempty,url"`
}

type updateUserRequest struct {
	Email    *string `json:"email"    validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,min=3"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Name     *string `json:"name"`
	Avatar   *string `json:"avatar"   validate:"omitempty,url"`
	IsActive *bool   `json:"isActive"`
}

type createPostRequest struct {
	Title     string   `json:"title"     validate:"required,min=1"`
	Content   *string  `json:"content"`
	Slug      string   `json:"slug"      validate:"required,min=1"`
	Published bool     `json:"published"`
	Tags      []string `json:"tags"`
	Thumbnail *string  `json:"thumbnail" validate:"omitempty,url"`
	AuthorID  int64    `json:"authorId"  validate:"required,gt=0"`
}

type updatePostRequest struct {
	Title     *string  `json:"title"     validate:"omitempty,min=1"`
	Content   *string  `json:"content"`
	Slug      *string  `json:"slug"      validate:"omitempty,min=1"`
	Published *bool    `json:"published"`
	Tags      []string `json:"tags"`
	Thumbnail *string  `json:"thumbnail" validate:"omitempty,url"`
	AuthorID  *int64   `json:"authorId"  validate:"omitempty,gt=0"`
}

// --- Response types ---

type paginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type postCountResponse struct {
	Posts int `json:"posts"`
}

// postSummaryResponse is the compact post view nested in a single user.
type postSummaryResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
}

// postListingResponse is the post view nested in the users-with-posts listing.
type postListingResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Published bool      `json:"published"`
	Tags      []string  `json:"tags"`
	Thumbnail *string   `json:"thumbnail"`
	ViewCount int64     `json:"viewCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type userDetailResponse struct {
	*domain.User
	Posts []postSummaryResponse `json:"posts"`
}

type userWithPostsResponse struct {
	*domain.User
	Posts []postListingResponse `json:"posts"`
	Count postCountResponse     `json:"_count"`
}

type userListResponse struct {
	Data       []*domain.User     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type userWithPostsListResponse struct {
	Data       []userWithPostsResponse `json:"data"`
	Pagination paginationResponse      `json:"pagination"`
}

type userResponse struct {
	Data *domain.User `json:"data"`
}

type userDetailEnvelope struct {
	Data userDetailResponse `json:"data"`
}

type userMutationResponse struct {
	Message string       `json:"message"`
	Data    *domain.User `json:"data"`
}

type authorPostsResponse struct {
	User  domain.AuthorSummary `json:"user"`
	Data  []*domain.Post       `json:"data"`
	Total int64                `json:"total"`
}

type postListResponse struct {
	Data       []domain.PostWithAuthor `json:"data"`
	Pagination paginationResponse      `json:"pagination"`
}

type postSearchResponse struct {
	Query      string                  `json:"query"`
	Data       []domain.PostWithAuthor `json:"data"`
	Pagination paginationResponse      `json:"pagination"`
}

type postResponse struct {
	Data *domain.PostWithAuthor `json:"data"`
}

type postMutationResponse struct {
	Message string                 `json:"message"`
	Data    *domain.PostWithAuthor `json:"data"`
}

type tagsResponse struct {
	Data []domain.TagCount `json:"data"`
}

type statsResponse struct {
	Data *domain.StatsSnapshot `json:"data"`
}
