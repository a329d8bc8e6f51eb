package ports

import (
	"context"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/query"
)

// CreatePostInput carries a validated new post.
type CreatePostInput struct {
	Title     string
	Content   *string
	Slug      string
	Published bool
	Tags      []string
	Thumbnail *string
	AuthorID  int64
}

// UpdatePostInput carries the optional fields of a post update.
// Tags is applied only when non-nil.
type UpdatePostInput struct {
	Title     *string
	Content   *string
	Slug      *string
	Published *bool
	Tags      []string
	Thumbnail *string
	AuthorID  *int64
}

// PostService defines use-case operations for posts.
type PostService interface {
	ListPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*Page[domain.PostWithAuthor], error)
	SearchPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*Page[domain.PostWithAuthor], error)
	// GetPost and GetPostBySlug count as a view: the counter is incremented
	// once and the returned post carries the incremented value.
	GetPost(ctx context.Context, id int64) (*domain.PostWithAuthor, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.PostWithAuthor, error)
	CreatePost(ctx context.Context, in CreatePostInput) (*domain.PostWithAuthor, error)
	UpdatePost(ctx context.Context, id int64, in UpdatePostInput) (*domain.PostWithAuthor, error)
	DeletePost(ctx context.Context, id int64) error
}
