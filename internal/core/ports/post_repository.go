package ports

import (
	"context"

	"github.com/postboard/blog-api/internal/core/domain"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	// Create assigns the generated ID to p. A taken slug yields
	// domain.ErrSlugTaken.
	Create(ctx context.Context, p *domain.Post) error
	Update(ctx context.Context, p *domain.Post) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)
	// IncrementViews atomically adds one to the view counter and returns the
	// post as stored after the increment.
	IncrementViews(ctx context.Context, id int64) (*domain.Post, error)
	IncrementViewsBySlug(ctx context.Context, slug string) (*domain.Post, error)
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
	// Find returns matching posts ordered by opts.Sort, then id ascending.
	Find(ctx context.Context, filter domain.PostFilter, opts FindOptions) ([]*domain.Post, error)
	Count(ctx context.Context, filter domain.PostFilter) (int64, error)
	SumViews(ctx context.Context, filter domain.PostFilter) (int64, error)
	// Tags returns the tag list of every post.
	Tags(ctx context.Context) ([][]string, error)
}
