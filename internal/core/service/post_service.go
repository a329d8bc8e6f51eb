package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
	"github.com/postboard/blog-api/internal/metrics"
)

type PostService struct {
	posts  ports.PostRepository
	users  ports.UserRepository
	cache  SnapshotCache
	logger zerolog.Logger
}

// NewPostService returns a PostService. Writes invalidate cache; nil disables it.
func NewPostService(posts ports.PostRepository, users ports.UserRepository, cache SnapshotCache, logger zerolog.Logger) *PostService {
	return &PostService{posts: posts, users: users, cache: cacheOrNoop(cache), logger: logger}
}

// ListPosts returns one page of posts with their authors.
func (s *PostService) ListPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error) {
	return s.list(ctx, "list_posts", d)
}

// SearchPosts is ListPosts with a keyword filter. A keyword that matches
// nothing yields an empty page, not an error.
func (s *PostService) SearchPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error) {
	if d.Filter.Search == "" {
		return nil, domain.NewParamError("q", "search query parameter 'q' is required")
	}
	return s.list(ctx, "search_posts", d)
}

func (s *PostService) list(ctx context.Context, op string, d query.Descriptor[domain.PostFilter]) (*ports.Page[domain.PostWithAuthor], error) {
	opts := findOptions(d)
	posts, total, err := findAndCount(ctx, op,
		func(ctx context.Context) ([]*domain.Post, error) { return s.posts.Find(ctx, d.Filter, opts) },
		func(ctx context.Context) (int64, error) { return s.posts.Count(ctx, d.Filter) },
	)
	if err != nil {
		return nil, err
	}
	items, err := attachAuthors(ctx, s.users, posts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return newPage(items, total, d.Page), nil
}

// GetPost counts a view and returns the post with the incremented counter.
func (s *PostService) GetPost(ctx context.Context, id int64) (*domain.PostWithAuthor, error) {
	post, err := s.posts.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.PostViewsTotal.WithLabelValues("id").Inc()
	return s.withAuthor(ctx, post)
}

// GetPostBySlug counts a view and returns the post with the incremented counter.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*domain.PostWithAuthor, error) {
	post, err := s.posts.IncrementViewsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	metrics.PostViewsTotal.WithLabelValues("slug").Inc()
	return s.withAuthor(ctx, post)
}

// CreatePost stores a new post. The author must exist and the slug be unused.
func (s *PostService) CreatePost(ctx context.Context, in ports.CreatePostInput) (*domain.PostWithAuthor, error) {
	if err := s.requireAuthor(ctx, in.AuthorID); err != nil {
		return nil, err
	}
	taken, err := s.posts.SlugTaken(ctx, in.Slug, 0)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if taken {
		return nil, domain.ErrSlugTaken
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UTC()
	post := &domain.Post{
		Title:     in.Title,
		Content:   in.Content,
		Slug:      in.Slug,
		Published: in.Published,
		Tags:      tags,
		Thumbnail: in.Thumbnail,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error().Err(err).Str("slug", in.Slug).Msg("failed to create post")
		return nil, err
	}

	metrics.WritesTotal.WithLabelValues("post", "create").Inc()
	invalidateAggregates(ctx, s.cache, s.logger)
	s.logger.Info().Int64("post_id", post.ID).Str("slug", post.Slug).Int64("author_id", post.AuthorID).Msg("post created")
	return s.withAuthor(ctx, post)
}

// UpdatePost applies the set fields of in. The view counter is untouched.
func (s *PostService) UpdatePost(ctx context.Context, id int64, in ports.UpdatePostInput) (*domain.PostWithAuthor, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Slug != nil {
		taken, err := s.posts.SlugTaken(ctx, *in.Slug, id)
		if err != nil {
			return nil, fmt.Errorf("update post: %w", err)
		}
		if taken {
			return nil, domain.ErrSlugTaken
		}
	}
	if in.AuthorID != nil {
		if err := s.requireAuthor(ctx, *in.AuthorID); err != nil {
			return nil, err
		}
	}

	domain.PostPatch{
		Title:     in.Title,
		Content:   in.Content,
		Slug:      in.Slug,
		Published: in.Published,
		Tags:      in.Tags,
		SetTags:   in.Tags != nil,
		Thumbnail: in.Thumbnail,
		AuthorID:  in.AuthorID,
	}.Apply(post)
	post.UpdatedAt = time.Now().UTC()

	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error().Err(err).Int64("post_id", id).Msg("failed to update post")
		return nil, err
	}

	metrics.WritesTotal.WithLabelValues("post", "update").Inc()
	invalidateAggregates(ctx, s.cache, s.logger)
	return s.withAuthor(ctx, post)
}

func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	if _, err := s.posts.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("post_id", id).Msg("failed to delete post")
		return err
	}

	metrics.WritesTotal.WithLabelValues("post", "delete").Inc()
	invalidateAggregates(ctx, s.cache, s.logger)
	s.logger.Info().Int64("post_id", id).Msg("post deleted")
	return nil
}

func (s *PostService) requireAuthor(ctx context.Context, authorID int64) error {
	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrAuthorNotFound
		}
		return err
	}
	return nil
}

func (s *PostService) withAuthor(ctx context.Context, post *domain.Post) (*domain.PostWithAuthor, error) {
	joined, err := attachAuthors(ctx, s.users, []*domain.Post{post})
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}
