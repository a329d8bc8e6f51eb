package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
	"github.com/postboard/blog-api/internal/metrics"
)

type UserService struct {
	users  ports.UserRepository
	posts  ports.PostRepository
	cache  SnapshotCache
	logger zerolog.Logger
}

// NewUserService returns a UserService. Writes invalidate cache; nil disables it.
func NewUserService(users ports.UserRepository, posts ports.PostRepository, cache SnapshotCache, logger zerolog.Logger) *UserService {
	return &UserService{users: users, posts: posts, cache: cacheOrNoop(cache), logger: logger}
}

// ListUsers returns one page of users, newest first.
func (s *UserService) ListUsers(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[*domain.User], error) {
	opts := findOptions(d)
	items, total, err := findAndCount(ctx, "list_users",
		func(ctx context.Context) ([]*domain.User, error) { return s.users.Find(ctx, d.Filter, opts) },
		func(ctx context.Context) (int64, error) { return s.users.Count(ctx, d.Filter) },
	)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, d.Page), nil
}

// ListUsersWithPosts returns one page of users, each with every post they
// own (newest first).
func (s *UserService) ListUsersWithPosts(ctx context.Context, d query.Descriptor[domain.UserFilter]) (*ports.Page[ports.UserWithPosts], error) {
	users, err := s.ListUsers(ctx, d)
	if err != nil {
		return nil, err
	}

	items := make([]ports.UserWithPosts, 0, len(users.Items))
	if len(users.Items) > 0 {
		ids := make([]int64, len(users.Items))
		for i, u := range users.Items {
			ids[i] = u.ID
		}
		posts, err := s.posts.Find(ctx, domain.PostFilter{AuthorIDs: ids}, ports.FindOptions{Sort: query.DefaultSort})
		if err != nil {
			return nil, fmt.Errorf("list users with posts: %w", err)
		}
		byAuthor := make(map[int64][]*domain.Post, len(ids))
		for _, p := range posts {
			byAuthor[p.AuthorID] = append(byAuthor[p.AuthorID], p)
		}
		for _, u := range users.Items {
			owned := byAuthor[u.ID]
			if owned == nil {
				owned = []*domain.Post{}
			}
			items = append(items, ports.UserWithPosts{User: u, Posts: owned})
		}
	}

	return &ports.Page[ports.UserWithPosts]{
		Items:      items,
		Total:      users.Total,
		Page:       users.Page,
		Limit:      users.Limit,
		TotalPages: users.TotalPages,
	}, nil
}

// GetUser returns a user with every post they own.
func (s *UserService) GetUser(ctx context.Context, id int64) (*ports.UserDetail, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.Find(ctx, domain.PostFilter{AuthorID: &id}, ports.FindOptions{Sort: query.DefaultSort})
	if err != nil {
		return nil, fmt.Errorf("get user posts: %w", err)
	}
	return &ports.UserDetail{User: user, Posts: posts}, nil
}

// ListAuthorPosts resolves the author first, so an unknown author fails with
// domain.ErrUserNotFound before any post query runs.
func (s *UserService) ListAuthorPosts(ctx context.Context, d query.Descriptor[domain.PostFilter]) (*ports.AuthorPosts, error) {
	if d.Filter.AuthorID == nil {
		return nil, domain.NewParamError("id", "author is required")
	}
	author, err := s.users.FindByID(ctx, *d.Filter.AuthorID)
	if err != nil {
		return nil, err
	}

	opts := findOptions(d)
	posts, total, err := findAndCount(ctx, "author_posts",
		func(ctx context.Context) ([]*domain.Post, error) { return s.posts.Find(ctx, d.Filter, opts) },
		func(ctx context.Context) (int64, error) { return s.posts.Count(ctx, d.Filter) },
	)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return &ports.AuthorPosts{Author: author, Posts: posts, Total: total}, nil
}

// CreateUser registers a new user. Email and username must be unused.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	taken, err := s.users.IdentityTaken(ctx, in.Email, in.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if taken {
		return nil, domain.ErrUserExists
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        in.Email,
		Username:     in.Username,
		Name:         in.Name,
		Avatar:       in.Avatar,
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", in.Username).Msg("failed to create user")
		return nil, err
	}

	metrics.WritesTotal.WithLabelValues("user", "create").Inc()
	invalidateAggregates(ctx, s.cache, s.logger)
	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return user, nil
}

// UpdateUser applies the set fields of in. A new email or username must not
// belong to another user.
func (s *UserService) UpdateUser(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil || in.Username != nil {
		taken, err := s.users.IdentityTaken(ctx, deref(in.Email), deref(in.Username), id)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if taken {
			return nil, domain.ErrUserExists
		}
	}

	patch := domain.UserPatch{
		Email:    in.Email,
		Username: in.Username,
		Name:     in.Name,
		Avatar:   in.Avatar,
		IsActive: in.IsActive,
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	patch.Apply(user)
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return nil, err
	}

	metrics.WritesTotal.WithLabelValues("user", "update").Inc()
	invalidateAggregates(ctx, s.cache, s.logger)
	return user, nil
}

// DeleteUser removes the user and, by cascade, every post they own.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		return err
	}

	metrics.WritesTotal.WithLabelValues("user", "delete").Inc()
	invalidateAggregates(ctx, s.cache, s.logger)
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
