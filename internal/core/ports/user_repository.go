package ports

import (
	"context"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/query"
)

// FindOptions bounds and orders a find. Limit 0 means no limit.
type FindOptions struct {
	Offset int
	Limit  int
	Sort   query.Sort
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create assigns the generated ID to u. Duplicate email or username
	// yields domain.ErrUserExists.
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	// Delete removes the user and every post they own.
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.User, error)
	// IdentityTaken reports whether another user (id != excludeID) already
	// holds email or username. Empty arguments are ignored.
	IdentityTaken(ctx context.Context, email, username string, excludeID int64) (bool, error)
	Find(ctx context.Context, filter domain.UserFilter, opts FindOptions) ([]*domain.User, error)
	Count(ctx context.Context, filter domain.UserFilter) (int64, error)
	// TopByPostCount ranks users by owned posts, ties broken by id ascending.
	TopByPostCount(ctx context.Context, n int) ([]domain.AuthorRank, error)
}
