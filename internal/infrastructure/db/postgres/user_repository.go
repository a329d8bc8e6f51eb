package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

const userColumns = "id, email, username, name, avatar, is_active, password_hash, created_at, updated_at"

type UserRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool, timeout time.Duration) *UserRepository {
	return &UserRepository{pool: pool, timeout: orDefault(timeout)}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Name, &u.Avatar,
		&u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, name, avatar, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		u.Email, u.Username, u.Name, u.Avatar, u.IsActive, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $2, username = $3, name = $4, avatar = $5,
		    is_active = $6, password_hash = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.Email, u.Username, u.Name, u.Avatar, u.IsActive, u.PasswordHash, u.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes the user; posts follow through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
}

func (r *UserRepository) IdentityTaken(ctx context.Context, email, username string, excludeID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE ((email = $1 AND $1 <> '') OR (username = $2 AND $2 <> ''))
			  AND id <> $3
		)`, email, username, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check user identity: %w", err)
	}
	return taken, nil
}

func (r *UserRepository) Find(ctx context.Context, f domain.UserFilter, opts ports.FindOptions) ([]*domain.User, error) {
	w := userWhere(f)
	sql := `SELECT ` + userColumns + ` FROM users` + w.String()
	sql += orderLimit(w, ports.FindOptions{Offset: opts.Offset, Limit: opts.Limit, Sort: usersSort(opts)})
	return r.query(ctx, sql, w.args...)
}

func (r *UserRepository) Count(ctx context.Context, f domain.UserFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	w := userWhere(f)
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) TopByPostCount(ctx context.Context, n int) ([]domain.AuthorRank, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.username, u.avatar, count(p.id) AS post_count
		FROM users u
		LEFT JOIN posts p ON p.author_id = u.id
		GROUP BY u.id
		ORDER BY post_count DESC, u.id ASC
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("rank authors: %w", err)
	}
	ranks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuthorRank, error) {
		var rank domain.AuthorRank
		err := row.Scan(&rank.Author.ID, &rank.Author.Name, &rank.Author.Username, &rank.Author.Avatar, &rank.PostCount)
		return rank, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan author ranks: %w", err)
	}
	return ranks, nil
}

func (r *UserRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}

// usersSort pins the user listing to created_at; only the direction is taken
// from opts.
func usersSort(opts ports.FindOptions) query.Sort {
	return query.Sort{Field: query.SortCreatedAt, Order: opts.Sort.Order}
}
