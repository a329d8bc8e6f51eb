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
)

const postColumns = "id, title, content, slug, published, tags, thumbnail, view_count, author_id, created_at, updated_at"

type PostRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ ports.PostRepository = (*PostRepository)(nil)

func NewPostRepository(pool *pgxpool.Pool, timeout time.Duration) *PostRepository {
	return &PostRepository{pool: pool, timeout: orDefault(timeout)}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Slug, &p.Published, &p.Tags,
		&p.Thumbnail, &p.ViewCount, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// writeError maps constraint violations onto domain errors.
func writeError(op string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return domain.ErrSlugTaken
	case codeForeignKeyViolation:
		return domain.ErrAuthorNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if p.Tags == nil {
		p.Tags = []string{}
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, content, slug, published, tags, thumbnail, view_count, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		p.Title, p.Content, p.Slug, p.Published, p.Tags, p.Thumbnail, p.ViewCount, p.AuthorID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return writeError("insert post", err)
	}
	return nil
}

// Update rewrites every editable column. view_count is owned by
// IncrementViews.
func (r *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $2, content = $3, slug = $4, published = $5, tags = $6,
		    thumbnail = $7, author_id = $8, updated_at = $9
		WHERE id = $1`,
		p.ID, p.Title, p.Content, p.Slug, p.Published, tags, p.Thumbnail, p.AuthorID, p.UpdatedAt,
	)
	if err != nil {
		return writeError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	return r.queryOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.queryOne(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

func (r *PostRepository) IncrementViews(ctx context.Context, id int64) (*domain.Post, error) {
	return r.queryOne(ctx, `
		UPDATE posts SET view_count = view_count + 1
		WHERE id = $1
		RETURNING `+postColumns, id)
}

func (r *PostRepository) IncrementViewsBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.queryOne(ctx, `
		UPDATE posts SET view_count = view_count + 1
		WHERE slug = $1
		RETURNING `+postColumns, slug)
}

func (r *PostRepository) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return taken, nil
}

func (r *PostRepository) Find(ctx context.Context, f domain.PostFilter, opts ports.FindOptions) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	w := postWhere(f)
	sql := `SELECT ` + postColumns + ` FROM posts` + w.String()
	sql += orderLimit(w, opts)

	rows, err := r.pool.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context, f domain.PostFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	w := postWhere(f)
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM posts`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) SumViews(ctx context.Context, f domain.PostFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	w := postWhere(f)
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT coalesce(sum(view_count), 0)::bigint FROM posts`+w.String(), w.args...).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum views: %w", err)
	}
	return sum, nil
}

func (r *PostRepository) Tags(ctx context.Context) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT tags FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowTo[[]string])
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}
	return tags, nil
}

func (r *PostRepository) queryOne(ctx context.Context, sql string, args ...any) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scanPost(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}
