package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
	"github.com/postboard/blog-api/internal/metrics"
)

// findAndCount runs a find and the count under the same filter concurrently.
// Neither observes the other; both must succeed before the caller continues.
func findAndCount[T any](
	ctx context.Context,
	op string,
	find func(ctx context.Context) ([]T, error),
	count func(ctx context.Context) (int64, error),
) ([]T, int64, error) {
	timer := prometheus.NewTimer(metrics.FanoutDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = find(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return items, total, nil
}

// newPage wraps items in the page envelope for page.
func newPage[T any](items []T, total int64, page query.Page) *ports.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &ports.Page[T]{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}
}

func findOptions[F any](d query.Descriptor[F]) ports.FindOptions {
	opts := ports.FindOptions{Limit: d.Page.Limit, Sort: d.Sort}
	if d.Page.Number > 0 {
		opts.Offset = d.Page.Offset()
	}
	return opts
}

// attachAuthors joins each post with its author summary using a single
// batched lookup. Order of posts is preserved.
func attachAuthors(ctx context.Context, users ports.UserRepository, posts []*domain.Post) ([]domain.PostWithAuthor, error) {
	out := make([]domain.PostWithAuthor, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	seen := make(map[int64]struct{}, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; !ok {
			seen[p.AuthorID] = struct{}{}
			ids = append(ids, p.AuthorID)
		}
	}

	authors, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve authors: %w", err)
	}
	byID := make(map[int64]domain.AuthorSummary, len(authors))
	for _, a := range authors {
		byID[a.ID] = a.Summary()
	}

	for _, p := range posts {
		author, ok := byID[p.AuthorID]
		if !ok {
			author = domain.AuthorSummary{ID: p.AuthorID}
		}
		out = append(out, domain.PostWithAuthor{Post: *p, Author: author})
	}
	return out, nil
}
