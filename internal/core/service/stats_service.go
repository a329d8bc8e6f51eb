package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
	"github.com/postboard/blog-api/internal/metrics"
)

const topN = 5

type StatsService struct {
	users  ports.UserRepository
	posts  ports.PostRepository
	cache  SnapshotCache
	logger zerolog.Logger
}

// NewStatsService returns a StatsService. A nil cache disables caching.
func NewStatsService(users ports.UserRepository, posts ports.PostRepository, cache SnapshotCache, logger zerolog.Logger) *StatsService {
	return &StatsService{users: users, posts: posts, cache: cacheOrNoop(cache), logger: logger}
}

// Stats returns the dashboard snapshot, from cache when available.
func (s *StatsService) Stats(ctx context.Context) (*domain.StatsSnapshot, error) {
	var cached domain.StatsSnapshot
	if loadCached(ctx, s.cache, s.logger, CacheKeyStats, &cached) {
		return &cached, nil
	}

	version, versioned := cacheVersion(ctx, s.cache, s.logger)
	snap, err := s.computeStats(ctx)
	if err != nil {
		return nil, err
	}
	if versioned {
		storeCached(ctx, s.cache, s.logger, CacheKeyStats, snap, version)
	}
	return snap, nil
}

// TagFrequency returns the tag tally, from cache when available.
func (s *StatsService) TagFrequency(ctx context.Context) ([]domain.TagCount, error) {
	var cached []domain.TagCount
	if loadCached(ctx, s.cache, s.logger, CacheKeyTags, &cached) {
		return cached, nil
	}

	version, versioned := cacheVersion(ctx, s.cache, s.logger)
	tags, err := s.computeTags(ctx)
	if err != nil {
		return nil, err
	}
	if versioned {
		storeCached(ctx, s.cache, s.logger, CacheKeyTags, tags, version)
	}
	return tags, nil
}

// Refresh recomputes both aggregates and overwrites the cached copies. A
// write that lands during the computation leaves the keys empty instead.
func (s *StatsService) Refresh(ctx context.Context) error {
	version, err := s.cache.Version(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	snap, err := s.computeStats(ctx)
	if err != nil {
		return err
	}
	tags, err := s.computeTags(ctx)
	if err != nil {
		return err
	}
	if _, err := s.cache.Store(ctx, CacheKeyStats, snap, version); err != nil {
		return fmt.Errorf("refresh stats: %w", err)
	}
	if _, err := s.cache.Store(ctx, CacheKeyTags, tags, version); err != nil {
		return fmt.Errorf("refresh tags: %w", err)
	}
	return nil
}

func (s *StatsService) computeTags(ctx context.Context) ([]domain.TagCount, error) {
	lists, err := s.posts.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("tag frequency: %w", err)
	}
	return TallyTags(lists), nil
}

// computeStats issues the eight independent reads concurrently. The result
// is not a consistent point-in-time view; each figure may reflect a
// slightly different moment.
func (s *StatsService) computeStats(ctx context.Context) (*domain.StatsSnapshot, error) {
	timer := prometheus.NewTimer(metrics.FanoutDuration.WithLabelValues("stats"))
	defer timer.ObserveDuration()

	published := true
	active := true

	var (
		totalUsers, activeUsers    int64
		totalPosts, publishedPosts int64
		totalViews                 int64
		topPosts, recentPosts      []*domain.Post
		topAuthors                 []domain.AuthorRank
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalUsers, err = s.users.Count(gctx, domain.UserFilter{})
		return err
	})
	g.Go(func() (err error) {
		activeUsers, err = s.users.Count(gctx, domain.UserFilter{IsActive: &active})
		return err
	})
	g.Go(func() (err error) {
		totalPosts, err = s.posts.Count(gctx, domain.PostFilter{})
		return err
	})
	g.Go(func() (err error) {
		publishedPosts, err = s.posts.Count(gctx, domain.PostFilter{Published: &published})
		return err
	})
	g.Go(func() (err error) {
		totalViews, err = s.posts.SumViews(gctx, domain.PostFilter{})
		return err
	})
	g.Go(func() (err error) {
		topPosts, err = s.posts.Find(gctx, domain.PostFilter{Published: &published}, ports.FindOptions{
			Limit: topN,
			Sort:  query.Sort{Field: query.SortViewCount, Order: query.Desc},
		})
		return err
	})
	g.Go(func() (err error) {
		recentPosts, err = s.posts.Find(gctx, domain.PostFilter{}, ports.FindOptions{
			Limit: topN,
			Sort:  query.DefaultSort,
		})
		return err
	})
	g.Go(func() (err error) {
		topAuthors, err = s.users.TopByPostCount(gctx, topN)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}

	// One author lookup serves both post rankings.
	joined, err := attachAuthors(ctx, s.users, append(append([]*domain.Post{}, topPosts...), recentPosts...))
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}

	snap := &domain.StatsSnapshot{
		Users: domain.UserStats{
			Total:    totalUsers,
			Active:   activeUsers,
			Inactive: totalUsers - activeUsers,
		},
		Posts: domain.PostStats{
			Total:      totalPosts,
			Published:  publishedPosts,
			Draft:      totalPosts - publishedPosts,
			TotalViews: totalViews,
		},
		TopPosts:    make([]domain.TopPost, 0, len(topPosts)),
		RecentPosts: joined[len(topPosts):],
		TopAuthors:  make([]domain.TopAuthor, 0, len(topAuthors)),
	}
	for _, p := range joined[:len(topPosts)] {
		snap.TopPosts = append(snap.TopPosts, domain.TopPost{
			ID:        p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			ViewCount: p.ViewCount,
			Author:    p.Author,
		})
	}
	for _, r := range topAuthors {
		snap.TopAuthors = append(snap.TopAuthors, domain.TopAuthor{
			AuthorSummary: r.Author,
			Count:         domain.PostCount{Posts: r.PostCount},
		})
	}
	return snap, nil
}
