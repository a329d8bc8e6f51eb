package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/postboard/blog-api/internal/metrics"
)

const (
	CacheKeyStats = "stats:snapshot"
	CacheKeyTags  = "stats:tags"
)

// SnapshotCache abstracts the aggregate cache (Redis).
//
// Every Invalidate advances a generation counter. Callers read the
// generation before computing a value and pass it to Store, which drops the
// value if an invalidation happened in between.
type SnapshotCache interface {
	// Load decodes the cached value under key into dst and reports whether
	// it was present.
	Load(ctx context.Context, key string, dst any) (bool, error)
	Version(ctx context.Context) (int64, error)
	// Store writes v under key only while the generation still equals
	// version, and reports whether it did.
	Store(ctx context.Context, key string, v any, version int64) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
}

type noopCache struct{}

func (noopCache) Load(context.Context, string, any) (bool, error)         { return false, nil }
func (noopCache) Version(context.Context) (int64, error)                  { return 0, nil }
func (noopCache) Store(context.Context, string, any, int64) (bool, error) { return true, nil }
func (noopCache) Invalidate(context.Context, ...string) error             { return nil }

func cacheOrNoop(c SnapshotCache) SnapshotCache {
	if c == nil {
		return noopCache{}
	}
	return c
}

// loadCached reports a hit only when the value was present and decoded.
// Cache failures are logged and treated as a miss.
func loadCached(ctx context.Context, c SnapshotCache, log zerolog.Logger, key string, dst any) bool {
	ok, err := c.Load(ctx, key, dst)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(key, "error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("cache load failed, recomputing")
		return false
	case ok:
		metrics.CacheLookupsTotal.WithLabelValues(key, "hit").Inc()
		return true
	default:
		metrics.CacheLookupsTotal.WithLabelValues(key, "miss").Inc()
		return false
	}
}

// cacheVersion reads the generation ahead of a computation. ok is false when
// the cache cannot tell, and the result must then not be stored.
func cacheVersion(ctx context.Context, c SnapshotCache, log zerolog.Logger) (version int64, ok bool) {
	version, err := c.Version(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cache version read failed")
		return 0, false
	}
	return version, true
}

func storeCached(ctx context.Context, c SnapshotCache, log zerolog.Logger, key string, v any, version int64) {
	stored, err := c.Store(ctx, key, v, version)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("key", key).Msg("cache store failed")
	case !stored:
		log.Debug().Str("key", key).Msg("cache invalidated during computation, result not stored")
	}
}

// invalidateAggregates drops the cached stats and tag tally after a write.
func invalidateAggregates(ctx context.Context, c SnapshotCache, log zerolog.Logger) {
	if err := c.Invalidate(ctx, CacheKeyStats, CacheKeyTags); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
