package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
)

func seedStats(t *testing.T) (*fixture, *domain.User, *domain.User) {
	t.Helper()
	f := newFixture()
	ana := f.addUser(t, "ana", true, 0)
	ben := f.addUser(t, "ben", false, 1)
	f.addPost(t, ana.ID, postSpec{slug: "a", published: true, views: 2, tags: []string{"go", "api"}, minute: 10})
	f.addPost(t, ana.ID, postSpec{slug: "b", published: false, views: 3, tags: []string{"go"}, minute: 20})
	return f, ana, ben
}

func TestStats_Snapshot(t *testing.T) {
	f, ana, ben := seedStats(t)
	svc := NewStatsService(f.users, f.posts, nil, zerolog.Nop())

	snap, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.UserStats{Total: 2, Active: 1, Inactive: 1}, snap.Users)
	assert.Equal(t, domain.PostStats{Total: 2, Published: 1, Draft: 1, TotalViews: 5}, snap.Posts)

	// drafts never rank as top posts
	require.Len(t, snap.TopPosts, 1)
	assert.Equal(t, "a", snap.TopPosts[0].Slug)
	assert.Equal(t, "ana", snap.TopPosts[0].Author.Username)

	require.Len(t, snap.RecentPosts, 2)
	assert.Equal(t, "b", snap.RecentPosts[0].Slug)
	assert.Equal(t, ana.ID, snap.RecentPosts[0].Author.ID)

	// users without posts still rank
	require.Len(t, snap.TopAuthors, 2)
	assert.Equal(t, ana.ID, snap.TopAuthors[0].ID)
	assert.EqualValues(t, 2, snap.TopAuthors[0].Count.Posts)
	assert.Equal(t, ben.ID, snap.TopAuthors[1].ID)
	assert.Zero(t, snap.TopAuthors[1].Count.Posts)
}

func TestStats_TopListsCappedAtFive(t *testing.T) {
	f := newFixture()
	ana := f.addUser(t, "ana", true, 0)
	for i := range 8 {
		f.addPost(t, ana.ID, postSpec{slug: string(rune('a' + i)), published: true, views: int64(i), minute: i})
	}
	svc := NewStatsService(f.users, f.posts, nil, zerolog.Nop())

	snap, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.TopPosts, topN)
	require.Len(t, snap.RecentPosts, topN)
	assert.EqualValues(t, 7, snap.TopPosts[0].ViewCount)
	assert.Equal(t, "h", snap.RecentPosts[0].Slug)
}

func TestStats_EmptyStore(t *testing.T) {
	f := newFixture()
	svc := NewStatsService(f.users, f.posts, nil, zerolog.Nop())

	snap, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Users.Total)
	assert.Zero(t, snap.Posts.TotalViews)
	assert.NotNil(t, snap.TopPosts)
	assert.Empty(t, snap.TopPosts)
	assert.Empty(t, snap.RecentPosts)
	assert.Empty(t, snap.TopAuthors)
}

func TestStats_AnyFailedReadFailsSnapshot(t *testing.T) {
	f, _, _ := seedStats(t)
	svc := NewStatsService(f.users, sumFailingPosts{f.posts}, nil, zerolog.Nop())

	snap, err := svc.Stats(context.Background())
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestStats_ServedFromCacheUntilInvalidated(t *testing.T) {
	f, ana, _ := seedStats(t)
	cache := newStubCache()
	stats := NewStatsService(f.users, f.posts, cache, zerolog.Nop())
	posts := NewPostService(f.posts, f.users, cache, zerolog.Nop())
	ctx := context.Background()

	first, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, cache.has(CacheKeyStats))

	// a direct store write bypasses invalidation, so the cached copy wins
	f.addPost(t, ana.ID, postSpec{slug: "c", minute: 30})
	second, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Posts.Total, second.Posts.Total)

	_, err = posts.CreatePost(ctx, ports.CreatePostInput{Title: "d", Slug: "d", AuthorID: ana.ID})
	require.NoError(t, err)
	assert.False(t, cache.has(CacheKeyStats))

	third, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, third.Posts.Total)
}

func TestStats_WriteDuringComputationIsNotOverwritten(t *testing.T) {
	f, ana, _ := seedStats(t)
	cache := newStubCache()
	stats := NewStatsService(f.users, f.posts, cache, zerolog.Nop())
	posts := NewPostService(f.posts, f.users, cache, zerolog.Nop())
	ctx := context.Background()

	cache.beforeStore = func() {
		cache.beforeStore = nil
		_, err := posts.CreatePost(ctx, ports.CreatePostInput{Title: "late", Slug: "late", AuthorID: ana.ID})
		require.NoError(t, err)
	}

	stale, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stale.Posts.Total)
	assert.False(t, cache.has(CacheKeyStats))

	fresh, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, fresh.Posts.Total)
	assert.True(t, cache.has(CacheKeyStats))
}

func TestRefresh_SkipsStoreAfterConcurrentWrite(t *testing.T) {
	f, ana, _ := seedStats(t)
	cache := newStubCache()
	stats := NewStatsService(f.users, f.posts, cache, zerolog.Nop())
	posts := NewPostService(f.posts, f.users, cache, zerolog.Nop())
	ctx := context.Background()

	cache.beforeStore = func() {
		cache.beforeStore = nil
		_, err := posts.CreatePost(ctx, ports.CreatePostInput{Title: "late", Slug: "late", AuthorID: ana.ID})
		require.NoError(t, err)
	}

	require.NoError(t, stats.Refresh(ctx))
	assert.False(t, cache.has(CacheKeyStats))
	assert.False(t, cache.has(CacheKeyTags))
}

func TestStats_CacheErrorFallsBackToStore(t *testing.T) {
	f, _, _ := seedStats(t)
	cache := newStubCache()
	cache.loadErr = errStoreDown
	svc := NewStatsService(f.users, f.posts, cache, zerolog.Nop())

	snap, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, snap.Posts.Total)
}

func TestTagFrequency(t *testing.T) {
	f, _, _ := seedStats(t)
	cache := newStubCache()
	svc := NewStatsService(f.users, f.posts, cache, zerolog.Nop())

	tags, err := svc.TagFrequency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TagCount{{Tag: "go", Count: 2}, {Tag: "api", Count: 1}}, tags)
	assert.True(t, cache.has(CacheKeyTags))

	again, err := svc.TagFrequency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tags, again)
	assert.Equal(t, 1, cache.stores)
}

func TestRefresh_WarmsBothKeys(t *testing.T) {
	f, _, _ := seedStats(t)
	cache := newStubCache()
	svc := NewStatsService(f.users, f.posts, cache, zerolog.Nop())

	require.NoError(t, svc.Refresh(context.Background()))
	assert.True(t, cache.has(CacheKeyStats))
	assert.True(t, cache.has(CacheKeyTags))

	failing := NewStatsService(f.users, sumFailingPosts{f.posts}, cache, zerolog.Nop())
	assert.ErrorIs(t, failing.Refresh(context.Background()), errStoreDown)
}
