package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/infrastructure/db/memory"
)

var errStoreDown = errors.New("store unavailable")

// ---------------------------------------------------------------------------
// Store fixture
// ---------------------------------------------------------------------------

type fixture struct {
	users ports.UserRepository
	posts ports.PostRepository
	base  time.Time
}

func newFixture() *fixture {
	store := memory.New()
	return &fixture{
		users: store.Users(),
		posts: store.Posts(),
		base:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// addUser stores a user created minute minutes after the fixture base time.
func (f *fixture) addUser(t *testing.T, username string, active bool, minute int) *domain.User {
	t.Helper()
	at := f.base.Add(time.Duration(minute) * time.Minute)
	u := &domain.User{
		Email:     username + "@example.com",
		Username:  username,
		IsActive:  active,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

type postSpec struct {
	slug      string
	title     string
	content   string
	published bool
	views     int64
	tags      []string
	minute    int
}

func (f *fixture) addPost(t *testing.T, authorID int64, p postSpec) *domain.Post {
	t.Helper()
	at := f.base.Add(time.Duration(p.minute) * time.Minute)
	title := p.title
	if title == "" {
		title = p.slug
	}
	post := &domain.Post{
		Title:     title,
		Slug:      p.slug,
		Published: p.published,
		Tags:      p.tags,
		ViewCount: p.views,
		AuthorID:  authorID,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if p.content != "" {
		content := p.content
		post.Content = &content
	}
	require.NoError(t, f.posts.Create(context.Background(), post))
	return post
}

// ---------------------------------------------------------------------------
// Snapshot cache stub
// ---------------------------------------------------------------------------

type stubCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	loads       int
	stores      int
	invalidated []string
	version     int64
	loadErr     error
	// beforeStore runs on Store ahead of the generation check.
	beforeStore func()
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]byte)}
}

func (c *stubCache) Load(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	if c.loadErr != nil {
		return false, c.loadErr
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *stubCache) Version(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *stubCache) Store(_ context.Context, key string, v any, version int64) (bool, error) {
	if hook := c.beforeStore; hook != nil {
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return false, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	c.stores++
	c.entries[key] = raw
	return true, nil
}

func (c *stubCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.invalidated = append(c.invalidated, k)
	}
	c.version++
	return nil
}

func (c *stubCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// ---------------------------------------------------------------------------
// Failing repositories
// ---------------------------------------------------------------------------

// countFailingPosts delegates to a real repository but fails every Count.
type countFailingPosts struct {
	ports.PostRepository
}

func (countFailingPosts) Count(context.Context, domain.PostFilter) (int64, error) {
	return 0, errStoreDown
}

// sumFailingPosts fails only the view sum.
type sumFailingPosts struct {
	ports.PostRepository
}

func (sumFailingPosts) SumViews(context.Context, domain.PostFilter) (int64, error) {
	return 0, errStoreDown
}

// findFailingUsers fails every listing read.
type findFailingUsers struct {
	ports.UserRepository
}

func (findFailingUsers) Find(context.Context, domain.UserFilter, ports.FindOptions) ([]*domain.User, error) {
	return nil, errStoreDown
}
