// Package memory is an in-process persistence driver. It applies the same
// filter, ordering and uniqueness rules as the Mongo and Postgres drivers and
// backs STORE_DRIVER=memory as well as the service and handler tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

// Store holds users and posts behind a single lock.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]*domain.User
	posts      map[int64]*domain.Post
	nextUserID int64
	nextPostID int64
}

func New() *Store {
	return &Store{
		users: make(map[int64]*domain.User),
		posts: make(map[int64]*domain.Post),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Posts returns the post repository view of the store.
func (s *Store) Posts() *PostRepository { return &PostRepository{s: s} }

// Ping always succeeds; it satisfies the readiness probe.
func (s *Store) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type UserRepository struct {
	s *Store
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.identityTaken(u.Email, u.Username, 0) {
		return domain.ErrUserExists
	}
	r.s.nextUserID++
	u.ID = r.s.nextUserID
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if r.s.identityTaken(u.Email, u.Username, u.ID) {
		return domain.ErrUserExists
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

// Delete removes the user and cascades to their posts.
func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	for pid, p := range r.s.posts {
		if p.AuthorID == id {
			delete(r.s.posts, pid)
		}
	}
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []int64) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) IdentityTaken(_ context.Context, email, username string, excludeID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.identityTaken(email, username, excludeID), nil
}

func (r *UserRepository) Find(_ context.Context, f domain.UserFilter, opts ports.FindOptions) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.s.matchUsers(f)
	slices.SortFunc(matched, func(a, b *domain.User) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if opts.Sort.Order == query.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return window(matched, opts, cloneUser), nil
}

func (r *UserRepository) Count(_ context.Context, f domain.UserFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.matchUsers(f))), nil
}

func (r *UserRepository) TopByPostCount(_ context.Context, n int) ([]domain.AuthorRank, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[int64]int64, len(r.s.users))
	for _, p := range r.s.posts {
		counts[p.AuthorID]++
	}
	ranks := make([]domain.AuthorRank, 0, len(r.s.users))
	for _, u := range r.s.users {
		ranks = append(ranks, domain.AuthorRank{Author: u.Summary(), PostCount: counts[u.ID]})
	}
	slices.SortFunc(ranks, func(a, b domain.AuthorRank) int {
		if c := cmp.Compare(b.PostCount, a.PostCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Author.ID, b.Author.ID)
	})
	return ranks[:min(n, len(ranks))], nil
}

func (s *Store) identityTaken(email, username string, excludeID int64) bool {
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if (email != "" && u.Email == email) || (username != "" && u.Username == username) {
			return true
		}
	}
	return false
}

func (s *Store) matchUsers(f domain.UserFilter) []*domain.User {
	var out []*domain.User
	for _, u := range s.users {
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		if len(f.IDs) > 0 && !slices.Contains(f.IDs, u.ID) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// ---------------------------------------------------------------------------
// Posts
// ---------------------------------------------------------------------------

type PostRepository struct {
	s *Store
}

var _ ports.PostRepository = (*PostRepository)(nil)

func (r *PostRepository) Create(_ context.Context, p *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.slugTaken(p.Slug, 0) {
		return domain.ErrSlugTaken
	}
	r.s.nextPostID++
	p.ID = r.s.nextPostID
	r.s.posts[p.ID] = clonePost(p)
	return nil
}

func (r *PostRepository) Update(_ context.Context, p *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[p.ID]
	if !ok {
		return domain.ErrPostNotFound
	}
	if r.s.slugTaken(p.Slug, p.ID) {
		return domain.ErrSlugTaken
	}
	next := clonePost(p)
	next.ViewCount = stored.ViewCount
	r.s.posts[p.ID] = next
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepository) FindByID(_ context.Context, id int64) (*domain.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r *PostRepository) FindBySlug(_ context.Context, slug string) (*domain.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p := r.s.bySlug(slug); p != nil {
		return clonePost(p), nil
	}
	return nil, domain.ErrPostNotFound
}

func (r *PostRepository) IncrementViews(_ context.Context, id int64) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	p.ViewCount++
	return clonePost(p), nil
}

func (r *PostRepository) IncrementViewsBySlug(_ context.Context, slug string) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := r.s.bySlug(slug)
	if p == nil {
		return nil, domain.ErrPostNotFound
	}
	p.ViewCount++
	return clonePost(p), nil
}

func (r *PostRepository) SlugTaken(_ context.Context, slug string, excludeID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.slugTaken(slug, excludeID), nil
}

func (r *PostRepository) Find(_ context.Context, f domain.PostFilter, opts ports.FindOptions) ([]*domain.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.s.matchPosts(f)
	slices.SortFunc(matched, func(a, b *domain.Post) int {
		return comparePosts(a, b, opts.Sort)
	})
	return window(matched, opts, clonePost), nil
}

func (r *PostRepository) Count(_ context.Context, f domain.PostFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.matchPosts(f))), nil
}

func (r *PostRepository) SumViews(_ context.Context, f domain.PostFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum int64
	for _, p := range r.s.matchPosts(f) {
		sum += p.ViewCount
	}
	return sum, nil
}

// Tags returns tag lists in id order so tallies are reproducible.
func (r *PostRepository) Tags(_ context.Context) ([][]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]int64, 0, len(r.s.posts))
	for id := range r.s.posts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([][]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, slices.Clone(r.s.posts[id].Tags))
	}
	return out, nil
}

func (s *Store) bySlug(slug string) *domain.Post {
	for _, p := range s.posts {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

func (s *Store) slugTaken(slug string, excludeID int64) bool {
	p := s.bySlug(slug)
	return p != nil && p.ID != excludeID
}

func (s *Store) matchPosts(f domain.PostFilter) []*domain.Post {
	var out []*domain.Post
	for _, p := range s.posts {
		if matchPost(p, f) {
			out = append(out, p)
		}
	}
	return out
}

func matchPost(p *domain.Post, f domain.PostFilter) bool {
	if f.Published != nil && p.Published != *f.Published {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if len(f.AuthorIDs) > 0 && !slices.Contains(f.AuthorIDs, p.AuthorID) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		inTitle := strings.Contains(strings.ToLower(p.Title), q)
		inContent := p.Content != nil && strings.Contains(strings.ToLower(*p.Content), q)
		inTags := slices.Contains(p.Tags, q)
		if !inTitle && !inContent && !inTags {
			return false
		}
	}
	return true
}

func comparePosts(a, b *domain.Post, s query.Sort) int {
	var c int
	switch s.Field {
	case query.SortViewCount:
		c = cmp.Compare(a.ViewCount, b.ViewCount)
	case query.SortTitle:
		c = strings.Compare(a.Title, b.Title)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if s.Order == query.Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// window applies offset and limit, cloning the surviving items.
func window[T any](items []*T, opts ports.FindOptions, clone func(*T) *T) []*T {
	start := min(max(opts.Offset, 0), len(items))
	end := len(items)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, end)
	}
	out := make([]*T, 0, end-start)
	for _, it := range items[start:end] {
		out = append(out, clone(it))
	}
	return out
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func clonePost(p *domain.Post) *domain.Post {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c
}
