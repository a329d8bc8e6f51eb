// Package seed populates a store with sample users and posts through the
// service layer, so seeded data passes the same validation and hashing as
// API writes.
package seed

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

type sampleUser struct {
	name, email, username, password, avatar string
	active                                  bool
}

type samplePost struct {
	title, content, slug, thumbnail string
	published                       bool
	tags                            []string
	author                          int // index into sampleUsers
	views                           int
}

var sampleUsers = []sampleUser{
	{"John Doe", "john.doe@example.com", "johndoe", "password123", "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150", true},
	{"Jane Smith", "jane.smith@example.com", "janesmith", "password456", "https://images.unsplash.com/photo-1494790108755-2616b612b786?w=150", true},
	{"Dimas Pratama", "dimas@example.com", "dimas123", "password789", "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150", true},
	{"Sarah Wilson", "sarah.wilson@example.com", "sarahw", "password101", "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=150", true},
	{"Mike Johnson", "mike.johnson@example.com", "mikej", "password121", "", false},
}

var samplePosts = []samplePost{
	{
		title:     "Getting Started with Go Modules",
		content:   "Go modules bring reproducible builds and a simple dependency story. This guide walks through creating a module, adding dependencies and publishing versions.",
		slug:      "getting-started-go-modules",
		thumbnail: "https://images.unsplash.com/photo-1555066931-4365d14bab8c?w=800",
		published: true,
		tags:      []string{"go", "modules", "tooling", "backend"},
		author:    0,
		views:     1247,
	},
	{
		title:     "Building RESTful APIs with Echo and PostgreSQL",
		content:   "Learn how to build a REST API with Echo backed by PostgreSQL through pgx. We cover schema design, CRUD handlers, pagination and error mapping.",
		slug:      "building-apis-echo-postgresql",
		thumbnail: "https://images.unsplash.com/photo-1518432031352-d6fc5c10da5a?w=800",
		published: true,
		tags:      []string{"echo", "postgresql", "api", "backend"},
		author:    1,
		views:     892,
	},
	{
		title:     "Structuring Large Go Services",
		content:   "Ports and adapters keep growing services testable. This article covers package layout, interface boundaries and dependency injection without frameworks.",
		slug:      "structuring-large-go-services",
		thumbnail: "https://images.unsplash.com/photo-1516116216624-53e697fedbea?w=800",
		published: true,
		tags:      []string{"go", "architecture", "best-practices"},
		author:    2,
		views:     665,
	},
	{
		title:     "Modern Authentication Strategies",
		content:   "A tour of JWT tokens, OAuth 2.0, session-based auth and passwordless login, with the trade-offs of each.",
		slug:      "modern-authentication-strategies",
		thumbnail: "https://images.unsplash.com/photo-1555949963-aa79dcee981c?w=800",
		published: false,
		tags:      []string{"authentication", "security", "jwt", "oauth"},
		author:    3,
	},
	{
		title:     "Deploying Go Services to Production",
		content:   "Configuration through the environment, health probes, graceful shutdown and metrics: what a service needs before it meets real traffic.",
		slug:      "deploying-go-services-production",
		thumbnail: "https://images.unsplash.com/photo-1451187580459-43490279c0fa?w=800",
		published: true,
		tags:      []string{"deployment", "devops", "go", "observability"},
		author:    0,
		views:     1834,
	},
	{
		title:     "Caching Aggregates with Redis",
		content:   "Expensive dashboard queries rarely need to be exact to the millisecond. We cache them in Redis with a short TTL and refresh them on a schedule.",
		slug:      "caching-aggregates-redis",
		thumbnail: "https://images.unsplash.com/photo-1555255707-c07966088b7b?w=800",
		published: true,
		tags:      []string{"redis", "caching", "performance", "backend"},
		author:    1,
	},
	{
		title:     "Concurrency Patterns with errgroup",
		content:   "Fan out independent reads, cancel siblings on the first failure and join the results. errgroup makes the pattern short and safe.",
		slug:      "concurrency-patterns-errgroup",
		thumbnail: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
		published: false,
		tags:      []string{"go", "concurrency"},
		author:    2,
	},
	{
		title:     "Database Optimization Techniques",
		content:   "Indexing strategies, query plans, connection pooling and caching to keep the database from becoming the bottleneck.",
		slug:      "database-optimization-techniques",
		thumbnail: "https://images.unsplash.com/photo-1544383835-bda2bc66a55d?w=800",
		published: true,
		tags:      []string{"database", "optimization", "performance", "sql"},
		author:    3,
	},
}

// Summary reports what a Run created.
type Summary struct {
	Users     int
	Active    int
	Posts     int
	Published int
	Views     int
}

// Options tunes a Run.
type Options struct {
	// Reset deletes every existing user, and with them their posts, first.
	Reset bool
	// Views replays the sample view counts as real reads.
	Views bool
	// Concurrency bounds the parallel view replays. Defaults to 8.
	Concurrency int
}

// Seeder writes the sample data set.
type Seeder struct {
	users  ports.UserService
	posts  ports.PostService
	logger zerolog.Logger
}

func New(users ports.UserService, posts ports.PostService, logger zerolog.Logger) *Seeder {
	return &Seeder{users: users, posts: posts, logger: logger}
}

// Run seeds the sample users and posts.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	if opts.Reset {
		n, err := s.reset(ctx)
		if err != nil {
			return sum, err
		}
		s.logger.Info().Int("users", n).Msg("existing data removed")
	}

	ids := make([]int64, len(sampleUsers))
	for i, su := range sampleUsers {
		in := ports.CreateUserInput{
			Email:    su.email,
			Username: su.username,
			Password: su.password,
			Name:     optional(su.name),
			Avatar:   optional(su.avatar),
		}
		u, err := s.users.CreateUser(ctx, in)
		if err != nil {
			return sum, fmt.Errorf("seed user %s: %w", su.username, err)
		}
		if !su.active {
			inactive := false
			if _, err := s.users.UpdateUser(ctx, u.ID, ports.UpdateUserInput{IsActive: &inactive}); err != nil {
				return sum, fmt.Errorf("deactivate user %s: %w", su.username, err)
			}
		} else {
			sum.Active++
		}
		ids[i] = u.ID
		sum.Users++
	}

	postIDs := make([]int64, len(samplePosts))
	for i, sp := range samplePosts {
		p, err := s.posts.CreatePost(ctx, ports.CreatePostInput{
			Title:     sp.title,
			Content:   optional(sp.content),
			Slug:      sp.slug,
			Published: sp.published,
			Tags:      sp.tags,
			Thumbnail: optional(sp.thumbnail),
			AuthorID:  ids[sp.author],
		})
		if err != nil {
			return sum, fmt.Errorf("seed post %s: %w", sp.slug, err)
		}
		postIDs[i] = p.ID
		sum.Posts++
		if sp.published {
			sum.Published++
		}
	}

	if opts.Views {
		n, err := s.replayViews(ctx, postIDs, opts.Concurrency)
		if err != nil {
			return sum, err
		}
		sum.Views = n
	}

	s.logger.Info().
		Int("users", sum.Users).
		Int("active_users", sum.Active).
		Int("posts", sum.Posts).
		Int("published", sum.Published).
		Int("views", sum.Views).
		Msg("seeding completed")
	return sum, nil
}

// replayViews reads each post as many times as its sample view count.
func (s *Seeder) replayViews(ctx context.Context, postIDs []int64, concurrency int) (int, error) {
	if concurrency <= 0 {
		concurrency = 8
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	total := 0
	for i, sp := range samplePosts {
		id := postIDs[i]
		for range sp.views {
			g.Go(func() error {
				_, err := s.posts.GetPost(gctx, id)
				return err
			})
		}
		total += sp.views
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("replay views: %w", err)
	}
	return total, nil
}

// reset deletes users page by page until none remain.
func (s *Seeder) reset(ctx context.Context) (int, error) {
	params := url.Values{"limit": {fmt.Sprint(query.MaxLimit)}}
	deleted := 0
	for {
		page, err := s.users.ListUsers(ctx, query.Users(params))
		if err != nil {
			return deleted, fmt.Errorf("list users: %w", err)
		}
		if len(page.Items) == 0 {
			return deleted, nil
		}
		for _, u := range page.Items {
			if err := s.users.DeleteUser(ctx, u.ID); err != nil {
				return deleted, fmt.Errorf("delete user %d: %w", u.ID, err)
			}
			deleted++
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
