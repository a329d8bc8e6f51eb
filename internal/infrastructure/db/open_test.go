package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/infrastructure/config"
)

func TestOpen_MemoryDriver(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}}

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, s.Driver)
	assert.NoError(t, s.Ping(ctx))

	u := &domain.User{Email: "a@example.com", Username: "alice"}
	require.NoError(t, s.Users.Create(ctx, u))
	require.NoError(t, s.Posts.Create(ctx, &domain.Post{Title: "t", Slug: "t", AuthorID: u.ID}))

	n, err := s.Posts.Count(ctx, domain.PostFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.NoError(t, s.Close(ctx))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "sqlite"}})
	assert.ErrorContains(t, err, "sqlite")
}
