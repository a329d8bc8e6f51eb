// Package db selects and opens the configured persistence driver.
package db

import (
	"context"
	"fmt"

	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/infrastructure/config"
	"github.com/postboard/blog-api/internal/infrastructure/db/memory"
	"github.com/postboard/blog-api/internal/infrastructure/db/mongo"
	"github.com/postboard/blog-api/internal/infrastructure/db/postgres"
)

// Store is an opened driver: its repositories plus lifecycle hooks.
type Store struct {
	Driver string
	Users  ports.UserRepository
	Posts  ports.PostRepository

	ping  func(context.Context) error
	close func(context.Context) error
}

func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the driver's connections. Safe to call on the memory driver.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the driver named by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		s, err := mongo.Open(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Store.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return &Store{Driver: cfg.Store.Driver, Users: s.Users(), Posts: s.Posts(), ping: s.Ping, close: s.Close}, nil

	case config.DriverPostgres:
		s, err := postgres.Open(ctx, postgres.Config{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
			Timeout:  cfg.Store.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return &Store{Driver: cfg.Store.Driver, Users: s.Users(), Posts: s.Posts(), ping: s.Ping, close: s.Close}, nil

	case config.DriverMemory:
		s := memory.New()
		return &Store{Driver: cfg.Store.Driver, Users: s.Users(), Posts: s.Posts(), ping: s.Ping}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
