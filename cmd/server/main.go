// Command server runs the blog HTTP API.
//
// @title        Blog API
// @version      1.0
// @description  CRUD REST API for users and posts with listing, search, tag tally and dashboard statistics.
// @BasePath     /api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/postboard/blog-api/internal/api"
	"github.com/postboard/blog-api/internal/api/handler"
	"github.com/postboard/blog-api/internal/core/service"
	"github.com/postboard/blog-api/internal/infrastructure/config"
	"github.com/postboard/blog-api/internal/infrastructure/db"
	"github.com/postboard/blog-api/internal/infrastructure/db/redis"
	"github.com/postboard/blog-api/internal/infrastructure/scheduler"
	"github.com/postboard/blog-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		l := logger.Get()
		l.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Pretty: true})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "blog-api",
	})

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()
	log.Info().Str("driver", store.Driver).Msg("store ready")

	checks := map[string]handler.Pinger{"store": store}

	var cache service.SnapshotCache
	if cfg.Cache.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		snapshots := redis.NewSnapshotCache(client, cfg.Cache.TTL)
		cache = snapshots
		checks["redis"] = snapshots
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Cache.TTL).Msg("snapshot cache enabled")
	}

	users := service.NewUserService(store.Users, store.Posts, cache, logger.Component("users"))
	posts := service.NewPostService(store.Posts, store.Users, cache, logger.Component("posts"))
	stats := service.NewStatsService(store.Users, store.Posts, cache, logger.Component("stats"))

	var warmer *scheduler.CacheWarmer
	if cache != nil {
		warmer, err = scheduler.NewCacheWarmer(stats, cfg.Cache.RefreshSpec, logger.Component("scheduler"))
		if err != nil {
			return err
		}
		warmer.Start()
	}

	e := api.NewRouter(api.Deps{
		Users:  users,
		Posts:  posts,
		Stats:  stats,
		Logger: logger.Component("http"),
		Checks: checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	return shutdown(e.Shutdown, warmer, log)
}

func shutdown(stopHTTP func(context.Context) error, warmer *scheduler.CacheWarmer, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := stopHTTP(ctx); err != nil {
		errs = append(errs, err)
	}
	if warmer != nil {
		if err := warmer.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	log.Info().Msg("server stopped gracefully")
	return errors.Join(errs...)
}
