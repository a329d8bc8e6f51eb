// Command seed fills the configured store with sample users and posts.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/postboard/blog-api/internal/core/service"
	"github.com/postboard/blog-api/internal/infrastructure/config"
	"github.com/postboard/blog-api/internal/infrastructure/db"
	"github.com/postboard/blog-api/internal/seed"
	"github.com/postboard/blog-api/pkg/logger"
)

var exitCode int

func main() {
	defer func() { os.Exit(exitCode) }()
	run()
}

func run() {
	reset := flag.Bool("reset", false, "delete existing users and posts first")
	views := flag.Bool("views", true, "replay sample view counts as reads")
	workers := flag.Int("workers", 8, "concurrent view replays")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Pretty: true})
		l.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "blog-seed"})

	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	// Writes go straight to the store; the server's cache entries expire on their own.
	users := service.NewUserService(store.Users, store.Posts, nil, log)
	posts := service.NewPostService(store.Posts, store.Users, nil, log)

	sum, err := seed.New(users, posts, log).Run(ctx, seed.Options{
		Reset:       *reset,
		Views:       *views,
		Concurrency: *workers,
	})
	if err != nil {
		log.Error().Err(err).Msg("seeding failed")
		exitCode = 1
		return
	}
	log.Info().Str("driver", store.Driver).Int("users", sum.Users).Int("posts", sum.Posts).Msg("done")
}
