// Package scheduler keeps the aggregate cache warm on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/postboard/blog-api/internal/metrics"
)

const defaultRunTimeout = 30 * time.Second

// Refresher recomputes and stores cached aggregates.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CacheWarmer runs Refresher.Refresh on a cron spec. The warm-up run on
// Start and the scheduled runs share one wrapped job, so they never overlap
// and panics inside any run are recovered.
type CacheWarmer struct {
	cron    *cron.Cron
	job     cron.Job
	target  Refresher
	timeout time.Duration
	logger  zerolog.Logger
	warmup  sync.WaitGroup
}

// NewCacheWarmer validates spec (standard five-field or @every syntax) and
// registers the refresh job. The schedule does not run until Start.
func NewCacheWarmer(target Refresher, spec string, logger zerolog.Logger) (*CacheWarmer, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("schedule cache refresh %q: %w", spec, err)
	}
	cl := cronLogger{logger}
	w := &CacheWarmer{
		cron:    cron.New(cron.WithLogger(cl)),
		target:  target,
		timeout: defaultRunTimeout,
		logger:  logger,
	}
	w.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(w.RunOnce))
	w.cron.Schedule(schedule, w.job)
	return w, nil
}

// Start warms the cache once in the background and starts the schedule.
func (w *CacheWarmer) Start() {
	w.warmup.Add(1)
	go func() {
		defer w.warmup.Done()
		w.job.Run()
	}()
	w.cron.Start()
	w.logger.Info().Int("jobs", len(w.cron.Entries())).Msg("cache warmer started")
}

// Stop halts the schedule and waits for running refreshes, including the
// warm-up, bounded by ctx.
func (w *CacheWarmer) Stop(ctx context.Context) error {
	scheduled := w.cron.Stop()
	done := make(chan struct{})
	go func() {
		w.warmup.Wait()
		<-scheduled.Done()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single refresh and records its outcome.
func (w *CacheWarmer) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	if err := w.target.Refresh(ctx); err != nil {
		metrics.CacheRefreshTotal.WithLabelValues("error").Inc()
		w.logger.Error().Err(err).Msg("cache refresh failed")
		return
	}
	metrics.CacheRefreshTotal.WithLabelValues("ok").Inc()
	w.logger.Debug().Dur("took", time.Since(start)).Msg("cache refreshed")
}

// cronLogger routes cron's internal logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
