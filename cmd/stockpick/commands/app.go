package commands

import (
	"context"
	"fmt"

	"github.com/wonny/stockpick/internal/collector"
	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/internal/external/yahoo"
	"github.com/wonny/stockpick/internal/metrics"
	"github.com/wonny/stockpick/internal/pacing"
	"github.com/wonny/stockpick/internal/pipeline"
	"github.com/wonny/stockpick/internal/selection"
	"github.com/wonny/stockpick/internal/store"
	"github.com/wonny/stockpick/pkg/config"
	"github.com/wonny/stockpick/pkg/database"
	"github.com/wonny/stockpick/pkg/httputil"
	"github.com/wonny/stockpick/pkg/logger"
	"github.com/wonny/stockpick/pkg/redis"
)

// app holds the wired components shared by the commands
type app struct {
	orchestrator *pipeline.Orchestrator
	repo         contracts.RecommendationRepository // DATABASE_URL 없으면 nil
	runConfig    pipeline.RunConfig
	closers      []func()
}

// Close releases database and Redis connections
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires provider → fetcher → collector → ranker (→ store)
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{
		runConfig: pipeline.RunConfig{
			RosterPath: cfg.Pipeline.RosterPath,
			Workers:    cfg.Pipeline.Workers,
		},
	}

	// 1. Market data provider
	httpClient := httputil.New(log, cfg.Yahoo.Timeout).WithUserAgent(cfg.Yahoo.UserAgent)
	provider := yahoo.NewClient(httpClient, log, cfg.Yahoo.BaseURL)

	// 2. Pacer (optionally shared across processes through Redis)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	pacer := newPacer(cfg, rdb)

	// 3. Collector and ranker
	col := collector.NewCollector(metrics.NewFetcher(provider, log), pacer, log)
	ranker := selection.NewRanker(log)

	// 4. Recommendation history (optional)
	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		repo := store.NewRepository(db.Pool)
		if err := repo.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.repo = repo
		log.Info("Recommendation history enabled")
	}

	a.orchestrator = pipeline.NewOrchestrator(col, ranker, a.repo, log)
	return a, nil
}

// newPacer picks the pacing policy for the configured worker count.
// A sequential sweep waits the full interval before every call; a worker
// pool shares one token bucket. Redis adds a cross-process gate.
func newPacer(cfg *config.Config, rdb *redis.Client) contracts.Pacer {
	interval := cfg.Pipeline.PacingInterval

	var local contracts.Pacer
	if cfg.Pipeline.Workers > 1 {
		local = pacing.NewLimiter(interval)
	} else {
		local = pacing.NewFixed(interval)
	}

	if rdb == nil || !rdb.Enabled() || interval <= 0 {
		return local
	}

	shared := redis.NewRateLimiter(rdb, "stockpick", redis.MinIntervalConfig("yahoo", interval))
	return pacing.Chain{local, shared}
}
