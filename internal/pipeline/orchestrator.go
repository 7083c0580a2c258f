// Package pipeline wires roster loading, collection, preference resolution,
// ranking and persistence into one run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/stockpick/internal/collector"
	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/internal/roster"
	"github.com/wonny/stockpick/internal/selection"
	"github.com/wonny/stockpick/pkg/logger"
)

// BatchCollector builds a metric batch for a roster
type BatchCollector interface {
	Collect(ctx context.Context, refs []contracts.SecurityReference, cfg collector.Config) (*contracts.Batch, error)
}

// Orchestrator coordinates a recommendation run
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	collector BatchCollector
	ranker    *selection.Ranker
	repo      contracts.RecommendationRepository // nil이면 저장 생략
	logger    *logger.Logger
	now       func() time.Time
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RosterPath string
	Workers    int
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	Batch          *contracts.Batch
	Recommendation *contracts.Recommendation
	Duration       time.Duration
}

// NewOrchestrator creates a new orchestrator. repo may be nil.
func NewOrchestrator(
	batchCollector BatchCollector,
	ranker *selection.Ranker,
	repo contracts.RecommendationRepository,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		collector: batchCollector,
		ranker:    ranker,
		repo:      repo,
		logger:    log.WithField("module", "pipeline"),
		now:       time.Now,
	}
}

// Collect loads the roster and builds the metric batch.
// A roster fault is fatal for the run.
func (o *Orchestrator) Collect(ctx context.Context, config RunConfig) (*contracts.Batch, error) {
	refs, err := roster.Load(config.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"roster":      config.RosterPath,
		"stock_count": len(refs),
	}).Info("Roster loaded")

	batch, err := o.collector.Collect(ctx, refs, collector.Config{Workers: config.Workers})
	if err != nil {
		return batch, fmt.Errorf("collect metrics: %w", err)
	}

	return batch, nil
}

// Recommend ranks a batch against the preferences and persists the result
// when a repository is configured
func (o *Orchestrator) Recommend(ctx context.Context, batch *contracts.Batch, prefs contracts.Preferences) (*contracts.Recommendation, error) {
	if batch == nil {
		return nil, errors.New("no metric batch available")
	}

	prefs = prefs.Normalize()
	rec := &contracts.Recommendation{
		ID:          uuid.NewString(),
		CreatedAt:   o.now().UTC(),
		CollectedAt: batch.CollectedAt,
		Preferences: prefs,
		Results:     o.ranker.Rank(batch.Metrics, prefs),
	}

	if o.repo != nil {
		if err := o.repo.Save(ctx, rec); err != nil {
			return rec, fmt.Errorf("save recommendation: %w", err)
		}
		o.logger.WithField("recommendation_id", rec.ID).Info("Recommendation saved")
	}

	return rec, nil
}

// Run executes roster → collect → preferences → rank → (persist)
func (o *Orchestrator) Run(ctx context.Context, config RunConfig, resolver contracts.PreferenceResolver) (*RunResult, error) {
	startTime := o.now()
	result := &RunResult{}

	o.logger.WithFields(map[string]interface{}{
		"roster":  config.RosterPath,
		"workers": config.Workers,
	}).Info("Starting pipeline run")

	batch, err := o.Collect(ctx, config)
	result.Batch = batch
	if err != nil {
		return result, err
	}

	prefs, err := resolver.Resolve(ctx)
	if err != nil {
		return result, fmt.Errorf("resolve preferences: %w", err)
	}

	rec, err := o.Recommend(ctx, batch, prefs)
	result.Recommendation = rec
	if err != nil {
		return result, err
	}

	result.Duration = o.now().Sub(startTime)

	o.logger.WithFields(map[string]interface{}{
		"recommendation_id": rec.ID,
		"ranked":            len(rec.Results),
		"skipped":           len(batch.Skipped),
		"duration":          result.Duration.Seconds(),
	}).Info("Pipeline run completed successfully")

	return result, nil
}
