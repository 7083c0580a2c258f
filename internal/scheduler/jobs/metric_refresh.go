// Package jobs holds the scheduled jobs of the server.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/internal/pipeline"
	"github.com/wonny/stockpick/pkg/logger"
)

// BatchSource produces a fresh metric batch
type BatchSource interface {
	Collect(ctx context.Context, config pipeline.RunConfig) (*contracts.Batch, error)
}

// BatchSink receives the refreshed batch
type BatchSink interface {
	Store(batch *contracts.Batch)
}

// MetricRefreshJob re-collects the metric batch on a schedule
// ⭐ SSOT: 메트릭 갱신 스케줄은 이 Job에서만
type MetricRefreshJob struct {
	source   BatchSource
	sink     BatchSink
	config   pipeline.RunConfig
	schedule string
	logger   *logger.Logger
}

// NewMetricRefreshJob creates a new metric refresh job
func NewMetricRefreshJob(source BatchSource, sink BatchSink, config pipeline.RunConfig, schedule string, log *logger.Logger) *MetricRefreshJob {
	return &MetricRefreshJob{
		source:   source,
		sink:     sink,
		config:   config,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *MetricRefreshJob) Name() string {
	return "metric_refresh"
}

// Schedule returns the cron schedule (with seconds)
func (j *MetricRefreshJob) Schedule() string {
	return j.schedule
}

// Run collects a new batch and publishes it.
// A cancelled run leaves the previous batch in place.
func (j *MetricRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled metric refresh")

	batch, err := j.source.Collect(ctx, j.config)
	if err != nil {
		return fmt.Errorf("refresh metrics: %w", err)
	}

	j.sink.Store(batch)

	j.logger.WithFields(map[string]interface{}{
		"metrics": len(batch.Metrics),
		"skipped": len(batch.Skipped),
	}).Info("Scheduled metric refresh completed successfully")

	return nil
}
