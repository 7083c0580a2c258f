// Package collector drives the metric fetcher over a roster.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/internal/metrics"
	"github.com/wonny/stockpick/pkg/logger"
)

// ReasonPacingFailed prefixes the skip reason of symbols whose pacer wait failed
const ReasonPacingFailed = "pacing failed"

// SymbolFetcher produces metrics or a skip for one symbol and never fails
type SymbolFetcher interface {
	Fetch(ctx context.Context, symbol string) metrics.FetchResult
}

// Collector builds the metric batch for a roster
// ⭐ SSOT: 배치 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	fetcher SymbolFetcher
	pacer   contracts.Pacer
	logger  *logger.Logger
	now     func() time.Time
}

// Config holds collector configuration
type Config struct {
	// Workers is the number of concurrent fetchers. 1 is a strict sequential
	// sweep; more than 1 requires a pacer shared by all workers.
	Workers int
}

// NewCollector creates a new Collector instance
func NewCollector(fetcher SymbolFetcher, pacer contracts.Pacer, log *logger.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		pacer:   pacer,
		logger:  log.WithField("module", "collector"),
		now:     time.Now,
	}
}

// Collect fetches metrics for every roster entry and returns them in roster
// order. Symbol failures never stop the sweep; only a cancelled context does,
// in which case the partial batch is returned with the context error.
func (c *Collector) Collect(ctx context.Context, refs []contracts.SecurityReference, cfg Config) (*contracts.Batch, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(refs) && len(refs) > 0 {
		workers = len(refs)
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_count": len(refs),
		"workers":     workers,
	}).Info("Starting metric collection")

	var (
		results []*metrics.FetchResult
		err     error
	)
	if workers == 1 {
		results, err = c.collectSequential(ctx, refs)
	} else {
		results, err = c.collectConcurrent(ctx, refs, workers)
	}

	batch := c.assemble(refs, results)

	c.logger.WithFields(map[string]interface{}{
		"success": len(batch.Metrics),
		"skipped": len(batch.Skipped),
		"total":   len(refs),
	}).Info("Metric collection completed")

	return batch, err
}

// collectSequential waits on the pacer before every fetch, one symbol at a time
func (c *Collector) collectSequential(ctx context.Context, refs []contracts.SecurityReference) ([]*metrics.FetchResult, error) {
	results := make([]*metrics.FetchResult, len(refs))

	for i, ref := range refs {
		result, err := c.pacedFetch(ctx, ref.Symbol)
		if err != nil {
			return results, err
		}
		results[i] = &result

		c.logger.WithFields(map[string]interface{}{
			"ticker":   ref.Symbol,
			"progress": i + 1,
			"total":    len(refs),
		}).Debug("Processed symbol")
	}

	return results, nil
}

// pacedFetch waits on the pacer and fetches one symbol. Only a cancelled
// context ends the run; any other pacer fault skips this symbol.
func (c *Collector) pacedFetch(ctx context.Context, symbol string) (metrics.FetchResult, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return metrics.FetchResult{}, ctx.Err()
		}

		c.logger.WithTicker(symbol).WithError(err).Error("Pacing failed, skipping symbol")
		return metrics.FetchResult{
			Symbol: symbol,
			Reason: fmt.Sprintf("%s: %v", ReasonPacingFailed, err),
			Err:    err,
		}, nil
	}

	return c.fetcher.Fetch(ctx, symbol), nil
}

// collectConcurrent fans out over a worker pool. Each worker writes only the
// slot of the roster position it owns, so output order is roster order.
func (c *Collector) collectConcurrent(ctx context.Context, refs []contracts.SecurityReference, workers int) ([]*metrics.FetchResult, error) {
	results := make([]*metrics.FetchResult, len(refs))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				result, err := c.pacedFetch(ctx, refs[i].Symbol)
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				results[i] = &result

				c.logger.WithFields(map[string]interface{}{
					"worker": workerID,
					"ticker": refs[i].Symbol,
				}).Debug("Processed symbol")
			}
		}(w)
	}

feed:
	for i := range refs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	return results, firstErr
}

// assemble turns per-position results into a batch in roster order
func (c *Collector) assemble(refs []contracts.SecurityReference, results []*metrics.FetchResult) *contracts.Batch {
	batch := &contracts.Batch{
		CollectedAt: c.now(),
		Metrics:     make([]contracts.SecurityMetrics, 0, len(refs)),
		Skipped:     []contracts.SkippedSecurity{},
	}

	for i, result := range results {
		if result == nil {
			continue // 취소로 처리되지 않은 종목
		}
		if result.Skipped() {
			batch.Skipped = append(batch.Skipped, contracts.SkippedSecurity{
				Ticker: refs[i].Symbol,
				Reason: result.Reason,
			})
			continue
		}

		m := *result.Metrics
		m.Name = refs[i].Name
		batch.Metrics = append(batch.Metrics, m)
	}

	return batch
}
