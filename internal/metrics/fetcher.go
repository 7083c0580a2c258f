// Package metrics derives per-security indicators from upstream market data.
package metrics

import (
	"context"
	"fmt"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/pkg/logger"
)

// ReasonNoPriceHistory is the skip reason for symbols without price data
const ReasonNoPriceHistory = "no price history"

// FetchResult is the outcome for one symbol: either Metrics, or a skip Reason.
type FetchResult struct {
	Symbol  string
	Metrics *contracts.SecurityMetrics
	Reason  string
	Err     error // provider fault behind the skip, if any
}

// Skipped reports whether the symbol produced no metrics
func (r FetchResult) Skipped() bool {
	return r.Metrics == nil
}

// Fetcher retrieves upstream facts for one symbol and reduces them to metrics
// ⭐ SSOT: 종목별 메트릭 계산은 여기서만
type Fetcher struct {
	provider contracts.MarketData
	logger   *logger.Logger
}

// NewFetcher creates a new metric fetcher
func NewFetcher(provider contracts.MarketData, log *logger.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		logger:   log.WithField("module", "fetcher"),
	}
}

// Fetch never fails: every fault for this symbol, including a panic in the
// provider, becomes a skipped result with a diagnostic.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (result FetchResult) {
	log := f.logger.WithTicker(symbol)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.WithError(err).Error("Error fetching data")
			result = skipped(symbol, err)
		}
	}()

	metrics, reason, err := f.fetch(ctx, symbol, log)
	if err != nil {
		log.WithError(err).Error("Error fetching data")
		return skipped(symbol, err)
	}
	if metrics == nil {
		log.WithField("reason", reason).Warn("Skipping symbol")
		return FetchResult{Symbol: symbol, Reason: reason}
	}

	return FetchResult{Symbol: symbol, Metrics: metrics}
}

func (f *Fetcher) fetch(ctx context.Context, symbol string, log *logger.Logger) (*contracts.SecurityMetrics, string, error) {
	// 1. Price history
	history, err := f.provider.PriceHistory(ctx, symbol)
	if err != nil {
		return nil, "", err
	}
	if len(history) == 0 {
		return nil, ReasonNoPriceHistory, nil
	}

	m := &contracts.SecurityMetrics{
		Ticker:         symbol,
		PriceChangePct: PriceChangePct(history),
	}

	// 2. Income statement
	stmt, err := f.provider.IncomeStatement(ctx, symbol)
	if err != nil {
		return nil, "", err
	}
	if stmt.Empty() {
		log.Info("No financial data, revenue and profit margin unavailable")
	}
	m.Revenue, m.ProfitMarginPct = FinancialMetrics(stmt)

	// 3. Key statistics
	stats, err := f.provider.KeyStatistics(ctx, symbol)
	if err != nil {
		return nil, "", err
	}
	m.EPSGrowthPct = EPSGrowthPct(
		stats.Float(contracts.StatTrailingEPS),
		stats.Float(contracts.StatForwardEPS),
	)

	log.WithFields(map[string]interface{}{
		"price_change_pct":  m.PriceChangePct.Ptr(),
		"revenue":           m.Revenue.Ptr(),
		"profit_margin_pct": m.ProfitMarginPct.Ptr(),
		"eps_growth_pct":    m.EPSGrowthPct.Ptr(),
	}).Debug("Computed metrics")

	return m, "", nil
}

func skipped(symbol string, err error) FetchResult {
	return FetchResult{
		Symbol: symbol,
		Reason: fmt.Sprintf("error fetching data: %v", err),
		Err:    err,
	}
}
