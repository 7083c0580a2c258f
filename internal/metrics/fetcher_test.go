package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/internal/metrics/metricstest"
	"github.com/wonny/stockpick/pkg/logger"
)

func newFetcher(symbols map[string]metricstest.Symbol) *Fetcher {
	return NewFetcher(metricstest.NewProvider(symbols), logger.NewNop())
}

func TestFetch_AllMetrics(t *testing.T) {
	f := metricstest.F
	fetcher := newFetcher(map[string]metricstest.Symbol{
		"AAPL": {
			Closes:    []float64{100, 105, 110},
			Statement: metricstest.Statement(f(400), f(100)),
			Stats:     contracts.KeyStatistics{contracts.StatTrailingEPS: 1.5, contracts.StatForwardEPS: 1.0},
		},
	})

	result := fetcher.Fetch(context.Background(), "AAPL")
	require.False(t, result.Skipped())

	assert.Equal(t, &contracts.SecurityMetrics{
		Ticker:          "AAPL",
		PriceChangePct:  contracts.Some(10),
		Revenue:         contracts.Some(400),
		ProfitMarginPct: contracts.Some(25),
		EPSGrowthPct:    contracts.Some(50),
	}, result.Metrics)
}

func TestFetch_EmptyHistorySkips(t *testing.T) {
	fetcher := newFetcher(map[string]metricstest.Symbol{
		"GONE": {Closes: nil},
	})

	result := fetcher.Fetch(context.Background(), "GONE")
	assert.True(t, result.Skipped())
	assert.Nil(t, result.Metrics)
	assert.Equal(t, ReasonNoPriceHistory, result.Reason)
	assert.NoError(t, result.Err)
}

func TestFetch_MissingFinancialsAreAbsent(t *testing.T) {
	fetcher := newFetcher(map[string]metricstest.Symbol{
		"ETF": {
			Closes:    []float64{50, 40},
			Statement: nil,
			Stats:     contracts.KeyStatistics{},
		},
	})

	result := fetcher.Fetch(context.Background(), "ETF")
	require.False(t, result.Skipped())

	m := result.Metrics
	assert.Equal(t, contracts.Some(-20), m.PriceChangePct)
	assert.False(t, m.Revenue.Valid)
	assert.False(t, m.ProfitMarginPct.Valid)
	assert.False(t, m.EPSGrowthPct.Valid)
}

func TestFetch_ProviderFaults(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name   string
		symbol metricstest.Symbol
	}{
		{"history fault", metricstest.Symbol{HistoryErr: boom}},
		{"statement fault", metricstest.Symbol{Closes: []float64{1, 2}, StmtErr: boom}},
		{"key statistics fault", metricstest.Symbol{Closes: []float64{1, 2}, StatsErr: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newFetcher(map[string]metricstest.Symbol{"XYZ": tt.symbol})

			result := fetcher.Fetch(context.Background(), "XYZ")
			assert.True(t, result.Skipped(), "no partial metrics on provider fault")
			assert.True(t, errors.Is(result.Err, boom))
			assert.Contains(t, result.Reason, "connection reset")
		})
	}
}

func TestFetch_RecoversPanic(t *testing.T) {
	fetcher := newFetcher(map[string]metricstest.Symbol{
		"BAD": {Panic: true},
	})

	var result FetchResult
	assert.NotPanics(t, func() {
		result = fetcher.Fetch(context.Background(), "BAD")
	})
	assert.True(t, result.Skipped())
	assert.Error(t, result.Err)
	assert.Equal(t, "BAD", result.Symbol)
}
