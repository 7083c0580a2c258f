// Package metricstest provides an in-memory market data provider for tests.
package metricstest

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/stockpick/internal/contracts"
)

// Symbol is the canned upstream data of one ticker
type Symbol struct {
	Closes     []float64
	Statement  *contracts.IncomeStatement
	Stats      contracts.KeyStatistics
	HistoryErr error
	StmtErr    error
	StatsErr   error
	Panic      bool
}

// Provider serves canned data and records call order
type Provider struct {
	mu      sync.Mutex
	symbols map[string]Symbol
	calls   []string
}

// NewProvider creates a provider from canned symbols
func NewProvider(symbols map[string]Symbol) *Provider {
	return &Provider{symbols: symbols}
}

// Calls returns the symbols whose price history was requested, in order
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *Provider) lookup(symbol string) Symbol {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.symbols[symbol]
}

// PriceHistory implements contracts.MarketData
func (p *Provider) PriceHistory(ctx context.Context, symbol string) ([]contracts.PricePoint, error) {
	p.mu.Lock()
	p.calls = append(p.calls, symbol)
	p.mu.Unlock()

	s := p.lookup(symbol)
	if s.Panic {
		panic("provider exploded")
	}
	if s.HistoryErr != nil {
		return nil, s.HistoryErr
	}

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]contracts.PricePoint, len(s.Closes))
	for i, c := range s.Closes {
		points[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return points, nil
}

// IncomeStatement implements contracts.MarketData
func (p *Provider) IncomeStatement(ctx context.Context, symbol string) (*contracts.IncomeStatement, error) {
	s := p.lookup(symbol)
	if s.StmtErr != nil {
		return nil, s.StmtErr
	}
	return s.Statement, nil
}

// KeyStatistics implements contracts.MarketData
func (p *Provider) KeyStatistics(ctx context.Context, symbol string) (contracts.KeyStatistics, error) {
	s := p.lookup(symbol)
	if s.StatsErr != nil {
		return nil, s.StatsErr
	}
	return s.Stats, nil
}

// Statement builds a one-period income statement; nil values are left out
func Statement(revenue, netIncome *float64) *contracts.IncomeStatement {
	stmt := &contracts.IncomeStatement{
		Periods: []time.Time{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		Items:   map[string][]*float64{},
	}
	if revenue != nil {
		stmt.Items[contracts.LineTotalRevenue] = []*float64{revenue}
	}
	if netIncome != nil {
		stmt.Items[contracts.LineNetIncome] = []*float64{netIncome}
	}
	return stmt
}

// F returns a pointer to v
func F(v float64) *float64 {
	return &v
}
