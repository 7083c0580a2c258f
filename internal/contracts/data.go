package contracts

import (
	"errors"
	"time"
)

// SecurityReference is one roster row
// ⭐ SSOT: Roster → Collector 종목 전달
type SecurityReference struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// SecurityMetrics holds the derived indicators of one symbol that survived fetching.
// Each metric is independently optional.
type SecurityMetrics struct {
	Ticker          string        `json:"ticker"`
	Name            string        `json:"name,omitempty"`
	PriceChangePct  OptionalFloat `json:"price_change_pct"`
	Revenue         OptionalFloat `json:"revenue"`
	ProfitMarginPct OptionalFloat `json:"profit_margin_pct"`
	EPSGrowthPct    OptionalFloat `json:"eps_growth_pct"`
}

// SkippedSecurity records why a symbol produced no metrics
type SkippedSecurity struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// Batch is the ordered result of one collection sweep over a roster
// ⭐ SSOT: Collector → Ranker 메트릭 테이블 전달
type Batch struct {
	CollectedAt time.Time         `json:"collected_at"`
	Metrics     []SecurityMetrics `json:"metrics"`
	Skipped     []SkippedSecurity `json:"skipped"`
}

// Size returns the number of securities with metrics
func (b *Batch) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Metrics)
}

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Income statement line items used by metric derivation
const (
	LineTotalRevenue = "Total Revenue"
	LineNetIncome    = "Net Income"
)

// Key statistics fields used by metric derivation
const (
	StatTrailingEPS = "trailingEps"
	StatForwardEPS  = "forwardEps"
)

// ErrMalformedStatement is returned by statement lookups when the table shape is broken
var ErrMalformedStatement = errors.New("malformed income statement")

// IncomeStatement is a table of line items by period.
// Periods are ordered most recent first; every row holds one cell per period,
// and a nil cell means the upstream reported no value.
type IncomeStatement struct {
	Periods []time.Time           `json:"periods"`
	Items   map[string][]*float64 `json:"items"`
}

// Empty reports whether the statement carries no usable table
func (s *IncomeStatement) Empty() bool {
	return s == nil || len(s.Periods) == 0 || len(s.Items) == 0
}

// Latest returns the most recent period's value of a line item.
// ok is false when the item is not in the table or its latest cell is empty;
// a row whose width does not match the period columns is ErrMalformedStatement.
func (s *IncomeStatement) Latest(item string) (value float64, ok bool, err error) {
	if s.Empty() {
		return 0, false, nil
	}

	row, exists := s.Items[item]
	if !exists {
		return 0, false, nil
	}
	if len(row) != len(s.Periods) {
		return 0, false, ErrMalformedStatement
	}
	if row[0] == nil {
		return 0, false, nil
	}

	return *row[0], true, nil
}

// KeyStatistics is the provider's key-stats map; any key may be missing
type KeyStatistics map[string]float64

// Float returns a statistic if present
func (k KeyStatistics) Float(key string) OptionalFloat {
	v, ok := k[key]
	if !ok {
		return None()
	}
	return Some(v)
}
