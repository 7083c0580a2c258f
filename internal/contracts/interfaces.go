package contracts

import (
	"context"
	"time"
)

// MarketData is the upstream market data provider.
// Empty results are valid "no data" answers; errors are provider faults.
type MarketData interface {
	PriceHistory(ctx context.Context, symbol string) ([]PricePoint, error)
	IncomeStatement(ctx context.Context, symbol string) (*IncomeStatement, error)
	KeyStatistics(ctx context.Context, symbol string) (KeyStatistics, error)
}

// Pacer gates upstream calls. Wait blocks until the next call may start.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PreferenceResolver obtains ranking preferences from the user
type PreferenceResolver interface {
	Resolve(ctx context.Context) (Preferences, error)
}

// Recommendation is one stored ranking run
type Recommendation struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	CollectedAt time.Time        `json:"collected_at"`
	Preferences Preferences      `json:"preferences"`
	Results     []RankedSecurity `json:"results"`
}

// RecommendationRepository persists final ranking runs
type RecommendationRepository interface {
	Save(ctx context.Context, rec *Recommendation) error
	Get(ctx context.Context, id string) (*Recommendation, error)
	ListRecent(ctx context.Context, limit int) ([]Recommendation, error)
}
