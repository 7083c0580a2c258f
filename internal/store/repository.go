// Package store persists final recommendation runs in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/stockpick/internal/contracts"
)

// ErrNotFound is returned when a recommendation id does not exist
var ErrNotFound = errors.New("recommendation not found")

const schema = `
	CREATE SCHEMA IF NOT EXISTS stockpick;

	CREATE TABLE IF NOT EXISTS stockpick.recommendations (
		id             UUID PRIMARY KEY,
		created_at     TIMESTAMPTZ NOT NULL,
		collected_at   TIMESTAMPTZ NOT NULL,
		stock_type     TEXT NOT NULL DEFAULT '',
		top_n          INTEGER NOT NULL,
		esg_importance TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stockpick.recommendation_results (
		recommendation_id UUID NOT NULL REFERENCES stockpick.recommendations(id) ON DELETE CASCADE,
		rank              INTEGER NOT NULL,
		ticker            TEXT NOT NULL,
		name              TEXT NOT NULL DEFAULT '',
		price_change_pct  DOUBLE PRECISION,
		revenue           DOUBLE PRECISION,
		profit_margin_pct DOUBLE PRECISION,
		eps_growth_pct    DOUBLE PRECISION,
		overall_score     DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (recommendation_id, rank)
	);

	CREATE INDEX IF NOT EXISTS idx_recommendations_created_at
		ON stockpick.recommendations (created_at DESC);
`

// Repository handles recommendation persistence
// ⭐ SSOT: 추천 결과 저장/조회는 여기서만 (중간 데이터는 저장하지 않음)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new recommendation repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the schema if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Save stores a recommendation run and its ranked rows in one transaction
func (r *Repository) Save(ctx context.Context, rec *contracts.Recommendation) error {
	// Begin transaction
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO stockpick.recommendations (
			id, created_at, collected_at, stock_type, top_n, esg_importance
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		rec.ID, rec.CreatedAt, rec.CollectedAt,
		rec.Preferences.StockType, rec.Preferences.TopN, string(rec.Preferences.ESGImportance),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}

	batch := &pgx.Batch{}
	for _, res := range rec.Results {
		// 부재 값은 NULL로 저장 (0으로 강제하지 않음)
		batch.Queue(`
			INSERT INTO stockpick.recommendation_results (
				recommendation_id, rank, ticker, name,
				price_change_pct, revenue, profit_margin_pct, eps_growth_pct, overall_score
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			rec.ID, res.Rank, res.Ticker, res.Name,
			res.PriceChangePct.Ptr(), res.Revenue.Ptr(), res.ProfitMarginPct.Ptr(), res.EPSGrowthPct.Ptr(),
			res.OverallScore,
		)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert recommendation results: %w", err)
		}
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Get retrieves a recommendation run by id
func (r *Repository) Get(ctx context.Context, id string) (*contracts.Recommendation, error) {
	query := `
		SELECT id::text, created_at, collected_at, stock_type, top_n, esg_importance
		FROM stockpick.recommendations
		WHERE id = $1
	`

	rec, err := scanRecommendation(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}

	results, err := r.results(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Results = results

	return rec, nil
}

// ListRecent returns the latest runs, newest first, with their ranked rows
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]contracts.Recommendation, error) {
	query := `
		SELECT id::text, created_at, collected_at, stock_type, top_n, esg_importance
		FROM stockpick.recommendations
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}

	recs := make([]contracts.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		recs = append(recs, *rec)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range recs {
		results, err := r.results(ctx, recs[i].ID)
		if err != nil {
			return nil, err
		}
		recs[i].Results = results
	}

	return recs, nil
}

func (r *Repository) results(ctx context.Context, id string) ([]contracts.RankedSecurity, error) {
	query := `
		SELECT
			rank, ticker, name,
			price_change_pct, revenue, profit_margin_pct, eps_growth_pct, overall_score
		FROM stockpick.recommendation_results
		WHERE recommendation_id = $1
		ORDER BY rank ASC
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation results: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.RankedSecurity, 0)

	for rows.Next() {
		var (
			res                         contracts.RankedSecurity
			price, revenue, margin, eps *float64
		)
		err := rows.Scan(
			&res.Rank, &res.Ticker, &res.Name,
			&price, &revenue, &margin, &eps, &res.OverallScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		res.PriceChangePct = contracts.FromPtr(price)
		res.Revenue = contracts.FromPtr(revenue)
		res.ProfitMarginPct = contracts.FromPtr(margin)
		res.EPSGrowthPct = contracts.FromPtr(eps)

		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func scanRecommendation(row pgx.Row) (*contracts.Recommendation, error) {
	var (
		rec  contracts.Recommendation
		tier string
	)
	err := row.Scan(
		&rec.ID, &rec.CreatedAt, &rec.CollectedAt,
		&rec.Preferences.StockType, &rec.Preferences.TopN, &tier,
	)
	if err != nil {
		return nil, err
	}
	rec.Preferences.ESGImportance = contracts.ESGImportance(tier)
	return &rec, nil
}
