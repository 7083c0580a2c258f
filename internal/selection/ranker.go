// Package selection scores and ranks a metric batch against user preferences.
package selection

import (
	"sort"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/pkg/logger"
)

// Ranker computes composite scores and orders securities
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// WeightConfig defines metric weights for the overall score
type WeightConfig struct {
	PriceChange  float64 // 가격 변동률
	ProfitMargin float64 // 순이익률
	EPSGrowth    float64 // EPS 성장률
}

// WeightsFor returns the weight policy for an ESG importance tier.
// Unrecognized tiers use the low weights.
func WeightsFor(tier contracts.ESGImportance) WeightConfig {
	switch contracts.ParseESGImportance(string(tier)) {
	case contracts.ESGHigh:
		return WeightConfig{PriceChange: 0.3, ProfitMargin: 0.3, EPSGrowth: 0.4}
	case contracts.ESGMedium:
		return WeightConfig{PriceChange: 0.4, ProfitMargin: 0.4, EPSGrowth: 0.2}
	default:
		return WeightConfig{PriceChange: 0.5, ProfitMargin: 0.4, EPSGrowth: 0.1}
	}
}

// Score returns the weighted sum with absent metrics counted as zero
func (w WeightConfig) Score(m contracts.SecurityMetrics) float64 {
	return m.PriceChangePct.OrZero()*w.PriceChange +
		m.ProfitMarginPct.OrZero()*w.ProfitMargin +
		m.EPSGrowthPct.OrZero()*w.EPSGrowth
}

// ValidateWeights checks if weights sum to 1.0
func (w WeightConfig) ValidateWeights() bool {
	sum := w.PriceChange + w.ProfitMargin + w.EPSGrowth
	// Allow small floating point error
	return sum >= 0.99 && sum <= 1.01
}

// NewRanker creates a new ranker
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{
		logger: log.WithField("module", "ranker"),
	}
}

// Rank scores every security in the batch, sorts by overall score descending
// and returns the first TopN. Ties keep batch order. The input slice and its
// optional fields are left untouched.
func (r *Ranker) Rank(batch []contracts.SecurityMetrics, prefs contracts.Preferences) []contracts.RankedSecurity {
	prefs = prefs.Normalize()
	if prefs.TopN <= 0 {
		return []contracts.RankedSecurity{}
	}

	weights := WeightsFor(prefs.ESGImportance)
	if !weights.ValidateWeights() {
		r.logger.WithField("esg_importance", string(prefs.ESGImportance)).Warn("Weights do not sum to 1.0")
	}

	ranked := make([]contracts.RankedSecurity, 0, len(batch))
	for _, m := range batch {
		ranked = append(ranked, contracts.RankedSecurity{
			SecurityMetrics: m,
			OverallScore:    weights.Score(m),
		})
	}

	// Sort by overall score (descending), 동점은 배치 순서 유지
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallScore > ranked[j].OverallScore
	})

	if len(ranked) > prefs.TopN {
		ranked = ranked[:prefs.TopN]
	}

	// Assign ranks
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	fields := map[string]interface{}{
		"total_stocks":   len(batch),
		"top_n":          prefs.TopN,
		"esg_importance": string(prefs.ESGImportance),
	}
	if len(ranked) > 0 {
		fields["top_score"] = ranked[0].OverallScore
		fields["top_ticker"] = ranked[0].Ticker
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked
}
