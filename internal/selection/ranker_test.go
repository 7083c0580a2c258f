package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/pkg/logger"
)

func security(ticker string, price, margin, eps contracts.OptionalFloat) contracts.SecurityMetrics {
	return contracts.SecurityMetrics{
		Ticker:          ticker,
		Name:            ticker + " Corp",
		PriceChangePct:  price,
		ProfitMarginPct: margin,
		EPSGrowthPct:    eps,
	}
}

func TestWeightsFor(t *testing.T) {
	tests := []struct {
		tier contracts.ESGImportance
		want WeightConfig
	}{
		{"high", WeightConfig{0.3, 0.3, 0.4}},
		{"HIGH", WeightConfig{0.3, 0.3, 0.4}},
		{"medium", WeightConfig{0.4, 0.4, 0.2}},
		{"Medium", WeightConfig{0.4, 0.4, 0.2}},
		{"low", WeightConfig{0.5, 0.4, 0.1}},
		{"", WeightConfig{0.5, 0.4, 0.1}},
		{"very high", WeightConfig{0.5, 0.4, 0.1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			w := WeightsFor(tt.tier)
			assert.Equal(t, tt.want, w)
			assert.True(t, w.ValidateWeights())
		})
	}
}

func TestWeightConfig_ValidateWeights(t *testing.T) {
	assert.True(t, WeightConfig{PriceChange: 0.5, ProfitMargin: 0.4, EPSGrowth: 0.1}.ValidateWeights())
	assert.False(t, WeightConfig{PriceChange: 0.5, ProfitMargin: 0.5, EPSGrowth: 0.5}.ValidateWeights())
	assert.False(t, WeightConfig{}.ValidateWeights())
}

func TestRank_HighTierExample(t *testing.T) {
	batch := []contracts.SecurityMetrics{
		security("A", contracts.Some(10), contracts.Some(20), contracts.Some(0)),
		security("B", contracts.Some(0), contracts.Some(0), contracts.Some(100)),
	}

	ranked := NewRanker(logger.NewNop()).Rank(batch, contracts.Preferences{TopN: 5, ESGImportance: "high"})

	require.Len(t, ranked, 2)
	assert.Equal(t, "B", ranked[0].Ticker)
	assert.InDelta(t, 40.0, ranked[0].OverallScore, 1e-9)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "A", ranked[1].Ticker)
	assert.InDelta(t, 9.0, ranked[1].OverallScore, 1e-9)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestRank_UnrecognizedTierUsesLowWeights(t *testing.T) {
	batch := []contracts.SecurityMetrics{
		security("A", contracts.Some(10), contracts.Some(20), contracts.Some(30)),
	}

	ranked := NewRanker(logger.NewNop()).Rank(batch, contracts.Preferences{TopN: 1, ESGImportance: ""})

	require.Len(t, ranked, 1)
	// 10×0.5 + 20×0.4 + 30×0.1
	assert.InDelta(t, 16.0, ranked[0].OverallScore, 1e-9)
}

func TestRank_AbsentMetricsScoreAsZero(t *testing.T) {
	batch := []contracts.SecurityMetrics{
		security("NODATA", contracts.None(), contracts.None(), contracts.None()),
		security("NEG", contracts.Some(-10), contracts.None(), contracts.None()),
	}

	ranked := NewRanker(logger.NewNop()).Rank(batch, contracts.Preferences{TopN: 2, ESGImportance: "low"})

	require.Len(t, ranked, 2)
	assert.Equal(t, "NODATA", ranked[0].Ticker)
	assert.Equal(t, 0.0, ranked[0].OverallScore)
	assert.False(t, ranked[0].ProfitMarginPct.Valid, "absent metrics stay absent on output")
	assert.Equal(t, "NEG", ranked[1].Ticker)

	// 입력 배치는 변경되지 않음
	assert.False(t, batch[0].PriceChangePct.Valid)
}

func TestRank_TopN(t *testing.T) {
	batch := []contracts.SecurityMetrics{
		security("A", contracts.Some(1), contracts.None(), contracts.None()),
		security("B", contracts.Some(3), contracts.None(), contracts.None()),
		security("C", contracts.Some(2), contracts.None(), contracts.None()),
	}

	tests := []struct {
		name string
		topN int
		want []string
	}{
		{"zero", 0, []string{}},
		{"negative", -3, []string{}},
		{"one", 1, []string{"B"}},
		{"exact", 3, []string{"B", "C", "A"}},
		{"larger than batch", 10, []string{"B", "C", "A"}},
	}

	ranker := NewRanker(logger.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := ranker.Rank(batch, contracts.Preferences{TopN: tt.topN, ESGImportance: "medium"})
			require.NotNil(t, ranked)

			got := make([]string, 0, len(ranked))
			for _, r := range ranked {
				got = append(got, r.Ticker)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRank_StableTies(t *testing.T) {
	batch := []contracts.SecurityMetrics{
		security("FIRST", contracts.Some(5), contracts.Some(5), contracts.None()),
		security("TOP", contracts.Some(50), contracts.None(), contracts.None()),
		security("SECOND", contracts.Some(5), contracts.Some(5), contracts.None()),
		security("THIRD", contracts.Some(5), contracts.Some(5), contracts.None()),
	}

	ranked := NewRanker(logger.NewNop()).Rank(batch, contracts.Preferences{TopN: 4, ESGImportance: "high"})

	require.Len(t, ranked, 4)
	assert.Equal(t, "TOP", ranked[0].Ticker)
	assert.Equal(t, "FIRST", ranked[1].Ticker)
	assert.Equal(t, "SECOND", ranked[2].Ticker)
	assert.Equal(t, "THIRD", ranked[3].Ticker)
	assert.Equal(t, 4, ranked[3].Rank)
}

func TestRank_EmptyBatch(t *testing.T) {
	ranked := NewRanker(logger.NewNop()).Rank(nil, contracts.Preferences{TopN: 3})
	assert.Empty(t, ranked)
}
