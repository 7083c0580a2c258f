package contracts

// RankedSecurity is a SecurityMetrics with its composite score
// ⭐ SSOT: Ranker → 출력 랭킹 결과 전달
type RankedSecurity struct {
	SecurityMetrics
	Rank         int     `json:"rank"` // 1-based ranking
	OverallScore float64 `json:"overall_score"`
}
