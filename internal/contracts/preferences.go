package contracts

import "strings"

// ESGImportance selects the scoring weight policy
type ESGImportance string

const (
	ESGHigh   ESGImportance = "high"
	ESGMedium ESGImportance = "medium"
	ESGLow    ESGImportance = "low"
)

// ParseESGImportance normalizes user input case-insensitively.
// Anything unrecognized maps to ESGLow.
func ParseESGImportance(s string) ESGImportance {
	switch ESGImportance(strings.ToLower(strings.TrimSpace(s))) {
	case ESGHigh:
		return ESGHigh
	case ESGMedium:
		return ESGMedium
	default:
		return ESGLow
	}
}

// Preferences are the user's ranking preferences
// ⭐ SSOT: PreferenceResolver → Ranker 사용자 선호 전달
type Preferences struct {
	StockType     string        `json:"stock_type" yaml:"stock_type"` // 현재 점수 계산에 사용되지 않음
	TopN          int           `json:"top_n" yaml:"top_n"`
	ESGImportance ESGImportance `json:"esg_importance" yaml:"esg_importance"`
}

// Normalize returns a copy with ESGImportance mapped onto a known tier
func (p Preferences) Normalize() Preferences {
	p.StockType = strings.TrimSpace(p.StockType)
	p.ESGImportance = ParseESGImportance(string(p.ESGImportance))
	return p
}
