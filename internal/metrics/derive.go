package metrics

import (
	"math"

	"github.com/wonny/stockpick/internal/contracts"
)

// PriceChangePct is the simple total return between the first and last close,
// in percent. A zero first close yields an absent value.
func PriceChangePct(points []contracts.PricePoint) contracts.OptionalFloat {
	if len(points) == 0 {
		return contracts.None()
	}

	first := points[0].Close
	last := points[len(points)-1].Close
	if first == 0 {
		return contracts.None()
	}

	return contracts.Some((last - first) / first * 100)
}

// FinancialMetrics reads revenue and derives the profit margin from the most
// recent statement period. Revenue and net income are looked up independently;
// a malformed revenue row drops both outputs, a malformed net income row drops
// only the margin.
func FinancialMetrics(stmt *contracts.IncomeStatement) (revenue, profitMarginPct contracts.OptionalFloat) {
	if stmt.Empty() {
		return contracts.None(), contracts.None()
	}

	rev, revOK, err := stmt.Latest(contracts.LineTotalRevenue)
	if err != nil {
		return contracts.None(), contracts.None()
	}
	if revOK {
		revenue = contracts.Some(rev)
	}

	netIncome, niOK, err := stmt.Latest(contracts.LineNetIncome)
	if err != nil {
		return revenue, contracts.None()
	}

	profitMarginPct = ProfitMarginPct(revenue, optional(netIncome, niOK))
	return revenue, profitMarginPct
}

// ProfitMarginPct is net income over revenue in percent. Both inputs must be
// present and non-zero, otherwise the margin is absent.
func ProfitMarginPct(revenue, netIncome contracts.OptionalFloat) contracts.OptionalFloat {
	rev, ok := revenue.Get()
	if !ok || rev == 0 {
		return contracts.None()
	}
	ni, ok := netIncome.Get()
	if !ok || ni == 0 {
		return contracts.None()
	}

	return contracts.Some(ni / rev * 100)
}

// EPSGrowthPct is (trailing - forward) / |forward| in percent.
// 부호 규칙(trailing - forward)은 기존 랭킹과 동일하게 유지
func EPSGrowthPct(trailing, forward contracts.OptionalFloat) contracts.OptionalFloat {
	t, ok := trailing.Get()
	if !ok {
		return contracts.None()
	}
	f, ok := forward.Get()
	if !ok || f == 0 {
		return contracts.None()
	}

	return contracts.Some((t - f) / math.Abs(f) * 100)
}

func optional(v float64, ok bool) contracts.OptionalFloat {
	if !ok {
		return contracts.None()
	}
	return contracts.Some(v)
}
