package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/stockpick/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	singleLine = "───────────────────────────────────────────────────────────"
	doubleLine = "═══════════════════════════════════════════════════════════"
)

var (
	rankedColumns  = []string{"Rank", "Ticker", "Name", "Price Chg %", "Revenue", "Margin %", "EPS Gr %", "Score"}
	rankedWidths   = []int{4, 6, 24, 11, 16, 9, 9, 9}
	metricsColumns = []string{"Ticker", "Name", "Price Chg %", "Revenue", "Margin %", "EPS Gr %"}
	metricsWidths  = []int{6, 24, 11, 16, 9, 9}
)

// PrintHeader prints a formatted command header
func PrintHeader(w io.Writer, title string, fields [][2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
	for _, f := range fields {
		fmt.Fprintf(w, "  %-10s: %s\n", f[0], f[1])
	}
	fmt.Fprintln(w, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row, truncating values wider than their column
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], truncate(val, widths[i]))
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintRanked prints the recommendation table
func PrintRanked(w io.Writer, ranked []contracts.RankedSecurity) {
	if len(ranked) == 0 {
		PrintInfo(w, "No stocks to recommend")
		return
	}

	PrintTableHeader(w, rankedColumns, rankedWidths)
	for _, r := range ranked {
		PrintTableRow(w, []string{
			fmt.Sprintf("%d", r.Rank),
			r.Ticker,
			r.Name,
			r.PriceChangePct.String(),
			formatRevenue(r.Revenue),
			r.ProfitMarginPct.String(),
			r.EPSGrowthPct.String(),
			fmt.Sprintf("%.2f", r.OverallScore),
		}, rankedWidths)
	}
}

// PrintMetrics prints the collected batch
func PrintMetrics(w io.Writer, batch *contracts.Batch) {
	PrintTableHeader(w, metricsColumns, metricsWidths)
	for _, m := range batch.Metrics {
		PrintTableRow(w, []string{
			m.Ticker,
			m.Name,
			m.PriceChangePct.String(),
			formatRevenue(m.Revenue),
			m.ProfitMarginPct.String(),
			m.EPSGrowthPct.String(),
		}, metricsWidths)
	}
}

// PrintSkipped lists tickers left out of the batch
func PrintSkipped(w io.Writer, skipped []contracts.SkippedSecurity) {
	if len(skipped) == 0 {
		return
	}

	PrintWarning(w, fmt.Sprintf("%d stocks skipped", len(skipped)))
	for _, s := range skipped {
		fmt.Fprintf(w, "   • %s: %s\n", s.Ticker, s.Reason)
	}
}

// formatRevenue prints whole currency units with thousands separators
func formatRevenue(v contracts.OptionalFloat) string {
	value, ok := v.Get()
	if !ok {
		return "N/A"
	}

	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	digits := fmt.Sprintf("%.0f", value)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
