package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/stockpick/internal/contracts"
)

// lineItemNames maps quoteSummary statement fields onto statement line items
var lineItemNames = map[string]string{
	"totalRevenue":                      contracts.LineTotalRevenue,
	"netIncome":                         contracts.LineNetIncome,
	"costOfRevenue":                     "Cost Of Revenue",
	"grossProfit":                       "Gross Profit",
	"operatingIncome":                   "Operating Income",
	"totalOperatingExpenses":            "Total Operating Expenses",
	"ebit":                              "EBIT",
	"incomeBeforeTax":                   "Pretax Income",
	"incomeTaxExpense":                  "Tax Provision",
	"interestExpense":                   "Interest Expense",
	"netIncomeApplicableToCommonShares": "Net Income Common Stockholders",
}

// fields that describe the row rather than a line item
var statementMeta = map[string]bool{
	"endDate": true,
	"maxAge":  true,
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *APIError                    `json:"error"`
	} `json:"quoteSummary"`
}

type incomeStatementHistory struct {
	IncomeStatementHistory []map[string]json.RawMessage `json:"incomeStatementHistory"`
}

// rawValue is Yahoo's {"raw": 1.0, "fmt": "1.00"} wrapper
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// IncomeStatement fetches the annual income statement history.
// A statement with no periods is a valid "no data" answer.
func (c *Client) IncomeStatement(ctx context.Context, symbol string) (*contracts.IncomeStatement, error) {
	module, err := c.summaryModule(ctx, symbol, "incomeStatementHistory")
	if err != nil {
		return nil, fmt.Errorf("income statement for %s: %w", symbol, err)
	}
	if module == nil {
		return &contracts.IncomeStatement{}, nil
	}

	var history incomeStatementHistory
	if err := json.Unmarshal(module, &history); err != nil {
		return nil, fmt.Errorf("income statement for %s: decode: %w", symbol, err)
	}

	return buildStatement(history.IncomeStatementHistory), nil
}

// KeyStatistics fetches the default key statistics module
func (c *Client) KeyStatistics(ctx context.Context, symbol string) (contracts.KeyStatistics, error) {
	module, err := c.summaryModule(ctx, symbol, "defaultKeyStatistics")
	if err != nil {
		return nil, fmt.Errorf("key statistics for %s: %w", symbol, err)
	}
	stats := contracts.KeyStatistics{}
	if module == nil {
		return stats, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(module, &fields); err != nil {
		return nil, fmt.Errorf("key statistics for %s: decode: %w", symbol, err)
	}

	for key, raw := range fields {
		if v, ok := decodeNumber(raw); ok {
			stats[key] = v
		}
	}
	return stats, nil
}

// summaryModule fetches one quoteSummary module; nil means the module is absent
func (c *Client) summaryModule(ctx context.Context, symbol, module string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("modules", module)

	var resp summaryResponse
	if err := c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, resp.QuoteSummary.Error
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil
	}

	raw, ok := resp.QuoteSummary.Result[0][module]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	return raw, nil
}

// buildStatement pivots per-period rows into a line-item table, most recent period first
func buildStatement(rows []map[string]json.RawMessage) *contracts.IncomeStatement {
	type period struct {
		end    time.Time
		fields map[string]json.RawMessage
	}

	periods := make([]period, 0, len(rows))
	for _, row := range rows {
		var end time.Time
		if v, ok := decodeNumber(row["endDate"]); ok {
			end = time.Unix(int64(v), 0).UTC()
		}
		periods = append(periods, period{end: end, fields: row})
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].end.After(periods[j].end)
	})

	stmt := &contracts.IncomeStatement{
		Periods: make([]time.Time, len(periods)),
		Items:   map[string][]*float64{},
	}
	for i, p := range periods {
		stmt.Periods[i] = p.end
		for key, raw := range p.fields {
			if statementMeta[key] {
				continue
			}
			v, ok := decodeNumber(raw)
			if !ok {
				continue
			}

			name := key
			if mapped, exists := lineItemNames[key]; exists {
				name = mapped
			}
			row, exists := stmt.Items[name]
			if !exists {
				row = make([]*float64, len(periods))
				stmt.Items[name] = row
			}
			value := v
			row[i] = &value
		}
	}

	return stmt
}

// decodeNumber accepts {"raw": n} wrappers and bare numbers
func decodeNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var wrapped rawValue
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Raw != nil {
		return *wrapped.Raw, true
	}

	var bare float64
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, true
	}
	return 0, false
}
