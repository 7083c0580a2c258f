package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/stockpick/internal/contracts"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// PriceHistory fetches year-to-date daily closes in chronological order.
// An empty slice is a valid "no data" answer.
func (c *Client) PriceHistory(ctx context.Context, symbol string) ([]contracts.PricePoint, error) {
	params := url.Values{}
	params.Set("range", c.historyRange)
	params.Set("interval", "1d")
	params.Set("includePrePost", "false")

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, fmt.Errorf("price history for %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("price history for %s: %w", symbol, resp.Chart.Error)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	points := parseChart(resp.Chart.Result[0])

	c.logger.WithFields(map[string]interface{}{
		"ticker": symbol,
		"count":  len(points),
	}).Debug("Fetched price history")

	return points, nil
}

// parseChart zips timestamps with closes, dropping empty closes
func parseChart(result chartResult) []contracts.PricePoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]contracts.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, contracts.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
