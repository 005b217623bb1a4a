package api

import (
	"context"
	"net/url"
	"strconv"

	"tradeterm/internal/model"
)

// GetBars fetches up to limit historical bars for a symbol and timeframe,
// oldest first. Used to seed the bar builder before the live channel opens.
func (c *Client) GetBars(ctx context.Context, symbol, timeframe string, limit int) ([]model.Bar, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("timeframe", timeframe)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp barsResponse
	if err := c.get(ctx, "/api/bars", query, &resp); err != nil {
		return nil, err
	}

	bars := make([]model.Bar, 0, len(resp.Bars))
	for _, b := range resp.Bars {
		bars = append(bars, b.ToModel())
	}
	return bars, nil
}
