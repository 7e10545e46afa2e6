package alpaca

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rustyeddy/tradecycle/market"
)

type apiBar struct {
	T string  `json:"t"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V int64   `json:"v"`
}

type barsResponse struct {
	Bars          []apiBar `json:"bars"`
	NextPageToken string   `json:"next_page_token"`
}

// GetDailyBars fetches daily bars from start until now, following
// pagination until the window is exhausted.
func (c *Client) GetDailyBars(ctx context.Context, symbol string, start time.Time) ([]market.Bar, error) {
	var bars []market.Bar
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("timeframe", "1Day")
		params.Set("start", start.UTC().Format(time.RFC3339))
		params.Set("limit", "1000")
		params.Set("adjustment", "raw")
		if pageToken != "" {
			params.Set("page_token", pageToken)
		}

		apiURL := fmt.Sprintf("%s/v2/stocks/%s/bars?%s", c.dataURL, symbol, params.Encode())

		var resp barsResponse
		if err := c.get(ctx, apiURL, &resp); err != nil {
			return nil, err
		}

		for _, ab := range resp.Bars {
			t, err := time.Parse(time.RFC3339, ab.T)
			if err != nil {
				return nil, fmt.Errorf("parse bar time %s: %w", ab.T, err)
			}
			bars = append(bars, market.Bar{
				Time:   t,
				Open:   ab.O,
				High:   ab.H,
				Low:    ab.L,
				Close:  ab.C,
				Volume: ab.V,
			})
		}

		if resp.NextPageToken == "" {
			return bars, nil
		}
		pageToken = resp.NextPageToken
	}
}
