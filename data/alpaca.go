package data

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/tradecycle/broker/alpaca"
	"github.com/rustyeddy/tradecycle/market"
)

// AlpacaProvider fetches daily bars from the Alpaca market-data API.
type AlpacaProvider struct {
	client *alpaca.Client
	now    func() time.Time
}

// NewAlpacaProvider wraps an alpaca client as a data provider.
func NewAlpacaProvider(client *alpaca.Client) *AlpacaProvider {
	return &AlpacaProvider{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Fetch downloads the lookback window of daily bars for symbol.
func (p *AlpacaProvider) Fetch(ctx context.Context, symbol, period string) (market.Series, error) {
	start, err := ParsePeriod(period, p.now())
	if err != nil {
		return market.Series{}, err
	}

	bars, err := p.client.GetDailyBars(ctx, symbol, start)
	if err != nil {
		return market.Series{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if len(bars) == 0 {
		return market.Series{}, fmt.Errorf("%w: no bars for %s over %s", ErrDataUnavailable, symbol, period)
	}

	series, err := market.NewSeries(symbol, bars)
	if err != nil {
		return market.Series{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return series, nil
}

var _ Provider = (*AlpacaProvider)(nil)
var _ Provider = (*CSVProvider)(nil)
