// Package market holds the price-history types shared by the data,
// strategy, and execution layers.
package market

import "time"

// Bar represents one daily OHLCV (Open, High, Low, Close, Volume)
// observation. Bars are immutable once fetched.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Valid reports whether the bar carries usable prices: all four prices
// positive, volume non-negative, timestamp set.
func (b Bar) Valid() bool {
	if b.Time.IsZero() {
		return false
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return false
	}
	return b.Volume >= 0
}
