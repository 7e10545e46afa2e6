package market

import (
	"fmt"
	"time"
)

// Series is an ordered, chronological sequence of bars for one symbol.
// The caller owns it for the duration of one cycle; nothing mutates it
// in place.
type Series struct {
	Symbol string
	Bars   []Bar
}

// NewSeries validates and wraps a bar slice: bars must be chronological
// with strictly increasing timestamps and positive prices.
func NewSeries(symbol string, bars []Bar) (Series, error) {
	var prev time.Time
	for i, b := range bars {
		if !b.Valid() {
			return Series{}, fmt.Errorf("bar %d (%s): invalid OHLCV values", i, b.Time.Format("2006-01-02"))
		}
		if i > 0 && !b.Time.After(prev) {
			return Series{}, fmt.Errorf("bar %d (%s): timestamps must be strictly increasing", i, b.Time.Format("2006-01-02"))
		}
		prev = b.Time
	}
	return Series{Symbol: symbol, Bars: bars}, nil
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar. ok is false for an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// LastClose returns the close of the most recent bar, or 0 for an empty
// series.
func (s Series) LastClose() float64 {
	b, ok := s.Last()
	if !ok {
		return 0
	}
	return b.Close
}

// Closes returns the close prices in order. The slice is freshly
// allocated so callers cannot alias the series.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}
