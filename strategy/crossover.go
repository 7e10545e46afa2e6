package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/tradecycle/indicators"
	"github.com/rustyeddy/tradecycle/market"
)

// ErrInsufficientData reports a series shorter than the long window.
var ErrInsufficientData = errors.New("insufficient data for long SMA window")

// Crossover is a fast/slow SMA crossover signal engine.
// - BUY when the short SMA crosses above the long SMA
// - SELL when it crosses below
// - HOLD otherwise, including exact equality at the boundary
// It is a pure function of the series: no I/O, no internal state.
type Crossover struct {
	ShortWindow int
	LongWindow  int
}

// NewCrossover validates the window pair.
func NewCrossover(short, long int) (*Crossover, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("windows must be positive (short=%d long=%d)", short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("short window %d must be less than long window %d", short, long)
	}
	return &Crossover{ShortWindow: short, LongWindow: long}, nil
}

// Compute evaluates the crossover at the most recent bar. Crossing is
// detected against the SMA pair one bar earlier; with exactly
// LongWindow bars the previous pair is undefined and the result is
// HOLD.
func (c *Crossover) Compute(series market.Series) (Signal, error) {
	if series.Len() < c.LongWindow {
		return Signal{}, fmt.Errorf("%w: need %d bars, got %d", ErrInsufficientData, c.LongWindow, series.Len())
	}

	shortCur, shortPrev, shortOK, err := indicators.SMAPair(series.Bars, c.ShortWindow)
	if err != nil {
		return Signal{}, err
	}
	longCur, longPrev, longOK, err := indicators.SMAPair(series.Bars, c.LongWindow)
	if err != nil {
		return Signal{}, err
	}

	last, _ := series.Last()
	sig := Signal{
		Symbol:   series.Symbol,
		Action:   Hold,
		ShortSMA: shortCur,
		LongSMA:  longCur,
		Time:     last.Time,
	}

	if shortOK && longOK {
		switch {
		case shortPrev <= longPrev && shortCur > longCur:
			sig.Action = Buy
		case shortPrev >= longPrev && shortCur < longCur:
			sig.Action = Sell
		}
	}

	sig.Confidence = confidence(sig.Action, shortCur, longCur)
	return sig, nil
}

// confidence scales with the relative spread between the two averages;
// a HOLD is always the neutral 0.5.
func confidence(a Action, shortSMA, longSMA float64) float64 {
	if !a.Tradable() || longSMA == 0 {
		return 0.5
	}
	spread := math.Abs(shortSMA-longSMA) / longSMA
	return math.Min(0.99, math.Round((0.5+spread*10)*100)/100)
}
