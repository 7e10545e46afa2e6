// Package indicators provides the moving-average math used by the
// signal engine.
package indicators

import (
	"fmt"

	"github.com/rustyeddy/tradecycle/market"
)

// SMA calculates the Simple Moving Average over the last `period`
// closes of the series, ending at the most recent bar.
func SMA(bars []market.Bar, period int) (float64, error) {
	return smaEndingAt(bars, period, len(bars))
}

// SMAPair returns the SMA ending at the latest bar and the SMA ending
// one bar earlier. The previous value requires period+1 bars; with
// exactly `period` bars the pair is undefined and ok is false.
func SMAPair(bars []market.Bar, period int) (cur, prev float64, ok bool, err error) {
	cur, err = smaEndingAt(bars, period, len(bars))
	if err != nil {
		return 0, 0, false, err
	}
	if len(bars) < period+1 {
		return cur, 0, false, nil
	}
	prev, err = smaEndingAt(bars, period, len(bars)-1)
	if err != nil {
		return 0, 0, false, err
	}
	return cur, prev, true, nil
}

// smaEndingAt averages the `period` closes ending at index end-1.
func smaEndingAt(bars []market.Bar, period, end int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if end > len(bars) {
		return 0, fmt.Errorf("end %d out of range (have %d bars)", end, len(bars))
	}
	if end < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, end)
	}

	sum := 0.0
	for i := end - period; i < end; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period), nil
}
