package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradecycle/market"
)

func seriesFromCloses(closes ...float64) market.Series {
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1,
		}
	}
	s, err := market.NewSeries("SPY", bars)
	if err != nil {
		panic(err)
	}
	return s
}

func TestNewCrossoverRejectsBadWindows(t *testing.T) {
	t.Parallel()

	_, err := NewCrossover(50, 20)
	assert.Error(t, err, "short must be below long")

	_, err = NewCrossover(20, 20)
	assert.Error(t, err, "equal windows are invalid")

	_, err = NewCrossover(0, 20)
	assert.Error(t, err)
}

func TestComputeInsufficientData(t *testing.T) {
	t.Parallel()

	c, err := NewCrossover(2, 4)
	require.NoError(t, err)

	_, err = c.Compute(seriesFromCloses(1, 2, 3))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeBullishCross(t *testing.T) {
	t.Parallel()

	c, err := NewCrossover(2, 3)
	require.NoError(t, err)

	// Yesterday: short SMA(9,8)=8.5 <= long SMA(10,9,8)=9.
	// Today:     short SMA(8,14)=11 > long SMA(9,8,14)=10.33.
	series := seriesFromCloses(10, 9, 8, 14)
	sig, err := c.Compute(series)
	require.NoError(t, err)

	assert.Equal(t, Buy, sig.Action)
	assert.InDelta(t, 11.0, sig.ShortSMA, 1e-9)
	assert.InDelta(t, 31.0/3.0, sig.LongSMA, 1e-9)
	assert.Equal(t, series.Bars[3].Time, sig.Time)
	assert.Greater(t, sig.Confidence, 0.5)
}

func TestComputeBearishCross(t *testing.T) {
	t.Parallel()

	c, err := NewCrossover(2, 3)
	require.NoError(t, err)

	sig, err := c.Compute(seriesFromCloses(8, 9, 10, 4))
	require.NoError(t, err)
	assert.Equal(t, Sell, sig.Action)
}

func TestComputeHoldWithoutCross(t *testing.T) {
	t.Parallel()

	c, err := NewCrossover(2, 3)
	require.NoError(t, err)

	// Short SMA stays above long SMA the whole time: no cross.
	sig, err := c.Compute(seriesFromCloses(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Action)
	assert.InDelta(t, 0.5, sig.Confidence, 1e-12)
}

func TestComputeHoldAtExactWindowLength(t *testing.T) {
	t.Parallel()

	c, err := NewCrossover(2, 3)
	require.NoError(t, err)

	// Exactly LongWindow bars: previous SMA pair undefined, so HOLD
	// even though the levels differ.
	sig, err := c.Compute(seriesFromCloses(10, 9, 14))
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Action)
}

func TestComputeHoldOnEqualSMAs(t *testing.T) {
	t.Parallel()

	c, err := NewCrossover(2, 4)
	require.NoError(t, err)

	// Constant closes: short and long SMAs identical, boundary case
	// must not produce a spurious BUY or SELL.
	sig, err := c.Compute(seriesFromCloses(7, 7, 7, 7, 7))
	require.NoError(t, err)
	assert.Equal(t, Hold, sig.Action)
}

func TestComputeDeterministic(t *testing.T) {
	t.Parallel()

	c, err := NewCrossover(2, 3)
	require.NoError(t, err)

	series := seriesFromCloses(10, 9, 8, 14)
	first, err := c.Compute(series)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := c.Compute(series)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
