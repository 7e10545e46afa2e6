package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fixture = `date,open,high,low,close,volume
2025-02-24,100,102,99,101,1000
2025-02-25,101,103,100,102,1100
2025-02-26,102,104,101,103,1200
2025-03-26,103,105,102,104,1300
`

func TestCSVProviderFetch(t *testing.T) {
	t.Parallel()

	p := NewCSVProvider(writeFixture(t, fixture))
	series, err := p.Fetch(context.Background(), "SPY", "6mo")
	require.NoError(t, err)

	assert.Equal(t, "SPY", series.Symbol)
	assert.Equal(t, 4, series.Len())
	assert.InDelta(t, 104.0, series.LastClose(), 1e-12)
}

func TestCSVProviderPeriodWindow(t *testing.T) {
	t.Parallel()

	// Period is anchored at the last bar (2025-03-26); 7d keeps only
	// that bar.
	p := NewCSVProvider(writeFixture(t, fixture))
	series, err := p.Fetch(context.Background(), "SPY", "7d")
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())
}

func TestCSVProviderMissingFile(t *testing.T) {
	t.Parallel()

	p := NewCSVProvider(filepath.Join(t.TempDir(), "nope.csv"))
	_, err := p.Fetch(context.Background(), "SPY", "6mo")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestCSVProviderRejectsDisorderedRows(t *testing.T) {
	t.Parallel()

	bad := "2025-02-25,1,1,1,1,10\n2025-02-24,1,1,1,1,10\n"
	p := NewCSVProvider(writeFixture(t, bad))
	_, err := p.Fetch(context.Background(), "SPY", "6mo")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 26, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   time.Time
	}{
		{"6mo", now.AddDate(0, -6, 0)},
		{"1y", now.AddDate(-1, 0, 0)},
		{"90d", now.AddDate(0, 0, -90)},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.period, now)
		require.NoError(t, err, tt.period)
		assert.Equal(t, tt.want, got, tt.period)
	}

	_, err := ParsePeriod("6 fortnights", now)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
