// Package data supplies ordered OHLCV history to the pipeline.
package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradecycle/market"
)

// ErrDataUnavailable reports an invalid symbol/period or an unreachable
// provider. Fatal for the cycle.
var ErrDataUnavailable = errors.New("market data unavailable")

// Provider fetches an ordered series of daily bars over a lookback
// period like "6mo", "1y", or "90d".
type Provider interface {
	Fetch(ctx context.Context, symbol, period string) (market.Series, error)
}

// ParsePeriod converts a lookback period into the window start relative
// to now. Supported suffixes: d (days), mo (months), y (years).
func ParsePeriod(period string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))

	var suffix string
	switch {
	case strings.HasSuffix(p, "mo"):
		suffix = "mo"
	case strings.HasSuffix(p, "y"):
		suffix = "y"
	case strings.HasSuffix(p, "d"):
		suffix = "d"
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported period %q", ErrDataUnavailable, period)
	}

	n, err := strconv.Atoi(strings.TrimSuffix(p, suffix))
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("%w: unsupported period %q", ErrDataUnavailable, period)
	}

	switch suffix {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}
