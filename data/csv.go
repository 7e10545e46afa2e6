package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradecycle/market"
)

// CSVProvider reads daily bars from a CSV file for deterministic
// offline runs and tests.
//
// Expected columns: date,open,high,low,close,volume. A header row is
// allowed. Dates are YYYY-MM-DD or RFC3339.
type CSVProvider struct {
	Path string
}

// NewCSVProvider returns a provider backed by the given file.
func NewCSVProvider(path string) *CSVProvider { return &CSVProvider{Path: path} }

// Fetch loads every bar on or after the period start. The period is
// interpreted relative to the last bar in the file, so replaying a
// fixed fixture stays deterministic.
func (p *CSVProvider) Fetch(ctx context.Context, symbol, period string) (market.Series, error) {
	bars, err := p.readAll()
	if err != nil {
		return market.Series{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if len(bars) == 0 {
		return market.Series{}, fmt.Errorf("%w: no rows in %s", ErrDataUnavailable, p.Path)
	}

	start, err := ParsePeriod(period, bars[len(bars)-1].Time)
	if err != nil {
		return market.Series{}, err
	}

	kept := bars[:0:0]
	for _, b := range bars {
		if !b.Time.Before(start) {
			kept = append(kept, b)
		}
	}

	series, err := market.NewSeries(symbol, kept)
	if err != nil {
		return market.Series{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return series, nil
}

func (p *CSVProvider) readAll() ([]market.Bar, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []market.Bar
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 6 {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		b, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
}

func parseRow(row []string) (market.Bar, error) {
	ts, err := parseDate(strings.TrimSpace(row[0]))
	if err != nil {
		return market.Bar{}, err
	}

	var prices [4]float64
	for i := 0; i < 4; i++ {
		prices[i], err = strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("parse price column %d: %w", i+1, err)
		}
	}
	vol, err := strconv.ParseInt(strings.TrimSpace(row[5]), 10, 64)
	if err != nil {
		return market.Bar{}, fmt.Errorf("parse volume: %w", err)
	}

	return market.Bar{
		Time:   ts,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: vol,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
