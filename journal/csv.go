package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVJournal appends decision records to a CSV file, one row per cycle.
type CSVJournal struct {
	w *csv.Writer
	f *os.File
}

// NewCSV opens the file for appending, creating it with a header row if
// it does not exist yet. The journal is reused across invocations, so an
// existing file keeps its prior records.
func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		header := []string{
			"id", "symbol", "started_at", "ended_at", "action", "short_sma", "long_sma",
			"confidence", "signal_time", "risk_allowed", "risk_reasons", "side",
			"quantity", "stop_loss_pct", "plan_reason", "outcome", "order_id", "error",
		}
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &CSVJournal{w: w, f: f}, nil
}

// RecordDecision appends one row and flushes.
func (j *CSVJournal) RecordDecision(d DecisionRecord) error {
	signalTime := ""
	if !d.SignalTime.IsZero() {
		signalTime = d.SignalTime.Format(time.RFC3339)
	}
	err := j.w.Write([]string{
		d.ID,
		d.Symbol,
		d.StartedAt.Format(time.RFC3339),
		d.EndedAt.Format(time.RFC3339),
		d.Action,
		f(d.ShortSMA),
		f(d.LongSMA),
		f(d.Confidence),
		signalTime,
		strconv.FormatBool(d.RiskAllowed),
		strings.Join(d.RiskReasons, "; "),
		d.Side,
		strconv.Itoa(d.Quantity),
		f(d.StopLossPct),
		d.PlanReason,
		string(d.Outcome),
		d.OrderID,
		d.Error,
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

// Close flushes and closes the file.
func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var (
	_ Journal = (*CSVJournal)(nil)
	_ Journal = (*SQLiteJournal)(nil)
)
