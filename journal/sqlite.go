package journal

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal stores decision records in a SQLite database. ULID
// primary keys keep rows ordered by cycle time.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

// RecordDecision inserts one decision row.
func (j *SQLiteJournal) RecordDecision(d DecisionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(id, symbol, started_at, ended_at, action, short_sma, long_sma, confidence, signal_time,
		 risk_allowed, risk_reasons, side, quantity, stop_loss_pct, plan_reason, outcome, order_id, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Symbol, d.StartedAt, d.EndedAt, d.Action, d.ShortSMA, d.LongSMA, d.Confidence, d.SignalTime,
		boolToInt(d.RiskAllowed), strings.Join(d.RiskReasons, "; "), d.Side, d.Quantity, d.StopLossPct,
		d.PlanReason, string(d.Outcome), d.OrderID, d.Error,
	)
	return err
}

// Decisions returns every record for symbol, oldest first.
func (j *SQLiteJournal) Decisions(symbol string) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, symbol, started_at, ended_at, action, short_sma, long_sma, confidence, signal_time,
		       risk_allowed, risk_reasons, side, quantity, stop_loss_pct, plan_reason, outcome, order_id, error
		FROM decisions WHERE symbol = ? ORDER BY id`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var d DecisionRecord
		var allowed int
		var reasons string
		var signalTime sql.NullTime
		err := rows.Scan(&d.ID, &d.Symbol, &d.StartedAt, &d.EndedAt, &d.Action, &d.ShortSMA, &d.LongSMA,
			&d.Confidence, &signalTime, &allowed, &reasons, &d.Side, &d.Quantity, &d.StopLossPct,
			&d.PlanReason, &d.Outcome, &d.OrderID, &d.Error)
		if err != nil {
			return nil, err
		}
		d.RiskAllowed = allowed != 0
		if reasons != "" {
			d.RiskReasons = strings.Split(reasons, "; ")
		}
		if signalTime.Valid {
			d.SignalTime = signalTime.Time.UTC()
		}
		d.StartedAt = d.StartedAt.UTC()
		d.EndedAt = d.EndedAt.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (j *SQLiteJournal) Close() error { return j.db.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
