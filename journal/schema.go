package journal

const Schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	ended_at DATETIME NOT NULL,
	action TEXT NOT NULL,
	short_sma REAL NOT NULL,
	long_sma REAL NOT NULL,
	confidence REAL NOT NULL,
	signal_time DATETIME,
	risk_allowed INTEGER NOT NULL,
	risk_reasons TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	stop_loss_pct REAL NOT NULL,
	plan_reason TEXT NOT NULL,
	outcome TEXT NOT NULL,
	order_id TEXT NOT NULL,
	error TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_symbol_started ON decisions(symbol, started_at);
`
