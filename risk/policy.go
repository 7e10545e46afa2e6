// Package risk enforces the hard portfolio limits that stand between a
// signal and an order. The limits are absolute: a violated gate
// downgrades the signal to HOLD before any order is constructed.
package risk

// Policy defines the static risk configuration for one symbol.
type Policy struct {
	// PositionLimit caps the absolute share quantity held, long or
	// short.
	PositionLimit int

	// MaxTradesPerDay caps submitted orders per trading day.
	MaxTradesPerDay int

	// MaxDailyLoss is the negative realized-P&L floor for the day.
	// Once realized P&L reaches it, every further signal is forced to
	// HOLD until the next trading day.
	MaxDailyLoss float64
}
