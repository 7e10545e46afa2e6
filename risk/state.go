package risk

import "time"

// State tracks the mutable per-day counters the gates read. It is owned
// by a single writer per symbol: the pipeline mutates it only after a
// confirmed submission, and a new trading day starts from ResetDay.
type State struct {
	TradesToday     int
	RealizedPnL     float64
	OpenPositionQty int
	DayOpen         time.Time
}

// ResetDay clears the daily counters at a trading-day boundary. The
// open position carries across days; only the day-scoped counters
// reset.
func (s *State) ResetDay(open time.Time) {
	s.TradesToday = 0
	s.RealizedPnL = 0
	s.DayOpen = open
}

// CountTrade records one submitted order.
func (s *State) CountTrade() { s.TradesToday++ }

// ApplyFill adjusts the open position by a signed share quantity
// (positive = bought, negative = sold).
func (s *State) ApplyFill(signedQty int) { s.OpenPositionQty += signedQty }

// BreachedDailyLoss reports whether realized P&L has reached the
// configured negative floor.
func (s *State) BreachedDailyLoss(maxDailyLoss float64) bool {
	return s.RealizedPnL <= maxDailyLoss
}

// SameTradingDay reports whether now falls on the same UTC calendar day
// as the state's day anchor.
func (s *State) SameTradingDay(now time.Time) bool {
	return dayOpen(now).Equal(dayOpen(s.DayOpen))
}

// dayOpen returns UTC midnight for t's calendar day.
func dayOpen(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
