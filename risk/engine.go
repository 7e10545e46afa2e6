package risk

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/tradecycle/strategy"
)

// ErrAccountState reports an unreadable or malformed broker account
// snapshot. It is fatal for the cycle: no order may be attempted
// against unknown equity.
var ErrAccountState = errors.New("broker account state unreadable")

// AccountSnapshot is the read-only account view the gates evaluate
// against, supplied by the broker at cycle start.
type AccountSnapshot struct {
	Equity      float64
	PositionQty int
}

// Violation names one failed gate.
type Violation struct {
	Code string
	Msg  string
}

// Verdict is the outcome of risk evaluation. Signal carries the
// approved action: it equals the input signal when every gate passed,
// and is downgraded to HOLD otherwise. Violations lists every gate that
// failed, not just the first.
type Verdict struct {
	Signal     strategy.Signal
	Allowed    bool
	Violations []Violation
}

func (v *Verdict) add(code, msg string) {
	v.Violations = append(v.Violations, Violation{Code: code, Msg: msg})
	v.Allowed = false
}

// Reasons returns the violation messages for logging.
func (v Verdict) Reasons() []string {
	out := make([]string, len(v.Violations))
	for i, viol := range v.Violations {
		out[i] = viol.Msg
	}
	return out
}

// Evaluate runs every gate against the proposed signal and returns the
// verdict. Gates are evaluated independently so the verdict reports all
// violations. Evaluate never mutates state; trade counting happens in
// the pipeline after a confirmed submission, so a signal that sizes to
// zero is not double-counted.
//
// A HOLD signal passes trivially. A malformed account snapshot fails
// with ErrAccountState.
func Evaluate(p Policy, sig strategy.Signal, acct AccountSnapshot, state *State) (Verdict, error) {
	if acct.Equity <= 0 {
		return Verdict{}, fmt.Errorf("%w: equity %.2f", ErrAccountState, acct.Equity)
	}

	v := Verdict{Signal: sig, Allowed: true}
	if !sig.Action.Tradable() {
		return v, nil
	}

	if state.BreachedDailyLoss(p.MaxDailyLoss) {
		v.add("DAILY_LOSS_LIMIT",
			fmt.Sprintf("realized P&L %.2f at or below daily floor %.2f", state.RealizedPnL, p.MaxDailyLoss))
	}
	if state.TradesToday >= p.MaxTradesPerDay {
		v.add("TRADE_LIMIT",
			fmt.Sprintf("trades today %d >= max %d", state.TradesToday, p.MaxTradesPerDay))
	}

	switch sig.Action {
	case strategy.Buy:
		if acct.PositionQty >= p.PositionLimit {
			v.add("POSITION_LIMIT",
				fmt.Sprintf("position %d at limit %d, no long headroom", acct.PositionQty, p.PositionLimit))
		}
	case strategy.Sell:
		if acct.PositionQty <= -p.PositionLimit {
			v.add("POSITION_LIMIT",
				fmt.Sprintf("position %d at short limit %d", acct.PositionQty, -p.PositionLimit))
		}
	}

	if !v.Allowed {
		v.Signal.Action = strategy.Hold
	}
	return v, nil
}
