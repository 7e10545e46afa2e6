// Package execution turns an approved signal and account state into a
// concrete order plan. It is pure computation: submission belongs to
// the pipeline.
package execution

import (
	"fmt"
	"math"

	"github.com/rustyeddy/tradecycle/risk"
	"github.com/rustyeddy/tradecycle/strategy"
)

// Side enumerates order directions.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderPlan is an immutable sized order, consumed exactly once by the
// broker. Quantity zero means "no order": a HOLD verdict, a size that
// rounded to zero, or a SELL with nothing held.
type OrderPlan struct {
	Symbol      string
	Side        Side
	Quantity    int
	StopLossPct float64 // advisory metadata only, no bracket order
	Reason      string
}

// HasOrder reports whether the plan calls for a submission.
func (p OrderPlan) HasOrder() bool { return p.Quantity > 0 }

// SignedQuantity returns the position delta the plan implies.
func (p OrderPlan) SignedQuantity() int {
	if p.Side == Sell {
		return -p.Quantity
	}
	return p.Quantity
}

// Sizing holds the position-sizing configuration.
type Sizing struct {
	// RiskFraction is the fraction of equity allocated per trade.
	RiskFraction float64

	// StopLossPct is attached to plans as advisory metadata.
	StopLossPct float64

	// PositionLimit caps the post-fill absolute position; BUY quantity
	// is clipped to the remaining headroom.
	PositionLimit int
}

// Plan sizes an order for an approved signal:
//
//	quantity = floor((equity * RiskFraction) / last close)
//
// BUY quantity is clipped so the resulting position stays within the
// limit. SELL quantity is capped at the currently held quantity; a SELL
// with a flat position produces no order. A computed quantity below one
// share is a skipped trade, not an error.
func Plan(sig strategy.Signal, acct risk.AccountSnapshot, lastClose float64, sz Sizing) OrderPlan {
	plan := OrderPlan{Symbol: sig.Symbol, StopLossPct: sz.StopLossPct}

	if !sig.Action.Tradable() {
		plan.Reason = "signal is HOLD"
		return plan
	}
	if lastClose <= 0 {
		plan.Reason = fmt.Sprintf("invalid last close %.2f", lastClose)
		return plan
	}

	qty := int(math.Floor((acct.Equity * sz.RiskFraction) / lastClose))

	switch sig.Action {
	case strategy.Buy:
		plan.Side = Buy
		if headroom := sz.PositionLimit - acct.PositionQty; qty > headroom {
			qty = headroom
		}
	case strategy.Sell:
		plan.Side = Sell
		if qty > acct.PositionQty {
			qty = acct.PositionQty
		}
	}

	if qty < 1 {
		plan.Side = ""
		plan.Reason = "sized quantity below one share"
		return plan
	}

	plan.Quantity = qty
	plan.Reason = fmt.Sprintf("%s crossover, confidence %.2f", sig.Action, sig.Confidence)
	return plan
}
