// Package strategy generates BUY/SELL/HOLD signals from price history.
package strategy

import "time"

// Action is the closed set of signal values. Keeping it typed (rather
// than free-form strings) lets the risk and planning layers switch
// exhaustively.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Tradable reports whether the action would open or close a position.
func (a Action) Tradable() bool { return a == Buy || a == Sell }

// Signal is the immutable output of one signal computation: the action
// plus the moving-average values that produced it and the timestamp of
// the bar it was computed at.
type Signal struct {
	Symbol     string
	Action     Action
	ShortSMA   float64
	LongSMA    float64
	Confidence float64
	Time       time.Time
}
