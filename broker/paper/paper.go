// Package paper provides an in-memory broker for dry runs and tests.
// Fills are assumed instantaneous at the submitted quantity.
package paper

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/tradecycle/broker"
	"github.com/rustyeddy/tradecycle/execution"
	"github.com/rustyeddy/tradecycle/pkg/id"
	"github.com/rustyeddy/tradecycle/risk"
)

// Broker simulates a brokerage account. The zero value is unusable;
// construct with New.
type Broker struct {
	equity    float64
	positions map[string]int

	// Submissions records every accepted order in submission order.
	Submissions []broker.OrderConfirmation

	// FailSubmit, when set, rejects every submission with the given
	// error. Used to exercise the broker-rejection path.
	FailSubmit error

	now func() time.Time
}

// New creates a paper broker with starting equity.
func New(equity float64) *Broker {
	return &Broker{
		equity:    equity,
		positions: make(map[string]int),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetPosition seeds an open position for symbol.
func (b *Broker) SetPosition(symbol string, qty int) { b.positions[symbol] = qty }

// AccountSnapshot returns the simulated equity.
func (b *Broker) AccountSnapshot(ctx context.Context) (risk.AccountSnapshot, error) {
	if b.equity <= 0 {
		return risk.AccountSnapshot{}, fmt.Errorf("%w: paper equity %.2f", risk.ErrAccountState, b.equity)
	}
	return risk.AccountSnapshot{Equity: b.equity}, nil
}

// Position returns the held quantity for symbol, zero when flat.
func (b *Broker) Position(ctx context.Context, symbol string) (int, error) {
	return b.positions[symbol], nil
}

// SubmitOrder accepts the plan, applies it to the simulated position,
// and returns a confirmation.
func (b *Broker) SubmitOrder(ctx context.Context, plan execution.OrderPlan) (broker.OrderConfirmation, error) {
	if b.FailSubmit != nil {
		return broker.OrderConfirmation{}, fmt.Errorf("%w: %v", broker.ErrBroker, b.FailSubmit)
	}
	if !plan.HasOrder() {
		return broker.OrderConfirmation{}, fmt.Errorf("%w: plan has no order", broker.ErrBroker)
	}

	b.positions[plan.Symbol] += plan.SignedQuantity()

	conf := broker.OrderConfirmation{
		OrderID:  id.New(),
		Symbol:   plan.Symbol,
		Side:     plan.Side,
		Quantity: plan.Quantity,
		Time:     b.now(),
	}
	b.Submissions = append(b.Submissions, conf)
	return conf, nil
}

var _ broker.Broker = (*Broker)(nil)
