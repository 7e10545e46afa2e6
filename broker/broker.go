// Package broker defines the brokerage contract the pipeline submits
// through. Implementations: broker/alpaca (REST) and broker/paper
// (in-memory).
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/tradecycle/execution"
	"github.com/rustyeddy/tradecycle/risk"
)

// ErrBroker reports a submission rejected by the brokerage. The cycle
// still logs the attempted plan; no position or counter mutates, since
// no fill occurred.
var ErrBroker = errors.New("broker rejected order")

// OrderConfirmation is the broker's acceptance of a submitted plan.
type OrderConfirmation struct {
	OrderID  string
	Symbol   string
	Side     execution.Side
	Quantity int
	Time     time.Time
}

// Broker is the opaque submission sink plus the two account reads the
// risk gates need at cycle start.
type Broker interface {
	AccountSnapshot(ctx context.Context) (risk.AccountSnapshot, error)
	Position(ctx context.Context, symbol string) (int, error)
	SubmitOrder(ctx context.Context, plan execution.OrderPlan) (OrderConfirmation, error)
}
