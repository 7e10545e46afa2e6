package paper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradecycle/broker"
	"github.com/rustyeddy/tradecycle/execution"
	"github.com/rustyeddy/tradecycle/risk"
)

func TestPaperBrokerFlow(t *testing.T) {
	t.Parallel()

	b := New(10000)
	ctx := context.Background()

	acct, err := b.AccountSnapshot(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10000.0, acct.Equity, 1e-12)

	qty, err := b.Position(ctx, "SPY")
	require.NoError(t, err)
	assert.Zero(t, qty)

	conf, err := b.SubmitOrder(ctx, execution.OrderPlan{Symbol: "SPY", Side: execution.Buy, Quantity: 20})
	require.NoError(t, err)
	assert.NotEmpty(t, conf.OrderID)

	qty, err = b.Position(ctx, "SPY")
	require.NoError(t, err)
	assert.Equal(t, 20, qty)

	_, err = b.SubmitOrder(ctx, execution.OrderPlan{Symbol: "SPY", Side: execution.Sell, Quantity: 5})
	require.NoError(t, err)

	qty, _ = b.Position(ctx, "SPY")
	assert.Equal(t, 15, qty)
	assert.Len(t, b.Submissions, 2)
}

func TestPaperBrokerInjectedFailure(t *testing.T) {
	t.Parallel()

	b := New(10000)
	b.FailSubmit = errors.New("exchange closed")

	_, err := b.SubmitOrder(context.Background(), execution.OrderPlan{Symbol: "SPY", Side: execution.Buy, Quantity: 1})
	assert.ErrorIs(t, err, broker.ErrBroker)
}

func TestPaperBrokerBadEquity(t *testing.T) {
	t.Parallel()

	b := New(0)
	_, err := b.AccountSnapshot(context.Background())
	assert.ErrorIs(t, err, risk.ErrAccountState)
}
