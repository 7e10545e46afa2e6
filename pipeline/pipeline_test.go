package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradecycle/broker/paper"
	"github.com/rustyeddy/tradecycle/data"
	"github.com/rustyeddy/tradecycle/execution"
	"github.com/rustyeddy/tradecycle/journal"
	"github.com/rustyeddy/tradecycle/logx"
	"github.com/rustyeddy/tradecycle/market"
	"github.com/rustyeddy/tradecycle/risk"
	"github.com/rustyeddy/tradecycle/strategy"
)

// fakeProvider serves a canned series or error.
type fakeProvider struct {
	series market.Series
	err    error
}

func (f *fakeProvider) Fetch(ctx context.Context, symbol, period string) (market.Series, error) {
	if f.err != nil {
		return market.Series{}, f.err
	}
	return f.series, nil
}

// memJournal captures records in memory.
type memJournal struct {
	records []journal.DecisionRecord
	err     error
}

func (m *memJournal) RecordDecision(d journal.DecisionRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, d)
	return nil
}

func (m *memJournal) Close() error { return nil }

func seriesOf(closes ...float64) market.Series {
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1,
		}
	}
	s, err := market.NewSeries("SPY", bars)
	if err != nil {
		panic(err)
	}
	return s
}

// buySeries crosses short SMA(2) above long SMA(3) at the last bar,
// which closes at 50.
func buySeries() market.Series { return seriesOf(10, 9, 8, 50) }

// sellSeries crosses short SMA(2) below long SMA(3) at the last bar.
func sellSeries() market.Series { return seriesOf(8, 9, 10, 4) }

func testParams() Params {
	return Params{
		Symbol:        "SPY",
		HistoryPeriod: "6mo",
		ShortWindow:   2,
		LongWindow:    3,
		Policy: risk.Policy{
			PositionLimit:   1000,
			MaxTradesPerDay: 2,
			MaxDailyLoss:    -300,
		},
		Sizing: execution.Sizing{
			RiskFraction:  0.1,
			StopLossPct:   0.02,
			PositionLimit: 1000,
		},
	}
}

func newTestPipeline(provider data.Provider, b *paper.Broker, j journal.Journal) *Pipeline {
	return New(testParams(), provider, b, j, logx.NewWriter(io.Discard, "error"))
}

func TestRunApprovedBuy(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{series: buySeries()}, b, j)

	state := &risk.State{}
	rec, err := p.Run(context.Background(), state)
	require.NoError(t, err)

	// equity 10_000 * 0.1 / close 50 = 20 shares.
	assert.Equal(t, journal.OutcomeSubmitted, rec.Outcome)
	assert.Equal(t, "BUY", rec.Action)
	assert.Equal(t, 20, rec.Quantity)
	assert.NotEmpty(t, rec.OrderID)
	assert.True(t, rec.RiskAllowed)

	assert.Equal(t, 1, state.TradesToday, "submission counts the trade")
	assert.Equal(t, 20, state.OpenPositionQty)

	require.Len(t, b.Submissions, 1)
	require.Len(t, j.records, 1, "exactly one record per cycle")
	assert.Equal(t, rec.ID, j.records[0].ID)
}

func TestRunTradeLimitDowngradesToHold(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{series: buySeries()}, b, j)

	state := &risk.State{TradesToday: 2}
	rec, err := p.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, journal.OutcomeHeld, rec.Outcome)
	assert.False(t, rec.RiskAllowed)
	require.NotEmpty(t, rec.RiskReasons)
	assert.Contains(t, rec.RiskReasons[0], "trades today")
	assert.Zero(t, rec.Quantity, "no order plan constructed")
	assert.Empty(t, b.Submissions, "nothing submitted")
	assert.Equal(t, 2, state.TradesToday)
	require.Len(t, j.records, 1)
}

func TestRunSellWithFlatPositionSkips(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{series: sellSeries()}, b, j)

	state := &risk.State{}
	rec, err := p.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, journal.OutcomeSkipped, rec.Outcome)
	assert.Equal(t, "SELL", rec.Action)
	assert.True(t, rec.RiskAllowed)
	assert.Zero(t, rec.Quantity)
	assert.Empty(t, b.Submissions, "no broker submission for a zero-quantity plan")
	assert.Zero(t, state.TradesToday, "skipped plan is not counted")
	require.Len(t, j.records, 1)
}

func TestRunDailyLossForcesHold(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{series: buySeries()}, b, j)

	state := &risk.State{RealizedPnL: -300}
	rec, err := p.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, journal.OutcomeHeld, rec.Outcome)
	assert.Contains(t, rec.RiskReasons[0], "daily floor")
	assert.Empty(t, b.Submissions, "valid crossover still held after loss floor")
}

func TestRunBrokerRejectionMutatesNothing(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	b.FailSubmit = errors.New("market closed")
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{series: buySeries()}, b, j)

	state := &risk.State{}
	rec, err := p.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, journal.OutcomeRejected, rec.Outcome)
	assert.Equal(t, 20, rec.Quantity, "attempted plan stays on the record")
	assert.Contains(t, rec.Error, "market closed")
	assert.Zero(t, state.TradesToday, "no fill, no count")
	assert.Zero(t, state.OpenPositionQty)
	require.Len(t, j.records, 1)
}

func TestRunDataUnavailable(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{err: data.ErrDataUnavailable}, b, j)

	rec, err := p.Run(context.Background(), &risk.State{})

	assert.ErrorIs(t, err, data.ErrDataUnavailable)
	assert.True(t, IsExpectedError(err))
	assert.Equal(t, journal.OutcomeError, rec.Outcome)
	assert.NotEmpty(t, rec.Error)
	assert.Empty(t, b.Submissions)
	require.Len(t, j.records, 1, "error path still journals")
}

func TestRunInsufficientData(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{series: seriesOf(10, 11)}, b, j)

	rec, err := p.Run(context.Background(), &risk.State{})
	assert.ErrorIs(t, err, strategy.ErrInsufficientData)
	assert.Equal(t, journal.OutcomeError, rec.Outcome)
	assert.Contains(t, rec.Error, "insufficient data")
}

func TestRunAccountStateError(t *testing.T) {
	t.Parallel()

	b := paper.New(0) // equity unreadable
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{series: buySeries()}, b, j)

	rec, err := p.Run(context.Background(), &risk.State{})
	assert.ErrorIs(t, err, risk.ErrAccountState)
	assert.Equal(t, journal.OutcomeError, rec.Outcome)
	assert.Empty(t, b.Submissions, "no order attempted")
}

func TestRunJournalFailureDoesNotCrash(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	j := &memJournal{err: errors.New("disk full")}
	p := newTestPipeline(&fakeProvider{series: buySeries()}, b, j)

	rec, err := p.Run(context.Background(), &risk.State{})
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeSubmitted, rec.Outcome, "decision unaffected by journal failure")
}

func TestRunReconcilesPositionFromBroker(t *testing.T) {
	t.Parallel()

	b := paper.New(10000)
	b.SetPosition("SPY", 7)
	j := &memJournal{}
	p := newTestPipeline(&fakeProvider{series: sellSeries()}, b, j)

	state := &risk.State{OpenPositionQty: 999} // stale snapshot
	rec, err := p.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, journal.OutcomeSubmitted, rec.Outcome)
	assert.Equal(t, 7, rec.Quantity, "sell capped at broker-reported position")
	assert.Equal(t, 0, state.OpenPositionQty, "7 held minus 7 sold")
}

func TestIsExpectedError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsExpectedError(data.ErrDataUnavailable))
	assert.False(t, IsExpectedError(errors.New("nil pointer")))
}
