// Package pipeline orchestrates one decision cycle:
//
//	FETCH_DATA -> COMPUTE_SIGNAL -> EVALUATE_RISK -> PLAN_ORDER -> SUBMIT -> LOG -> DONE
//
// A cycle is batch and terminal: any fatal stage error transitions
// straight to LOG with an error record, and every path emits exactly
// one DecisionRecord. There are no retries inside a cycle; an external
// scheduler may invoke Run repeatedly.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradecycle/broker"
	"github.com/rustyeddy/tradecycle/data"
	"github.com/rustyeddy/tradecycle/execution"
	"github.com/rustyeddy/tradecycle/journal"
	"github.com/rustyeddy/tradecycle/metrics"
	"github.com/rustyeddy/tradecycle/pkg/id"
	"github.com/rustyeddy/tradecycle/risk"
	"github.com/rustyeddy/tradecycle/strategy"
)

// Stage names used in logs and error metrics.
const (
	StageFetchData     = "fetch_data"
	StageComputeSignal = "compute_signal"
	StageEvaluateRisk  = "evaluate_risk"
	StagePlanOrder     = "plan_order"
	StageSubmit        = "submit"
)

// Params is the static configuration for one symbol's pipeline.
type Params struct {
	Symbol        string
	HistoryPeriod string
	ShortWindow   int
	LongWindow    int
	Policy        risk.Policy
	Sizing        execution.Sizing
}

// Pipeline wires the collaborators for a cycle. It owns no state of its
// own: the day-scoped risk state is passed into Run so the pipeline
// stays a pure (inputs, state) -> (decision, state') function and can
// be driven by an external scheduler without change.
type Pipeline struct {
	params  Params
	data    data.Provider
	broker  broker.Broker
	journal journal.Journal
	log     zerolog.Logger

	now func() time.Time
}

// New assembles a pipeline.
func New(params Params, provider data.Provider, b broker.Broker, j journal.Journal, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		params:  params,
		data:    provider,
		broker:  b,
		journal: j,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one cycle against the given day state. The state is
// mutated only after a confirmed submission: trade count and open
// position update together, and a broker rejection leaves both
// untouched. A record is returned on every path; the error is non-nil
// only when a stage failed fatally, so the host can check it against
// IsExpectedError to decide whether the process itself failed.
func (p *Pipeline) Run(ctx context.Context, state *risk.State) (journal.DecisionRecord, error) {
	rec := journal.DecisionRecord{
		ID:        id.New(),
		Symbol:    p.params.Symbol,
		StartedAt: p.now(),
	}

	// FETCH_DATA
	series, err := p.data.Fetch(ctx, p.params.Symbol, p.params.HistoryPeriod)
	if err != nil {
		return p.fatal(rec, StageFetchData, err)
	}
	p.log.Info().
		Str("event", "market_data_loaded").
		Str("symbol", p.params.Symbol).
		Int("bars", series.Len()).
		Msg("price history fetched")

	// COMPUTE_SIGNAL
	engine, err := strategy.NewCrossover(p.params.ShortWindow, p.params.LongWindow)
	if err != nil {
		return p.fatal(rec, StageComputeSignal, err)
	}
	sig, err := engine.Compute(series)
	if err != nil {
		return p.fatal(rec, StageComputeSignal, err)
	}
	rec.Action = string(sig.Action)
	rec.ShortSMA = sig.ShortSMA
	rec.LongSMA = sig.LongSMA
	rec.Confidence = sig.Confidence
	rec.SignalTime = sig.Time
	metrics.SignalsTotal.WithLabelValues(sig.Symbol, string(sig.Action)).Inc()
	p.log.Info().
		Str("event", "signal_generated").
		Str("symbol", sig.Symbol).
		Str("signal", string(sig.Action)).
		Float64("sma_short", sig.ShortSMA).
		Float64("sma_long", sig.LongSMA).
		Float64("confidence", sig.Confidence).
		Msg("signal computed")

	// EVALUATE_RISK
	acct, err := p.accountState(ctx)
	if err != nil {
		return p.fatal(rec, StageEvaluateRisk, err)
	}
	// The broker is authoritative for the open position; reconcile the
	// day state before gating.
	state.OpenPositionQty = acct.PositionQty

	verdict, err := risk.Evaluate(p.params.Policy, sig, acct, state)
	if err != nil {
		return p.fatal(rec, StageEvaluateRisk, err)
	}
	rec.RiskAllowed = verdict.Allowed
	rec.RiskReasons = verdict.Reasons()
	p.log.Info().
		Str("event", "risk_decision").
		Bool("approved", verdict.Allowed).
		Strs("reasons", verdict.Reasons()).
		Msg("risk gates evaluated")

	if !verdict.Signal.Action.Tradable() {
		// Native HOLD or downgraded by a gate: nothing reaches the
		// planner as BUY/SELL.
		rec.Outcome = journal.OutcomeHeld
		return p.finish(rec), nil
	}

	// PLAN_ORDER
	plan := execution.Plan(verdict.Signal, acct, series.LastClose(), p.params.Sizing)
	rec.Side = string(plan.Side)
	rec.Quantity = plan.Quantity
	rec.StopLossPct = plan.StopLossPct
	rec.PlanReason = plan.Reason

	if !plan.HasOrder() {
		rec.Outcome = journal.OutcomeSkipped
		p.log.Info().
			Str("event", "order_skipped").
			Str("symbol", plan.Symbol).
			Str("reason", plan.Reason).
			Msg("approved signal produced no order")
		return p.finish(rec), nil
	}

	// SUBMIT
	conf, err := p.broker.SubmitOrder(ctx, plan)
	if err != nil {
		// The attempted plan stays on the record; counters and
		// position are untouched since no fill occurred.
		rec.Outcome = journal.OutcomeRejected
		rec.Error = err.Error()
		metrics.StageErrorsTotal.WithLabelValues(StageSubmit).Inc()
		p.log.Error().
			Str("event", "order_rejected").
			Str("symbol", plan.Symbol).
			Str("error", err.Error()).
			Msg("broker rejected order")
		// The cycle still completed: the rejection is a journaled
		// outcome, not a stage failure.
		return p.finish(rec), nil
	}

	state.CountTrade()
	state.ApplyFill(plan.SignedQuantity())
	rec.Outcome = journal.OutcomeSubmitted
	rec.OrderID = conf.OrderID
	metrics.OrdersTotal.WithLabelValues(conf.Symbol, string(conf.Side)).Inc()
	p.log.Info().
		Str("event", "order_submitted").
		Str("symbol", conf.Symbol).
		Str("side", string(conf.Side)).
		Int("qty", conf.Quantity).
		Str("order_id", conf.OrderID).
		Msg("order accepted")

	return p.finish(rec), nil
}

// accountState reads equity and the open position as one snapshot.
func (p *Pipeline) accountState(ctx context.Context) (risk.AccountSnapshot, error) {
	acct, err := p.broker.AccountSnapshot(ctx)
	if err != nil {
		return risk.AccountSnapshot{}, err
	}
	pos, err := p.broker.Position(ctx, p.params.Symbol)
	if err != nil {
		return risk.AccountSnapshot{}, err
	}
	acct.PositionQty = pos
	return acct, nil
}

// fatal closes the cycle with an error record: LOG then DONE. The
// stage error is handed back so the host can classify it.
func (p *Pipeline) fatal(rec journal.DecisionRecord, stage string, err error) (journal.DecisionRecord, error) {
	rec.Outcome = journal.OutcomeError
	rec.Error = err.Error()
	metrics.StageErrorsTotal.WithLabelValues(stage).Inc()
	p.log.Error().
		Str("event", "cycle_error").
		Str("stage", stage).
		Str("error", err.Error()).
		Msg("cycle terminated")
	return p.finish(rec), err
}

// finish journals the record. Exactly one record per cycle passes
// through here, on every path.
func (p *Pipeline) finish(rec journal.DecisionRecord) journal.DecisionRecord {
	rec.EndedAt = p.now()
	metrics.CyclesTotal.WithLabelValues(rec.Symbol, string(rec.Outcome)).Inc()

	if p.journal != nil {
		if err := p.journal.RecordDecision(rec); err != nil {
			// The decision already happened; a journal failure must
			// not crash the cycle.
			p.log.Error().
				Str("event", "journal_error").
				Str("error", err.Error()).
				Msg("failed to journal decision")
		}
	}

	p.log.Info().
		Str("event", "cycle_complete").
		Str("decision_id", rec.ID).
		Str("outcome", string(rec.Outcome)).
		Msg("cycle done")
	return rec
}

// IsExpectedError reports whether an error belongs to the known
// taxonomy the host process should treat as a completed (if failed)
// cycle rather than a crash.
func IsExpectedError(err error) bool {
	return errors.Is(err, strategy.ErrInsufficientData) ||
		errors.Is(err, risk.ErrAccountState) ||
		errors.Is(err, data.ErrDataUnavailable) ||
		errors.Is(err, broker.ErrBroker)
}
