// Package journal persists the decision record each cycle emits.
package journal

import "time"

// Outcome classifies how a cycle ended.
type Outcome string

const (
	// OutcomeSubmitted means an order was accepted by the broker.
	OutcomeSubmitted Outcome = "SUBMITTED"
	// OutcomeSkipped means the signal was approved but sized to no
	// order (zero quantity or nothing held to sell).
	OutcomeSkipped Outcome = "SKIPPED"
	// OutcomeHeld means the signal was HOLD, natively or downgraded by
	// a risk gate.
	OutcomeHeld Outcome = "HELD"
	// OutcomeRejected means the broker refused the submission.
	OutcomeRejected Outcome = "REJECTED"
	// OutcomeError means a stage failed fatally before submission.
	OutcomeError Outcome = "ERROR"
)

// DecisionRecord is the write-once structured output of one cycle:
// the signal, the risk verdict, the order plan, and the outcome.
type DecisionRecord struct {
	ID        string
	Symbol    string
	StartedAt time.Time
	EndedAt   time.Time

	Action     string
	ShortSMA   float64
	LongSMA    float64
	Confidence float64
	SignalTime time.Time

	RiskAllowed bool
	RiskReasons []string

	Side        string
	Quantity    int
	StopLossPct float64
	PlanReason  string

	Outcome Outcome
	OrderID string
	Error   string
}

// Journal is a sink for decision records.
type Journal interface {
	RecordDecision(DecisionRecord) error
	Close() error
}
