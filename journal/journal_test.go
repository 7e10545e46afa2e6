package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() DecisionRecord {
	return DecisionRecord{
		ID:          "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Symbol:      "SPY",
		StartedAt:   time.Date(2025, time.March, 4, 21, 0, 0, 0, time.UTC),
		EndedAt:     time.Date(2025, time.March, 4, 21, 0, 2, 0, time.UTC),
		Action:      "BUY",
		ShortSMA:    101.5,
		LongSMA:     100.9,
		Confidence:  0.56,
		SignalTime:  time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC),
		RiskAllowed: true,
		Side:        "BUY",
		Quantity:    20,
		StopLossPct: 0.02,
		PlanReason:  "BUY crossover, confidence 0.56",
		Outcome:     OutcomeSubmitted,
		OrderID:     "ord-1",
	}
}

func TestSQLiteJournalRoundTrip(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "decisions.db"))
	require.NoError(t, err)
	defer j.Close()

	rec := sampleRecord()
	require.NoError(t, j.RecordDecision(rec))

	rejected := rec
	rejected.ID = "01ARZ3NDEKTSV4RRFFQ69G5FB0"
	rejected.RiskAllowed = false
	rejected.RiskReasons = []string{"trades today 2 >= max 2"}
	rejected.Outcome = OutcomeHeld
	rejected.OrderID = ""
	require.NoError(t, j.RecordDecision(rejected))

	got, err := j.Decisions("SPY")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, rec.ID, got[0].ID, "ULID keys keep cycle order")
	assert.Equal(t, OutcomeSubmitted, got[0].Outcome)
	assert.Equal(t, 20, got[0].Quantity)
	assert.False(t, got[1].RiskAllowed)
	assert.Equal(t, []string{"trades today 2 >= max 2"}, got[1].RiskReasons)
}

func TestSQLiteJournalDuplicateID(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "decisions.db"))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordDecision(sampleRecord()))
	assert.Error(t, j.RecordDecision(sampleRecord()), "write-once: same id rejected")
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "decisions.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	require.NoError(t, j.RecordDecision(sampleRecord()))
	require.NoError(t, j.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header + one record")
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "SPY", rows[1][1])
	assert.Equal(t, "SUBMITTED", rows[1][15])
}

func TestCSVJournalKeepsRecordsAcrossReopens(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "decisions.csv")

	first := sampleRecord()
	j, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordDecision(first))
	require.NoError(t, j.Close())

	// A scheduler invokes one cycle per process, so the same path is
	// reopened on the next run.
	second := sampleRecord()
	second.ID = "01ARZ3NDEKTSV4RRFFQ69G5FB0"
	second.Outcome = OutcomeHeld
	j, err = NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordDecision(second))
	require.NoError(t, j.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "one header + both cycles")
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, first.ID, rows[1][0])
	assert.Equal(t, second.ID, rows[2][0])
	assert.Equal(t, "HELD", rows[2][15])
}
