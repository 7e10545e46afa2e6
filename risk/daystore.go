package risk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// daySnapshot is the on-disk form of State. Persisting it lets repeated
// invocations on the same trading day share the counters the gates
// depend on; a snapshot from an earlier day is discarded.
type daySnapshot struct {
	DayOpen         string  `json:"day_open"`
	TradesToday     int     `json:"trades_today"`
	RealizedPnL     float64 `json:"realized_pnl"`
	OpenPositionQty int     `json:"open_position_qty"`
}

// DayStore loads and saves the day-scoped risk state as a JSON file.
type DayStore struct {
	Path string
}

// NewDayStore returns a store backed by the given file path.
func NewDayStore(path string) *DayStore { return &DayStore{Path: path} }

// Load returns today's state. A missing, unreadable, or stale (previous
// trading day) snapshot yields a fresh state anchored at today's open.
func (d *DayStore) Load(now time.Time) *State {
	fresh := &State{DayOpen: dayOpen(now)}

	b, err := os.ReadFile(d.Path)
	if err != nil {
		return fresh
	}
	var snap daySnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fresh
	}
	open, err := time.Parse(time.RFC3339, snap.DayOpen)
	if err != nil {
		return fresh
	}

	st := &State{
		TradesToday:     snap.TradesToday,
		RealizedPnL:     snap.RealizedPnL,
		OpenPositionQty: snap.OpenPositionQty,
		DayOpen:         open,
	}
	if !st.SameTradingDay(now) {
		// New trading day: daily counters reset, position carries.
		st.ResetDay(dayOpen(now))
	}
	return st
}

// Save persists the state atomically (tmp file + fsync + rename) so a
// crash mid-write never leaves a torn snapshot.
func (d *DayStore) Save(st *State) error {
	snap := daySnapshot{
		DayOpen:         st.DayOpen.UTC().Format(time.RFC3339),
		TradesToday:     st.TradesToday,
		RealizedPnL:     st.RealizedPnL,
		OpenPositionQty: st.OpenPositionQty,
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(d.Path, b, 0o600)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
