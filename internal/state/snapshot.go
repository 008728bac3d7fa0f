package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bytedance/sonic"
)

// Snapshot captures positions at a point in time.
type Snapshot struct {
	Timestamp int64      `json:"timestamp"`
	Positions []Position `json:"positions"`
}

// Snapshot builds a snapshot from current positions, sorted by symbol.
func (b *PositionBook) Snapshot() Snapshot {
	b.mu.RLock()
	entries := make([]Position, 0, len(b.positions))
	for _, p := range b.positions {
		entries = append(entries, p)
	}
	b.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Symbol < entries[j].Symbol
	})
	return Snapshot{
		Timestamp: time.Now().UTC().UnixNano(),
		Positions: entries,
	}
}

// WriteSnapshot writes a snapshot to disk as JSON.
func WriteSnapshot(path string, snapshot Snapshot) error {
	data, err := sonic.ConfigStd.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSnapshot loads a snapshot from disk.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := sonic.ConfigStd.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// CompareSnapshots checks if two snapshots hold the same positions.
func CompareSnapshots(expected, actual Snapshot) error {
	if len(expected.Positions) != len(actual.Positions) {
		return fmt.Errorf("snapshot length mismatch: expected=%d actual=%d", len(expected.Positions), len(actual.Positions))
	}
	expectedMap := make(map[string]Position, len(expected.Positions))
	for _, entry := range expected.Positions {
		expectedMap[entry.Symbol] = entry
	}
	for _, entry := range actual.Positions {
		want, ok := expectedMap[entry.Symbol]
		if !ok {
			return fmt.Errorf("snapshot missing symbol: %s", entry.Symbol)
		}
		if want.Size != entry.Size || !want.AvgPrice.Equal(entry.AvgPrice) {
			return fmt.Errorf("snapshot mismatch: symbol=%s expected=%d@%s actual=%d@%s",
				entry.Symbol, want.Size, want.AvgPrice, entry.Size, entry.AvgPrice)
		}
	}
	return nil
}
