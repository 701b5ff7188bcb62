package walfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot persists an account_id -> balance map atomically via
// temp-file-plus-rename, the other crash-safe discipline spec §4.1 names
// alongside the append-only ledger. The wallet engine saves it once, at the
// end of Recover; it is not rewritten after each commit, and Recover does
// not read it: the ledger is always the source of truth (see wallet.Recover).
type Snapshot struct {
	path string
}

func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

// Load reads the snapshot file, returning an empty map if it doesn't exist
// yet (first run) or is empty; otherwise it returns the last saved balances.
func (s *Snapshot) Load() (map[string]float64, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]float64), nil
	}
	if err != nil {
		return nil, fmt.Errorf("walfile: read snapshot: %w", err)
	}

	balances := make(map[string]float64)
	if len(data) == 0 {
		return balances, nil
	}
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, fmt.Errorf("walfile: snapshot corrupted: %w", err)
	}
	return balances, nil
}

// Save writes balances atomically: a temp file in the same directory is
// written and fsynced, then renamed over the snapshot path. A crash at any
// point leaves either the old snapshot or the new one, never a partial file.
func (s *Snapshot) Save(balances map[string]float64) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("walfile: create snapshot dir: %w", err)
	}

	data, err := json.Marshal(balances)
	if err != nil {
		return fmt.Errorf("walfile: marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("walfile: create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("walfile: write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("walfile: fsync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("walfile: close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("walfile: rename snapshot: %w", err)
	}
	return nil
}
