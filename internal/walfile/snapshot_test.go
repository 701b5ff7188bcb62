package walfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-api/internal/walfile"
)

func TestSnapshotLoadMissingFileReturnsEmptyMap(t *testing.T) {
	snap := walfile.NewSnapshot(filepath.Join(t.TempDir(), "missing.json"))

	balances, err := snap.Load()
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestSnapshotSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	snap := walfile.NewSnapshot(path)

	want := map[string]float64{"acc-1": 150.5, "acc-2": 0}
	require.NoError(t, snap.Save(want))

	got, err := snap.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshotSaveLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	snap := walfile.NewSnapshot(filepath.Join(dir, "snapshot.json"))

	require.NoError(t, snap.Save(map[string]float64{"acc-1": 10}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the renamed snapshot file should remain, no .tmp- leftovers")
	assert.Equal(t, "snapshot.json", entries[0].Name())
}

func TestSnapshotSaveOverwritesPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	snap := walfile.NewSnapshot(path)

	require.NoError(t, snap.Save(map[string]float64{"acc-1": 10}))
	require.NoError(t, snap.Save(map[string]float64{"acc-1": 20, "acc-2": 5}))

	got, err := snap.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"acc-1": 20, "acc-2": 5}, got)
}
