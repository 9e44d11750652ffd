package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ldes-tools/harvester/internal/harvester"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewFileStore(t.TempDir(), zaptest.NewLogger(t))

	st, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte("{not json"), 0o600))

	store := NewFileStore(dir, zaptest.NewLogger(t))
	st, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, zaptest.NewLogger(t))

	in := &harvester.State{
		RunID:            "run-1",
		ProcessedPages:   []string{"https://x/1", "https://x/2"},
		ProcessedMembers: []string{"m1", "m2", "m3"},
		PendingPages:     []string{"https://x/4", "https://x/3"},
		Stats: harvester.Stats{
			StartTime:        "2026-03-01T12:00:00Z",
			MembersHarvested: 3,
			PagesProcessed:   2,
			Errors:           1,
			TotalDuration:    12.5,
		},
		LastUpdated: "2026-03-01T12:05:00Z",
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in, out)
	// Pending order is part of the contract, not just set membership.
	assert.Equal(t, []string{"https://x/4", "https://x/3"}, out.PendingPages)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, zaptest.NewLogger(t))

	require.NoError(t, store.Save(&harvester.State{RunID: "first"}))
	require.NoError(t, store.Save(&harvester.State{RunID: "second"}))

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", out.RunID)

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveFailsOnMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope", "deeper"), zaptest.NewLogger(t))

	err := store.Save(&harvester.State{})
	require.Error(t, err)

	var perr *harvester.StatePersistError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, store.Path(), perr.Path)
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, nil)
	assert.Equal(t, filepath.Join(dir, "state.json"), store.Path())
}
