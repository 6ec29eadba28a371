package artifacts

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/fingerprint"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 5, 1, hour, min, 0, 0, time.Local)
}

func snapshotAt(folder string, t time.Time) *models.Snapshot {
	snap := models.NewSnapshot(folder, t)
	snap.Entries[folder+"/a.txt"] = models.EmbeddingEntry([]float64{0.25, 1.0 / 3})
	snap.Entries[folder+"/b.bin"] = models.HashEntry("deadbeef")
	return snap
}

func TestSaveLoadSnapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/reports", nil)

	snap := snapshotAt("/data", at(9, 30))
	path, err := store.SaveSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, "/reports/snapshots/data_2024-05-01_09-30-00.txt", path)
	assert.Equal(t, "data_2024-05-01_09-30-00.txt", snap.Name)

	loaded, err := store.LoadSnapshot(snap.Name)
	require.NoError(t, err)
	assert.Equal(t, snap.Entries, loaded.Entries)
	assert.True(t, loaded.TakenAt.Equal(snap.TakenAt))

	// no temp files left behind
	infos, err := afero.ReadDir(fs, "/reports/snapshots")
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestLoadSnapshot_Missing(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "/reports", nil)
	_, err := store.LoadSnapshot("data_2024-05-01_09-30-00.txt")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFindPrevious(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/reports", nil)

	for _, s := range []*models.Snapshot{
		snapshotAt("/data", at(8, 0)),
		snapshotAt("/data", at(9, 0)),
		snapshotAt("/data", at(11, 0)),
		snapshotAt("/data/sub", at(9, 30)),
		snapshotAt("/other", at(9, 45)),
	} {
		_, err := store.SaveSnapshot(s)
		require.NoError(t, err)
	}
	afero.WriteFile(fs, "/reports/snapshots/notes.md", []byte("x"), 0644)

	current := fingerprint.SnapshotFilename("/data", at(10, 0))

	prev, err := store.FindPrevious(current)
	require.NoError(t, err)
	assert.Equal(t, "data_2024-05-01_09-00-00.txt", prev)

	prev, err = store.FindPrevious("data_2024-05-01_08-00-00.txt")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, prev)
}

func TestFindPrevious_NoDirectory(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "/reports", nil)
	_, err := store.FindPrevious("data_2024-05-01_08-00-00.txt")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestSaveSnapshot_SameSecond(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/reports", nil)

	first := snapshotAt("/data", at(9, 30))
	_, err := store.SaveSnapshot(first)
	require.NoError(t, err)

	second := snapshotAt("/data", at(9, 30))
	second.Entries["/data/c.txt"] = models.HashEntry("cafe")
	path, err := store.SaveSnapshot(second)
	require.NoError(t, err)

	assert.Equal(t, "data_2024-05-01_09-30-00.txt", first.Name)
	assert.Equal(t, "data_2024-05-01_09-30-01.txt", second.Name)
	assert.Equal(t, "/reports/snapshots/data_2024-05-01_09-30-01.txt", path)
	assert.True(t, second.TakenAt.Equal(at(9, 30).Add(time.Second)))

	prev, err := store.FindPrevious(second.Name)
	require.NoError(t, err)
	assert.Equal(t, first.Name, prev)

	loaded, err := store.LoadSnapshot(first.Name)
	require.NoError(t, err)
	assert.Len(t, loaded.Entries, 2, "the first snapshot must not be overwritten")
}

func TestLoadPrevious(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/reports", nil)

	_, err := store.LoadPrevious(snapshotAt("/data", at(9, 0)))
	assert.ErrorIs(t, err, models.ErrNotFound)

	older := snapshotAt("/data", at(9, 0))
	_, err = store.SaveSnapshot(older)
	require.NoError(t, err)
	current := snapshotAt("/data", at(10, 0))
	_, err = store.SaveSnapshot(current)
	require.NoError(t, err)

	previous, err := store.LoadPrevious(current)
	require.NoError(t, err)
	assert.Equal(t, "/data", previous.Folder)
	assert.Equal(t, older.Name, previous.Name)
	assert.Equal(t, older.Entries, previous.Entries)
}

func TestSaveDiffAndScanReport(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/reports", nil)

	path, err := store.SaveDiff("data_2024-05-01_10-00-00.txt", "data_2024-05-01_09-00-00.txt", []byte("/data/a.txt ==> NEW\n"))
	require.NoError(t, err)
	assert.Equal(t, "/reports/diffs/diff_data_2024-05-01_10-00-00_vs_data_2024-05-01_09-00-00.txt", path)

	path, err = store.SaveScanReport([]byte("[]"), "json", at(12, 15))
	require.NoError(t, err)
	assert.Equal(t, "/reports/scan/duplicates_2024-05-01_12-15-00.json", path)

	data, _ := afero.ReadFile(fs, path)
	assert.Equal(t, "[]", string(data))
}

func TestState(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/reports", nil)

	_, err := store.LoadState()
	assert.ErrorIs(t, err, models.ErrNotFound)

	pairs := []*models.DuplicatePair{{File1: "/data/a", File2: "/data/b", MatchType: models.MatchExact}}
	state := models.NewTrackerState(snapshotAt("/data", at(9, 0)), pairs)
	require.NoError(t, store.SaveState(state))

	loaded, err := store.LoadState()
	require.NoError(t, err)
	assert.Equal(t, state.BaselineSnapshot, loaded.BaselineSnapshot)
	assert.Equal(t, pairs, loaded.BaselineDuplicates)
	assert.Equal(t, "/data", loaded.Folder)

	// overwrite in place
	state.BaselineDuplicates = nil
	require.NoError(t, store.SaveState(state))
	loaded, err = store.LoadState()
	require.NoError(t, err)
	assert.Empty(t, loaded.BaselineDuplicates)
}

func TestLoadState_Corrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/reports/tracker_state.json", []byte("{not json"), 0644)

	_, err := NewStore(fs, "/reports", nil).LoadState()
	assert.ErrorIs(t, err, models.ErrCorruptSnapshot)
}

func TestAppendAlert(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/reports", nil)

	require.NoError(t, store.AppendAlert("first\n"))
	require.NoError(t, store.AppendAlert("second\n"))

	data, err := afero.ReadFile(fs, "/reports/tracker_alerts.txt")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}
