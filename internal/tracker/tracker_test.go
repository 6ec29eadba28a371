package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/artifacts"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/core"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/differ"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/fingerprint"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

type fakeSnapshotter struct {
	snaps []*models.Snapshot
	calls int
	err   error
	hook  func(call int)
}

func (f *fakeSnapshotter) TakeSnapshot(ctx context.Context, folder string) (*models.Snapshot, error) {
	f.calls++
	if f.hook != nil {
		f.hook(f.calls)
	}
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.snaps) {
		i = len(f.snaps) - 1
	}
	return f.snaps[i], nil
}

type fakeScanner struct {
	pairs [][]*models.DuplicatePair
	calls int
}

func (f *fakeScanner) Scan(ctx context.Context, folder string, threshold float64) (*models.ScanResults, error) {
	f.calls++
	i := f.calls - 1
	if i >= len(f.pairs) {
		i = len(f.pairs) - 1
	}
	return &models.ScanResults{ScanPath: folder, Pairs: f.pairs[i], Stats: &models.ScanStatistics{}}, nil
}

type panickingSnapshotter struct{}

func (panickingSnapshotter) TakeSnapshot(ctx context.Context, folder string) (*models.Snapshot, error) {
	panic("disk vanished")
}

func snap(entries map[string]string) *models.Snapshot {
	s := models.NewSnapshot("/watch", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	for path, digest := range entries {
		s.Entries[path] = models.HashEntry(digest)
	}
	return s
}

func exact(a, b string) *models.DuplicatePair {
	return &models.DuplicatePair{File1: a, File2: b, MatchType: models.MatchExact}
}

func newTestTracker(t *testing.T, snapshots Snapshotter, scanner DuplicateFinder) (*Tracker, *artifacts.Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := artifacts.NewStore(fs, "/reports", nil)
	tr, err := New(Options{Folder: "/watch", Interval: time.Hour, ScanThreshold: 0.4},
		snapshots, scanner, differ.NewDiffer(0.999999, nil), store, nil)
	require.NoError(t, err)
	tr.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local) }
	return tr, store, fs
}

func TestNew_RejectsZeroInterval(t *testing.T) {
	_, err := New(Options{Folder: "/watch"}, &fakeSnapshotter{}, &fakeScanner{}, differ.NewDiffer(1, nil),
		artifacts.NewStore(afero.NewMemMapFs(), "/reports", nil), nil)
	assert.ErrorIs(t, err, models.ErrUsage)
}

func TestInitialize_CreatesBaseline(t *testing.T) {
	snapshots := &fakeSnapshotter{snaps: []*models.Snapshot{snap(map[string]string{"/watch/a.txt": "aa", "/watch/b.txt": "aa"})}}
	scanner := &fakeScanner{pairs: [][]*models.DuplicatePair{{exact("/watch/a.txt", "/watch/b.txt")}}}
	tr, store, _ := newTestTracker(t, snapshots, scanner)

	assert.Equal(t, StateUninitialized, tr.Status().Snapshot().State)

	state, err := tr.Initialize(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.BaselineSnapshot, 2)
	assert.Len(t, state.BaselineDuplicates, 1)
	assert.Equal(t, StateMonitoring, tr.Status().Snapshot().State)

	saved, err := store.LoadState()
	require.NoError(t, err)
	assert.Equal(t, "/watch", saved.Folder)
	assert.Len(t, saved.BaselineSnapshot, 2)
}

func TestInitialize_LoadsExistingBaseline(t *testing.T) {
	snapshots := &fakeSnapshotter{snaps: []*models.Snapshot{snap(map[string]string{"/watch/a.txt": "aa"})}}
	scanner := &fakeScanner{pairs: [][]*models.DuplicatePair{nil}}
	tr, store, _ := newTestTracker(t, snapshots, scanner)

	require.NoError(t, store.SaveState(models.NewTrackerState(snap(map[string]string{"/watch/z.txt": "zz"}), nil)))

	state, err := tr.Initialize(context.Background())
	require.NoError(t, err)
	assert.Contains(t, state.BaselineSnapshot, "/watch/z.txt")
	assert.Equal(t, 0, snapshots.calls)
	assert.Equal(t, 0, scanner.calls)
}

func TestCycle_NoChanges(t *testing.T) {
	files := map[string]string{"/watch/a.txt": "aa", "/watch/b.txt": "bb"}
	snapshots := &fakeSnapshotter{snaps: []*models.Snapshot{snap(files)}}
	scanner := &fakeScanner{pairs: [][]*models.DuplicatePair{nil}}
	tr, store, fs := newTestTracker(t, snapshots, scanner)

	state, err := tr.Initialize(context.Background())
	require.NoError(t, err)
	before, err := afero.ReadFile(fs, store.Path(artifacts.StateFile))
	require.NoError(t, err)

	next, result, err := tr.Cycle(context.Background(), state)
	require.NoError(t, err)

	assert.Same(t, state, next, "baseline must not be replaced")
	assert.Empty(t, result.Changes)
	assert.False(t, result.Alerted)
	assert.Equal(t, 1, scanner.calls, "no rescan without changes")

	exists, _ := afero.Exists(fs, store.Path(artifacts.AlertLogFile))
	assert.False(t, exists, "no alert without changes")

	after, err := afero.ReadFile(fs, store.Path(artifacts.StateFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCycle_ChangesAndNewDuplicates(t *testing.T) {
	snapshots := &fakeSnapshotter{snaps: []*models.Snapshot{
		snap(map[string]string{"/watch/a.txt": "aa", "/watch/b.txt": "aa"}),
		snap(map[string]string{"/watch/a.txt": "aa", "/watch/b.txt": "aa", "/watch/c.txt": "aa"}),
	}}
	scanner := &fakeScanner{pairs: [][]*models.DuplicatePair{
		{exact("/watch/a.txt", "/watch/b.txt")},
		{exact("/watch/a.txt", "/watch/b.txt"), exact("/watch/a.txt", "/watch/c.txt"), exact("/watch/b.txt", "/watch/c.txt")},
	}}
	tr, store, fs := newTestTracker(t, snapshots, scanner)

	state, err := tr.Initialize(context.Background())
	require.NoError(t, err)

	next, result, err := tr.Cycle(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, result.Changes, 1)
	assert.Equal(t, "/watch/c.txt", result.Changes[0].Path)
	assert.Equal(t, models.ClassNew, result.Changes[0].Classification)
	assert.Len(t, result.NewPairs, 2, "the known a/b pair is not re-alerted")
	assert.True(t, result.Alerted)
	assert.NotEmpty(t, result.ID)

	assert.Len(t, next.BaselineSnapshot, 3)
	assert.Len(t, next.BaselineDuplicates, 3)

	saved, err := store.LoadState()
	require.NoError(t, err)
	assert.Len(t, saved.BaselineDuplicates, 3)

	log, err := afero.ReadFile(fs, store.Path(artifacts.AlertLogFile))
	require.NoError(t, err)
	text := string(log)
	assert.Contains(t, text, "\n=== ALERT [2024-05-01 10:30:00] ===\n")
	assert.Contains(t, text, "/watch/c.txt ==> NEW\n")
	assert.Contains(t, text, "EXACT_DUPLICATE:\n → /watch/a.txt\n → /watch/c.txt\n")
	assert.NotContains(t, text, " → /watch/a.txt\n → /watch/b.txt\n")

	// a second identical cycle is quiet
	again, result, err := tr.Cycle(context.Background(), next)
	require.NoError(t, err)
	assert.Same(t, next, again)
	assert.False(t, result.Alerted)
}

func TestCycle_SnapshotFailureKeepsBaseline(t *testing.T) {
	snapshots := &fakeSnapshotter{snaps: []*models.Snapshot{snap(map[string]string{"/watch/a.txt": "aa"})}}
	tr, _, _ := newTestTracker(t, snapshots, &fakeScanner{pairs: [][]*models.DuplicatePair{nil}})

	state, err := tr.Initialize(context.Background())
	require.NoError(t, err)

	snapshots.err = errors.New("permission denied")
	next := tr.safeCycle(context.Background(), state)

	assert.Same(t, state, next)
	report := tr.Status().Snapshot()
	assert.Equal(t, 1, report.Failures)
	assert.Contains(t, report.LastError, "permission denied")
}

func TestSafeCycle_RecoversPanic(t *testing.T) {
	tr, _, _ := newTestTracker(t, panickingSnapshotter{}, &fakeScanner{pairs: [][]*models.DuplicatePair{nil}})
	state := models.NewTrackerState(snap(nil), nil)

	next := tr.safeCycle(context.Background(), state)

	assert.Same(t, state, next)
	assert.Equal(t, 1, tr.Status().Snapshot().Failures)
	assert.Contains(t, tr.Status().Snapshot().LastError, "disk vanished")
}

func TestRun_StopsBetweenCycles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := &fakeSnapshotter{
		snaps: []*models.Snapshot{snap(map[string]string{"/watch/a.txt": "aa"})},
		// cancel while the first cycle is still running
		hook: func(call int) {
			if call == 2 {
				cancel()
			}
		},
	}
	tr, _, _ := newTestTracker(t, snapshots, &fakeScanner{pairs: [][]*models.DuplicatePair{nil}})

	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancellation")
	}

	report := tr.Status().Snapshot()
	assert.Equal(t, 1, report.Cycles, "the running cycle completes")
	assert.Equal(t, 0, report.Failures)
	assert.Equal(t, 2, snapshots.calls)
}

func TestAlertBlock(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	changes := []models.DiffEntry{
		{Path: "/w/a.txt", Classification: models.ClassModified, Similarity: 0.5, HasSimilarity: true},
		{Path: "/w/b.txt", Classification: models.ClassNew},
	}
	pairs := []*models.DuplicatePair{
		{File1: "/w/a.txt", File2: "/w/c.txt", MatchType: models.MatchNear, Score: 0.971},
	}

	want := "\n=== ALERT [2024-01-02 03:04:05] ===\n" +
		"[Snapshot Changes Detected]:\n" +
		"/w/a.txt ==> MODIFIED (Similarity: 0.500000)\n" +
		"/w/b.txt ==> NEW\n" +
		"[New Duplicate Files Detected]:\n" +
		"NEAR_DUPLICATE (sim=0.97):\n → /w/a.txt\n → /w/c.txt\n"

	assert.Equal(t, want, AlertBlock(at, changes, pairs))

	onlyChanges := AlertBlock(at, changes, nil)
	assert.NotContains(t, onlyChanges, "[New Duplicate Files Detected]")
}

func TestNewPairs(t *testing.T) {
	baseline := models.NewTrackerState(snap(nil), []*models.DuplicatePair{exact("/w/a", "/w/b")})
	pairs := []*models.DuplicatePair{
		exact("/w/b", "/w/a"),
		exact("/w/a", "/w/x"),
		exact("/w/x", "/w/y"),
	}

	fresh := NewPairs(baseline, pairs)
	require.Len(t, fresh, 2)
	assert.Equal(t, "/w/x", fresh[0].File2)
	assert.Equal(t, "/w/y", fresh[1].File2)
}

func TestStatusServer(t *testing.T) {
	status := newStatus("/watch")
	status.setMonitoring()
	status.record(&CycleResult{ID: "cycle-1", Started: time.Now(), Changes: make([]models.DiffEntry, 2)})

	srv := httptest.NewServer(NewStatusServer(status, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var report StatusReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, StateMonitoring, report.State)
	assert.Equal(t, "/watch", report.Folder)
	assert.Equal(t, 1, report.Cycles)
	assert.Equal(t, "cycle-1", report.LastCycleID)
	assert.Equal(t, 2, report.LastChanges)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	missing, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCycle_ReportsInsideWatchedFolder(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := []byte("Quarterly ledger for the Harbor Street account, reviewed in March.")
	require.NoError(t, afero.WriteFile(fs, "/case/ledger.txt", content, 0644))
	require.NoError(t, afero.WriteFile(fs, "/case/ledger_copy.txt", content, 0644))

	cfg := config.Default()
	cfg.ReportsDir = "/case/reports"
	cfg.Log.CommandLog = ""
	cfg.Workers = 1

	registry := embedding.NewRegistry(
		embedding.NewGridProvider(fs),
		embedding.NewHistogramProvider(fs),
		embedding.NewTextProvider(fs, 512, true),
		embedding.NewCodeProvider(fs, 256),
	)
	snapshots := fingerprint.NewStore(fs, registry, fingerprint.Options{Skip: cfg.ArtifactPaths()}, nil)
	scanner := core.NewDuplicateScanner(cfg, fs, registry, nil)
	store := artifacts.NewStore(fs, cfg.ReportsDir, nil)

	tr, err := New(Options{Folder: "/case", Interval: time.Hour, ScanThreshold: 0.4},
		snapshots, scanner, differ.NewDiffer(0.999999, nil), store, nil)
	require.NoError(t, err)

	state, err := tr.Initialize(context.Background())
	require.NoError(t, err)
	require.Len(t, state.BaselineSnapshot, 2)
	require.Len(t, state.BaselineDuplicates, 1)

	for i := 0; i < 3; i++ {
		next, result, err := tr.Cycle(context.Background(), state)
		require.NoError(t, err)
		assert.Empty(t, result.Changes, "cycle %d", i+1)
		assert.False(t, result.Alerted, "cycle %d", i+1)
		assert.Same(t, state, next, "cycle %d", i+1)
	}

	exists, err := afero.Exists(fs, store.Path(artifacts.AlertLogFile))
	require.NoError(t, err)
	assert.False(t, exists)
}
