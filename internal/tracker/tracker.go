package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/artifacts"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/differ"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// Snapshotter fingerprints a folder
type Snapshotter interface {
	TakeSnapshot(ctx context.Context, folder string) (*models.Snapshot, error)
}

// DuplicateFinder scans a folder for duplicate pairs
type DuplicateFinder interface {
	Scan(ctx context.Context, folder string, threshold float64) (*models.ScanResults, error)
}

// Options configures a tracker
type Options struct {
	Folder        string
	Interval      time.Duration
	ScanThreshold float64
}

// CycleResult describes one completed polling cycle
type CycleResult struct {
	ID       string
	Started  time.Time
	Changes  []models.DiffEntry
	NewPairs []*models.DuplicatePair
	Alerted  bool
}

// Tracker watches one folder and alerts on content changes and new duplicates
type Tracker struct {
	opts      Options
	snapshots Snapshotter
	scanner   DuplicateFinder
	differ    *differ.Differ
	store     *artifacts.Store
	logger    *zap.Logger
	status    *Status
	now       func() time.Time
}

// New creates a tracker. The baseline lives in store.
func New(opts Options, snapshots Snapshotter, scanner DuplicateFinder, d *differ.Differ, store *artifacts.Store, logger *zap.Logger) (*Tracker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("%w: tracker interval must be positive", models.ErrUsage)
	}
	folder, err := filepath.Abs(opts.Folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder: %w", err)
	}
	opts.Folder = folder

	return &Tracker{
		opts:      opts,
		snapshots: snapshots,
		scanner:   scanner,
		differ:    d,
		store:     store,
		logger:    logger.With(zap.String("folder", folder)),
		status:    newStatus(folder),
		now:       time.Now,
	}, nil
}

// Status returns the live status of the tracker
func (t *Tracker) Status() *Status {
	return t.status
}

// Initialize loads the persisted baseline, or builds and persists a new one
// from an initial snapshot and duplicate scan
func (t *Tracker) Initialize(ctx context.Context) (*models.TrackerState, error) {
	state, err := t.store.LoadState()
	switch {
	case err == nil && state.Folder == t.opts.Folder:
		t.logger.Info("Loaded tracker baseline",
			zap.Time("taken_at", state.TakenAt),
			zap.Int("entries", len(state.BaselineSnapshot)),
			zap.Int("duplicates", len(state.BaselineDuplicates)))
		t.status.setMonitoring()
		return state, nil
	case err == nil:
		t.logger.Warn("Baseline belongs to another folder, rebuilding", zap.String("baseline_folder", state.Folder))
	case errors.Is(err, models.ErrCorruptSnapshot):
		t.logger.Warn("Baseline is unreadable, rebuilding", zap.Error(err))
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	t.logger.Info("No baseline found, creating one")
	snap, err := t.snapshots.TakeSnapshot(ctx, t.opts.Folder)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot failed: %w", err)
	}
	results, err := t.scanner.Scan(ctx, t.opts.Folder, t.opts.ScanThreshold)
	if err != nil {
		return nil, fmt.Errorf("initial duplicate scan failed: %w", err)
	}

	state = models.NewTrackerState(snap, results.Pairs)
	if err := t.store.SaveState(state); err != nil {
		return nil, err
	}
	t.logger.Info("Initial baseline established",
		zap.Int("entries", snap.Len()),
		zap.Int("duplicates", len(results.Pairs)))
	t.status.setMonitoring()
	return state, nil
}

// Cycle compares a fresh snapshot with the baseline. When something changed it
// rescans duplicates, appends an alert and returns the replacement baseline.
// Otherwise the baseline is returned untouched.
func (t *Tracker) Cycle(ctx context.Context, state *models.TrackerState) (*models.TrackerState, *CycleResult, error) {
	result := &CycleResult{ID: uuid.NewString(), Started: t.now()}
	logger := t.logger.With(zap.String("cycle", result.ID))

	snap, err := t.snapshots.TakeSnapshot(ctx, t.opts.Folder)
	if err != nil {
		return state, result, fmt.Errorf("snapshot failed: %w", err)
	}

	result.Changes = differ.Changes(t.differ.Diff(state.Snapshot(), snap))
	if len(result.Changes) == 0 {
		logger.Info("No snapshot changes")
		return state, result, nil
	}

	logger.Info("Snapshot changed, rescanning duplicates", zap.Int("changes", len(result.Changes)))
	results, err := t.scanner.Scan(ctx, t.opts.Folder, t.opts.ScanThreshold)
	if err != nil {
		return state, result, fmt.Errorf("duplicate scan failed: %w", err)
	}
	result.NewPairs = NewPairs(state, results.Pairs)

	if err := t.store.AppendAlert(AlertBlock(result.Started, result.Changes, result.NewPairs)); err != nil {
		return state, result, err
	}
	result.Alerted = true
	logger.Warn("Alert logged",
		zap.Int("changes", len(result.Changes)),
		zap.Int("new_duplicates", len(result.NewPairs)))

	next := models.NewTrackerState(snap, results.Pairs)
	if err := t.store.SaveState(next); err != nil {
		return state, result, err
	}
	return next, result, nil
}

// Run initializes the baseline and polls until ctx is cancelled. Cancellation
// is observed between cycles only; a started cycle always completes.
func (t *Tracker) Run(ctx context.Context) error {
	work := context.WithoutCancel(ctx)

	state, err := t.Initialize(work)
	if err != nil {
		return err
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Tracker stopped", zap.Int("cycles", t.status.Cycles()))
			return nil
		case <-timer.C:
		}
		if ctx.Err() != nil {
			continue
		}

		state = t.safeCycle(work, state)
		timer.Reset(t.opts.Interval)
	}
}

// safeCycle runs one cycle and keeps the previous baseline on any failure
func (t *Tracker) safeCycle(ctx context.Context, state *models.TrackerState) (next *models.TrackerState) {
	next = state
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Tracker cycle panicked", zap.Any("panic", r))
			t.status.recordFailure(t.now(), fmt.Errorf("panic: %v", r))
			next = state
		}
	}()

	updated, result, err := t.Cycle(ctx, state)
	if err != nil {
		t.logger.Error("Tracker cycle failed", zap.String("cycle", result.ID), zap.Error(err))
		t.status.recordFailure(t.now(), err)
		return state
	}
	t.status.record(result)
	return updated
}
