// Package artifacts lays out the files the tool persists under the reports
// directory: snapshots, diff reports, duplicate reports, tracker state and
// the alert log.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/fingerprint"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

const (
	SnapshotsDir = "snapshots"
	DiffsDir     = "diffs"
	ScanDir      = "scan"
	StateFile    = "tracker_state.json"
	AlertLogFile = "tracker_alerts.txt"
)

// Store reads and writes artifacts below a root directory
type Store struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// NewStore creates a store rooted at root
func NewStore(fs afero.Fs, root string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{fs: fs, root: root, logger: logger}
}

// Path joins elem onto the store root
func (s *Store) Path(elem ...string) string {
	return filepath.Join(append([]string{s.root}, elem...)...)
}

// SaveSnapshot writes snap and records its file name in snap.Name. Names
// carry one-second timestamps, so a snapshot that would replace an existing
// file of the same folder moves to the next free second and snap.TakenAt
// follows it.
func (s *Store) SaveSnapshot(snap *models.Snapshot) (string, error) {
	name := fingerprint.SnapshotFilename(snap.Folder, snap.TakenAt)
	path := s.Path(SnapshotsDir, name)
	for {
		exists, err := afero.Exists(s.fs, path)
		if err != nil {
			return "", fmt.Errorf("failed to save snapshot: %w", err)
		}
		if !exists {
			break
		}
		s.logger.Debug("Snapshot name taken, advancing timestamp", zap.String("name", name))
		snap.TakenAt = snap.TakenAt.Add(time.Second)
		name = fingerprint.SnapshotFilename(snap.Folder, snap.TakenAt)
		path = s.Path(SnapshotsDir, name)
	}

	err := s.writeAtomic(path, func(w io.Writer) error {
		return fingerprint.Encode(w, snap.Entries)
	})
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}

	snap.Name = name
	s.logger.Debug("Snapshot saved", zap.String("path", path), zap.Int("entries", snap.Len()))
	return path, nil
}

// LoadSnapshot reads a snapshot by file name. Corrupt lines are skipped.
// File names keep only the sanitized folder, so Folder is left empty; use
// LoadPrevious to load a snapshot on behalf of a known folder.
func (s *Store) LoadSnapshot(name string) (*models.Snapshot, error) {
	_, takenAt, err := fingerprint.ParseSnapshotName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptSnapshot, err)
	}

	f, err := s.fs.Open(s.Path(SnapshotsDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: snapshot %s", models.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	entries, skipped, err := fingerprint.Decode(f)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn("Skipped corrupt snapshot lines", zap.String("snapshot", name), zap.Int("lines", skipped))
	}

	return &models.Snapshot{TakenAt: takenAt, Name: name, Entries: entries}, nil
}

// FindPrevious returns the newest snapshot of the same folder taken strictly
// before name. Snapshots of other folders never match, even when a folder
// prefix is a prefix of another.
func (s *Store) FindPrevious(name string) (string, error) {
	prefix, current, err := fingerprint.ParseSnapshotName(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrCorruptSnapshot, err)
	}

	infos, err := afero.ReadDir(s.fs, s.Path(SnapshotsDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("failed to list snapshots: %w", err)
	}

	var (
		best     string
		bestTime time.Time
	)
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		candPrefix, ts, err := fingerprint.ParseSnapshotName(info.Name())
		if err != nil || candPrefix != prefix {
			continue
		}
		if ts.Before(current) && (best == "" || ts.After(bestTime)) {
			best, bestTime = info.Name(), ts
		}
	}

	if best == "" {
		return "", models.ErrNotFound
	}
	return best, nil
}

// LoadPrevious loads the newest earlier snapshot of current's folder. The
// result's Folder is current.Folder.
func (s *Store) LoadPrevious(current *models.Snapshot) (*models.Snapshot, error) {
	name := current.Name
	if name == "" {
		name = fingerprint.SnapshotFilename(current.Folder, current.TakenAt)
	}
	prevName, err := s.FindPrevious(name)
	if err != nil {
		return nil, err
	}
	previous, err := s.LoadSnapshot(prevName)
	if err != nil {
		return nil, err
	}
	previous.Folder = current.Folder
	return previous, nil
}

// SaveDiff writes a diff report comparing two snapshots by file name
func (s *Store) SaveDiff(current, previous string, report []byte) (string, error) {
	name := fmt.Sprintf("diff_%s_vs_%s.txt", strings.TrimSuffix(current, ".txt"), strings.TrimSuffix(previous, ".txt"))
	path := s.Path(DiffsDir, name)
	if err := s.writeAtomic(path, writeBytes(report)); err != nil {
		return "", fmt.Errorf("failed to save diff report: %w", err)
	}
	return path, nil
}

// SaveScanReport writes a duplicate report named after t
func (s *Store) SaveScanReport(data []byte, ext string, t time.Time) (string, error) {
	name := fmt.Sprintf("duplicates_%s.%s", t.Format(fingerprint.TimestampLayout), ext)
	path := s.Path(ScanDir, name)
	if err := s.writeAtomic(path, writeBytes(data)); err != nil {
		return "", fmt.Errorf("failed to save duplicate report: %w", err)
	}
	return path, nil
}

// LoadState reads the tracker baseline. It returns ErrNotFound when the
// tracker has never completed its first cycle.
func (s *Store) LoadState() (*models.TrackerState, error) {
	data, err := afero.ReadFile(s.fs, s.Path(StateFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read tracker state: %w", err)
	}

	var state models.TrackerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: tracker state: %v", models.ErrCorruptSnapshot, err)
	}
	return &state, nil
}

// SaveState replaces the tracker baseline. Readers see either the old or the
// new file, never a partial one.
func (s *Store) SaveState(state *models.TrackerState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracker state: %w", err)
	}
	if err := s.writeAtomic(s.Path(StateFile), writeBytes(data)); err != nil {
		return fmt.Errorf("failed to save tracker state: %w", err)
	}
	return nil
}

// AppendAlert appends a block to the alert log
func (s *Store) AppendAlert(block string) error {
	if err := s.fs.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	f, err := s.fs.OpenFile(s.Path(AlertLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open alert log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("failed to write alert: %w", err)
	}
	return nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place
func (s *Store) writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return err
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return err
	}
	return s.fs.Chmod(path, 0644)
}

func writeBytes(data []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
}
