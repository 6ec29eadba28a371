package models

import "time"

// TrackerState is the persisted baseline of the tracker
type TrackerState struct {
	Folder             string                      `json:"folder"`
	TakenAt            time.Time                   `json:"taken_at"`
	BaselineSnapshot   map[string]FingerprintEntry `json:"baseline_snapshot"`
	BaselineDuplicates []*DuplicatePair            `json:"baseline_duplicates"`
}

// NewTrackerState builds a state from a snapshot and its duplicate set
func NewTrackerState(snapshot *Snapshot, duplicates []*DuplicatePair) *TrackerState {
	if duplicates == nil {
		duplicates = []*DuplicatePair{}
	}
	return &TrackerState{
		Folder:             snapshot.Folder,
		TakenAt:            snapshot.TakenAt,
		BaselineSnapshot:   snapshot.Entries,
		BaselineDuplicates: duplicates,
	}
}

// Snapshot returns the baseline as a Snapshot value
func (s *TrackerState) Snapshot() *Snapshot {
	entries := s.BaselineSnapshot
	if entries == nil {
		entries = make(map[string]FingerprintEntry)
	}
	return &Snapshot{Folder: s.Folder, TakenAt: s.TakenAt, Entries: entries}
}

// DuplicateFiles returns every path that appears in a baseline pair
func (s *TrackerState) DuplicateFiles() map[string]bool {
	files := make(map[string]bool, len(s.BaselineDuplicates)*2)
	for _, p := range s.BaselineDuplicates {
		files[p.File1] = true
		files[p.File2] = true
	}
	return files
}
