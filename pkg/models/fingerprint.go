package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// FingerprintMode tags the kind of value held by a FingerprintEntry
type FingerprintMode string

const (
	ModeHash      FingerprintMode = "HASH"
	ModeEmbedding FingerprintMode = "EMBEDDING"
)

// FingerprintEntry is either a hex digest (HASH) or a vector (EMBEDDING)
type FingerprintEntry struct {
	Mode   FingerprintMode
	Digest string
	Vector []float64
}

// HashEntry builds a HASH fingerprint
func HashEntry(digest string) FingerprintEntry {
	return FingerprintEntry{Mode: ModeHash, Digest: digest}
}

// EmbeddingEntry builds an EMBEDDING fingerprint
func EmbeddingEntry(vector []float64) FingerprintEntry {
	return FingerprintEntry{Mode: ModeEmbedding, Vector: vector}
}

// IsHash reports whether the entry holds a digest
func (e FingerprintEntry) IsHash() bool {
	return e.Mode == ModeHash
}

// Comparable reports whether two entries can be compared: both HASH, or both
// EMBEDDING of equal length.
func (e FingerprintEntry) Comparable(other FingerprintEntry) bool {
	if e.Mode != other.Mode {
		return false
	}
	if e.Mode == ModeEmbedding {
		return len(e.Vector) == len(other.Vector)
	}
	return true
}

type fingerprintJSON struct {
	Mode  FingerprintMode `json:"mode"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the entry as {"mode": ..., "value": ...}
func (e FingerprintEntry) MarshalJSON() ([]byte, error) {
	var (
		value []byte
		err   error
	)
	switch e.Mode {
	case ModeHash:
		value, err = json.Marshal(e.Digest)
	case ModeEmbedding:
		value, err = json.Marshal(e.Vector)
	default:
		return nil, fmt.Errorf("unknown fingerprint mode %q", e.Mode)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(fingerprintJSON{Mode: e.Mode, Value: value})
}

// UnmarshalJSON decodes the {"mode": ..., "value": ...} form
func (e *FingerprintEntry) UnmarshalJSON(data []byte) error {
	var raw fingerprintJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Mode {
	case ModeHash:
		var digest string
		if err := json.Unmarshal(raw.Value, &digest); err != nil {
			return err
		}
		*e = HashEntry(digest)
	case ModeEmbedding:
		var vector []float64
		if err := json.Unmarshal(raw.Value, &vector); err != nil {
			return err
		}
		*e = EmbeddingEntry(vector)
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrCorruptSnapshot, raw.Mode)
	}
	return nil
}

// Snapshot is a point-in-time fingerprint map of a folder
type Snapshot struct {
	Folder  string
	TakenAt time.Time
	Name    string // artifact file name, set once persisted or loaded
	Entries map[string]FingerprintEntry
}

// NewSnapshot creates an empty snapshot for folder
func NewSnapshot(folder string, takenAt time.Time) *Snapshot {
	return &Snapshot{
		Folder:  folder,
		TakenAt: takenAt,
		Entries: make(map[string]FingerprintEntry),
	}
}

// Len returns the number of fingerprinted files
func (s *Snapshot) Len() int {
	return len(s.Entries)
}
