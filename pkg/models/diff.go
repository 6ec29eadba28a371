package models

import "fmt"

// Classification of a path when two snapshots are compared
type Classification string

const (
	ClassNew       Classification = "NEW"
	ClassModified  Classification = "MODIFIED"
	ClassUnchanged Classification = "UNCHANGED"
)

// DiffEntry is one classified path
type DiffEntry struct {
	Path           string
	Classification Classification
	Similarity     float64
	HasSimilarity  bool // only embedding-backed MODIFIED entries carry a score
}

// IsChange reports whether the entry is NEW or MODIFIED
func (d DiffEntry) IsChange() bool {
	return d.Classification != ClassUnchanged
}

// Describe renders the classification with an optional score
func (d DiffEntry) Describe() string {
	if d.HasSimilarity {
		return fmt.Sprintf("%s (Similarity: %.6f)", d.Classification, d.Similarity)
	}
	return string(d.Classification)
}

// String renders a diff report line
func (d DiffEntry) String() string {
	return d.Path + " ==> " + d.Describe()
}
