package differ

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// Differ classifies the paths of a snapshot against an earlier one
type Differ struct {
	threshold float64
	logger    *zap.Logger
}

// NewDiffer creates a differ. Embedding-backed entries scoring below
// threshold are MODIFIED.
func NewDiffer(threshold float64, logger *zap.Logger) *Differ {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Differ{threshold: threshold, logger: logger}
}

// Threshold returns the similarity below which an entry counts as modified
func (d *Differ) Threshold() float64 {
	return d.threshold
}

// Diff classifies every path of current, sorted by path. Paths present only
// in previous are not reported.
func (d *Differ) Diff(previous, current *models.Snapshot) []models.DiffEntry {
	paths := make([]string, 0, len(current.Entries))
	for path := range current.Entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var before map[string]models.FingerprintEntry
	if previous != nil {
		before = previous.Entries
	}

	entries := make([]models.DiffEntry, 0, len(paths))
	for _, path := range paths {
		entries = append(entries, d.classify(path, before, current.Entries[path]))
	}
	return entries
}

func (d *Differ) classify(path string, before map[string]models.FingerprintEntry, cur models.FingerprintEntry) models.DiffEntry {
	entry := models.DiffEntry{Path: path, Classification: models.ClassUnchanged}

	prev, ok := before[path]
	if !ok {
		entry.Classification = models.ClassNew
		return entry
	}

	if !prev.Comparable(cur) {
		d.logger.Debug("Fingerprint shape changed",
			zap.String("path", path),
			zap.String("previous_mode", string(prev.Mode)),
			zap.String("current_mode", string(cur.Mode)),
			zap.Int("previous", len(prev.Vector)),
			zap.Int("current", len(cur.Vector)))
		entry.Classification = models.ClassModified
		return entry
	}

	// Hash-backed entries have no partial similarity
	if prev.IsHash() {
		if prev.Digest != cur.Digest {
			entry.Classification = models.ClassModified
		}
		return entry
	}

	sim, err := embedding.Cosine(prev.Vector, cur.Vector)
	if err != nil {
		entry.Classification = models.ClassModified
		return entry
	}
	if sim < d.threshold {
		entry.Classification = models.ClassModified
		entry.Similarity = sim
		entry.HasSimilarity = true
	}
	return entry
}

// Changes keeps the NEW and MODIFIED entries
func Changes(entries []models.DiffEntry) []models.DiffEntry {
	var changes []models.DiffEntry
	for _, e := range entries {
		if e.IsChange() {
			changes = append(changes, e)
		}
	}
	return changes
}

// Summary counts entries per classification
type Summary struct {
	New       int
	Modified  int
	Unchanged int
}

// Total returns the number of changed paths
func (s Summary) Total() int {
	return s.New + s.Modified
}

// Summarize counts entries per classification
func Summarize(entries []models.DiffEntry) Summary {
	var s Summary
	for _, e := range entries {
		switch e.Classification {
		case models.ClassNew:
			s.New++
		case models.ClassModified:
			s.Modified++
		default:
			s.Unchanged++
		}
	}
	return s
}

// RenderReport writes one "<path> ==> <classification>" line per change
func RenderReport(entries []models.DiffEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		if !e.IsChange() {
			continue
		}
		fmt.Fprintln(&buf, e.String())
	}
	return buf.Bytes()
}
