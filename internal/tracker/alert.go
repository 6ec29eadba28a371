package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// AlertTimeLayout is the timestamp format of alert headers
const AlertTimeLayout = "2006-01-02 15:04:05"

// AlertBlock renders one alert log entry. Empty sections are omitted.
func AlertBlock(at time.Time, changes []models.DiffEntry, pairs []*models.DuplicatePair) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n=== ALERT [%s] ===\n", at.Format(AlertTimeLayout))

	if len(changes) > 0 {
		sb.WriteString("[Snapshot Changes Detected]:\n")
		for _, c := range changes {
			sb.WriteString(c.String() + "\n")
		}
	}

	if len(pairs) > 0 {
		sb.WriteString("[New Duplicate Files Detected]:\n")
		for _, p := range pairs {
			fmt.Fprintf(&sb, "%s:\n → %s\n → %s\n", p.Label(), p.File1, p.File2)
		}
	}

	return sb.String()
}

// NewPairs keeps the pairs with at least one file outside every baseline pair
func NewPairs(baseline *models.TrackerState, pairs []*models.DuplicatePair) []*models.DuplicatePair {
	known := baseline.DuplicateFiles()
	var fresh []*models.DuplicatePair
	for _, p := range pairs {
		if !known[p.File1] || !known[p.File2] {
			fresh = append(fresh, p)
		}
	}
	return fresh
}
