package fingerprint

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the timestamp format embedded in artifact names
const TimestampLayout = "2006-01-02_15-04-05"

const snapshotExt = ".txt"

// SanitizeFolder turns a folder path into a file name prefix
func SanitizeFolder(folder string) string {
	s := strings.NewReplacer("/", "_", "\\", "_").Replace(folder)
	return strings.Trim(s, "_")
}

// SnapshotFilename names the snapshot of folder taken at t
func SnapshotFilename(folder string, t time.Time) string {
	return fmt.Sprintf("%s_%s%s", SanitizeFolder(folder), t.Format(TimestampLayout), snapshotExt)
}

// ParseSnapshotName splits a snapshot file name into its folder prefix and
// timestamp
func ParseSnapshotName(name string) (string, time.Time, error) {
	stem := strings.TrimSuffix(name, snapshotExt)
	if stem == name {
		return "", time.Time{}, fmt.Errorf("not a snapshot file: %s", name)
	}

	parts := strings.Split(stem, "_")
	if len(parts) < 3 {
		return "", time.Time{}, fmt.Errorf("not a snapshot file: %s", name)
	}

	ts, err := time.ParseInLocation(TimestampLayout, strings.Join(parts[len(parts)-2:], "_"), time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("bad timestamp in %s: %w", name, err)
	}
	return strings.Join(parts[:len(parts)-2], "_"), ts, nil
}
