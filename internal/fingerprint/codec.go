package fingerprint

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

const (
	separator  = "::"
	maxLineLen = 16 * 1024 * 1024
)

var markers = []models.FingerprintMode{models.ModeHash, models.ModeEmbedding}

// EncodeLine renders one snapshot line: <path>::<MODE>::<value>
func EncodeLine(path string, entry models.FingerprintEntry) (string, error) {
	var value string
	switch entry.Mode {
	case models.ModeHash:
		value = entry.Digest
	case models.ModeEmbedding:
		parts := make([]string, len(entry.Vector))
		for i, v := range entry.Vector {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		value = strings.Join(parts, ",")
	default:
		return "", fmt.Errorf("unknown fingerprint mode %q for %s", entry.Mode, path)
	}
	return path + separator + string(entry.Mode) + separator + value, nil
}

// ParseLine parses one snapshot line. The path may itself contain "::", so
// the last mode marker wins.
func ParseLine(line string) (string, models.FingerprintEntry, error) {
	idx, mode := -1, models.FingerprintMode("")
	for _, m := range markers {
		if i := strings.LastIndex(line, separator+string(m)+separator); i > idx {
			idx, mode = i, m
		}
	}
	if idx <= 0 {
		return "", models.FingerprintEntry{}, fmt.Errorf("%w: no mode marker", models.ErrCorruptSnapshot)
	}

	path := line[:idx]
	value := line[idx+len(separator)*2+len(mode):]

	if mode == models.ModeHash {
		if value == "" {
			return "", models.FingerprintEntry{}, fmt.Errorf("%w: empty digest for %s", models.ErrCorruptSnapshot, path)
		}
		return path, models.HashEntry(value), nil
	}

	if value == "" {
		return "", models.FingerprintEntry{}, fmt.Errorf("%w: empty vector for %s", models.ErrCorruptSnapshot, path)
	}
	fields := strings.Split(value, ",")
	vector := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", models.FingerprintEntry{}, fmt.Errorf("%w: %s: %v", models.ErrCorruptSnapshot, path, err)
		}
		vector[i] = v
	}
	return path, models.EmbeddingEntry(vector), nil
}

// Encode writes entries sorted by path
func Encode(w io.Writer, entries map[string]models.FingerprintEntry) error {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	bw := bufio.NewWriter(w)
	for _, p := range paths {
		line, err := EncodeLine(p, entries[p])
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode reads snapshot lines. Corrupt lines are skipped and counted; only a
// read failure is an error.
func Decode(r io.Reader) (map[string]models.FingerprintEntry, int, error) {
	entries := make(map[string]models.FingerprintEntry)
	skipped := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		path, entry, err := ParseLine(line)
		if err != nil {
			skipped++
			continue
		}
		entries[path] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return entries, skipped, nil
}
