package models

import "time"

// ScanResults contains the outcome of one duplicate scan
type ScanResults struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	ScanPath  string        `json:"scan_path"`
	Threshold float64       `json:"threshold"`

	Pairs []*DuplicatePair `json:"pairs"`

	Stats *ScanStatistics `json:"statistics"`

	ReportPath string `json:"report_path,omitempty"`
}

// ScanStatistics contains per-stage counters
type ScanStatistics struct {
	TotalFiles    int `json:"total_files"`
	ImageFiles    int `json:"image_files"`
	TextFiles     int `json:"text_files"`
	CodeFiles     int `json:"code_files"`
	IgnoredFiles  int `json:"ignored_files"` // binary, unknown, hash-like
	PairsVisited  int `json:"pairs_visited"`
	ExactMatches  int `json:"exact_matches"`
	NearMatches   int `json:"near_matches"`
	PHashFiltered int `json:"phash_filtered"`
	PairsSkipped  int `json:"pairs_skipped"`
	WorkersUsed   int `json:"workers_used"`
}

// AddPair appends a pair and updates counters
func (r *ScanResults) AddPair(p *DuplicatePair) {
	r.Pairs = append(r.Pairs, p)
	if r.Stats == nil {
		r.Stats = &ScanStatistics{}
	}
	switch p.MatchType {
	case MatchExact:
		r.Stats.ExactMatches++
	case MatchNear:
		r.Stats.NearMatches++
	}
}
