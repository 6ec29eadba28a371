package models

import "fmt"

// MatchType classifies a duplicate pair
type MatchType string

const (
	MatchExact MatchType = "EXACT_DUPLICATE"
	MatchNear  MatchType = "NEAR_DUPLICATE"
)

// DuplicatePair is an unordered pair of matching files
type DuplicatePair struct {
	File1     string      `json:"file1" yaml:"file1"`
	File2     string      `json:"file2" yaml:"file2"`
	MatchType MatchType   `json:"match_type" yaml:"match_type"`
	Score     float64     `json:"score,omitempty" yaml:"score,omitempty"` // NEAR_DUPLICATE only
	Group     FileType    `json:"group,omitempty" yaml:"group,omitempty"`
	Review    *PairReview `json:"review,omitempty" yaml:"review,omitempty"`
}

// PairReview is an optional model verdict attached to a near duplicate
type PairReview struct {
	Verdict     string `json:"verdict" yaml:"verdict"` // copy, revision, unrelated
	Confidence  int    `json:"confidence" yaml:"confidence"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// Label renders the match type the way alert blocks print it
func (p *DuplicatePair) Label() string {
	if p.MatchType == MatchNear {
		return fmt.Sprintf("%s (sim=%.2f)", p.MatchType, p.Score)
	}
	return string(p.MatchType)
}

// Key returns an order-independent identity for the pair
func (p *DuplicatePair) Key() string {
	return PairKey(p.File1, p.File2)
}

// PairKey returns the same key for (a, b) and (b, a)
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
