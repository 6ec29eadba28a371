package ai

import "time"

// Verdict is the reviewer's reading of a near-duplicate pair
type Verdict string

const (
	VerdictCopy      Verdict = "copy"
	VerdictRevision  Verdict = "revision"
	VerdictUnrelated Verdict = "unrelated"
	VerdictUnknown   Verdict = "unknown"
)

// ParseVerdict normalizes a verdict string returned by the model
func ParseVerdict(s string) Verdict {
	switch v := Verdict(normalize(s)); v {
	case VerdictCopy, VerdictRevision, VerdictUnrelated:
		return v
	default:
		return VerdictUnknown
	}
}

// ReviewRequest contains the data sent to the model for one pair
type ReviewRequest struct {
	PairID   string  `json:"pair_id"`
	File1    string  `json:"file1"`
	File2    string  `json:"file2"`
	Group    string  `json:"group"`
	Score    float64 `json:"score"`
	Excerpt1 string  `json:"excerpt1"`
	Excerpt2 string  `json:"excerpt2"`
}

// ReviewResponse contains the model's verdict for one pair
type ReviewResponse struct {
	PairID      string  `json:"pair_id"`
	Verdict     Verdict `json:"verdict"`
	Confidence  int     `json:"confidence"` // 0-100
	Explanation string  `json:"explanation"`
	TokensUsed  int     `json:"tokens_used"`
}

// ReviewReport aggregates one review run
type ReviewReport struct {
	Model           string            `json:"model"`
	ReviewedCount   int               `json:"reviewed_count"`
	SkippedCount    int               `json:"skipped_count"` // eligible pairs over the max_pairs limit
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	Duration        time.Duration     `json:"duration"`
	TotalTokensUsed int               `json:"total_tokens_used"`
	Results         []*ReviewResponse `json:"results"`

	CopyCount      int `json:"copy_count"`
	RevisionCount  int `json:"revision_count"`
	UnrelatedCount int `json:"unrelated_count"`
	UnknownCount   int `json:"unknown_count"`

	Errors []string `json:"errors,omitempty"`
}

// CostEstimate represents estimated API costs of a review run
type CostEstimate struct {
	Model            string
	PairsCount       int
	EstimatedTokens  int
	EstimatedCostUSD float64
}

// TokenPricing contains pricing per million tokens for each model
type TokenPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// ModelPricing returns pricing for a model
func ModelPricing(model string) TokenPricing {
	switch model {
	case "haiku", "claude-3-haiku", "claude-3-5-haiku-latest":
		return TokenPricing{InputPerMillion: 0.25, OutputPerMillion: 1.25}
	case "opus", "claude-3-opus":
		return TokenPricing{InputPerMillion: 15.0, OutputPerMillion: 75.0}
	default: // sonnet
		return TokenPricing{InputPerMillion: 3.0, OutputPerMillion: 15.0}
	}
}

// EstimateCost calculates the estimated cost of reviewing pairsCount pairs
func EstimateCost(model string, pairsCount int) *CostEstimate {
	// Two excerpts of up to maxExcerptRunes plus the system prompt
	const (
		inputTokensPerPair  = 2600
		outputTokensPerPair = 150
	)

	pricing := ModelPricing(model)
	inputTotal := float64(pairsCount * inputTokensPerPair)
	outputTotal := float64(pairsCount * outputTokensPerPair)

	return &CostEstimate{
		Model:           model,
		PairsCount:      pairsCount,
		EstimatedTokens: int(inputTotal + outputTotal),
		EstimatedCostUSD: (inputTotal/1_000_000)*pricing.InputPerMillion +
			(outputTotal/1_000_000)*pricing.OutputPerMillion,
	}
}
