package ai

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// maxExcerptRunes bounds each file excerpt sent to the model
const maxExcerptRunes = 4000

// AIProgressCallback is called to report review progress
type AIProgressCallback func(current, total int, message string)

// Analyzer reviews near-duplicate text and code pairs
type Analyzer struct {
	reviewer         Reviewer
	config           *config.AIConfig
	fs               afero.Fs
	logger           *zap.Logger
	progressCallback AIProgressCallback
}

// NewAnalyzer creates an analyzer backed by the Anthropic API
func NewAnalyzer(cfg *config.AIConfig, fs afero.Fs, logger *zap.Logger) (*Analyzer, error) {
	client, err := NewClient(cfg.Model, cfg.APIToken, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return NewAnalyzerWithReviewer(client, cfg, fs, logger), nil
}

// NewAnalyzerWithReviewer creates an analyzer around any Reviewer
func NewAnalyzerWithReviewer(reviewer Reviewer, cfg *config.AIConfig, fs afero.Fs, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		reviewer: reviewer,
		config:   cfg,
		fs:       fs,
		logger:   logger,
	}
}

// SetProgressCallback sets the progress callback function
func (a *Analyzer) SetProgressCallback(cb AIProgressCallback) {
	a.progressCallback = cb
}

// reportProgress calls the progress callback if set
func (a *Analyzer) reportProgress(current, total int, message string) {
	if a.progressCallback != nil {
		a.progressCallback(current, total, message)
	}
}

// Eligible returns the NEAR_DUPLICATE text and code pairs, in report order
func Eligible(results *models.ScanResults) []*models.DuplicatePair {
	var pairs []*models.DuplicatePair
	for _, p := range results.Pairs {
		if p.MatchType != models.MatchNear {
			continue
		}
		if p.Group == models.TypeText || p.Group == models.TypeCode {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// ReviewPairs reviews up to max_pairs eligible pairs and attaches each
// verdict to its pair. A failed review leaves the pair unreviewed.
func (a *Analyzer) ReviewPairs(ctx context.Context, results *models.ScanResults) (*ReviewReport, error) {
	report := &ReviewReport{
		Model:     a.reviewer.GetModel(),
		StartTime: time.Now(),
		Results:   make([]*ReviewResponse, 0),
	}

	pairs := Eligible(results)
	if a.config.MaxPairs > 0 && len(pairs) > a.config.MaxPairs {
		a.logger.Info("Limiting pairs for AI review",
			zap.Int("total", len(pairs)),
			zap.Int("limit", a.config.MaxPairs))
		report.SkippedCount = len(pairs) - a.config.MaxPairs
		pairs = pairs[:a.config.MaxPairs]
	}

	a.logger.Info("Running AI review", zap.Int("pairs", len(pairs)))

loop:
	for i, pair := range pairs {
		select {
		case <-ctx.Done():
			a.logger.Warn("Review cancelled", zap.Int("reviewed", i))
			break loop
		default:
		}

		pairID := fmt.Sprintf("pair-%d", i)
		a.reportProgress(i+1, len(pairs), fmt.Sprintf("Reviewing: %s", pair.File1))

		req, err := a.buildReviewRequest(pairID, pair)
		if err != nil {
			a.recordError(report, pairID, err)
			continue
		}

		result, err := a.reviewer.Review(ctx, req)
		if err != nil {
			a.recordError(report, pairID, err)
			continue
		}

		pair.Review = &models.PairReview{
			Verdict:     string(result.Verdict),
			Confidence:  result.Confidence,
			Explanation: result.Explanation,
		}
		report.Results = append(report.Results, result)
		report.TotalTokensUsed += result.TokensUsed
		report.ReviewedCount++
		updateCounts(report, result.Verdict)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	a.logger.Info("AI review complete",
		zap.Int("reviewed", report.ReviewedCount),
		zap.Int("copies", report.CopyCount),
		zap.Int("revisions", report.RevisionCount),
		zap.Int("unrelated", report.UnrelatedCount),
		zap.Int("tokens_used", report.TotalTokensUsed),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (a *Analyzer) recordError(report *ReviewReport, pairID string, err error) {
	a.logger.Warn("Review failed for pair", zap.String("pair_id", pairID), zap.Error(err))
	report.Errors = append(report.Errors, fmt.Sprintf("Pair %s: %v", pairID, err))
}

// buildReviewRequest reads both excerpts of a pair
func (a *Analyzer) buildReviewRequest(pairID string, pair *models.DuplicatePair) (*ReviewRequest, error) {
	excerpt1, err := a.readExcerpt(pair.File1)
	if err != nil {
		return nil, err
	}
	excerpt2, err := a.readExcerpt(pair.File2)
	if err != nil {
		return nil, err
	}
	return &ReviewRequest{
		PairID:   pairID,
		File1:    pair.File1,
		File2:    pair.File2,
		Group:    string(pair.Group),
		Score:    pair.Score,
		Excerpt1: excerpt1,
		Excerpt2: excerpt2,
	}, nil
}

func (a *Analyzer) readExcerpt(path string) (string, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}
	return truncateRunes(string(data), maxExcerptRunes), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "\n[truncated]"
}

// updateCounts updates verdict statistics
func updateCounts(report *ReviewReport, verdict Verdict) {
	switch verdict {
	case VerdictCopy:
		report.CopyCount++
	case VerdictRevision:
		report.RevisionCount++
	case VerdictUnrelated:
		report.UnrelatedCount++
	default:
		report.UnknownCount++
	}
}
