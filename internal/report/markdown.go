package report

import (
	"fmt"
	"strings"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/ai"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// renderMarkdown renders a Markdown report
func renderMarkdown(results *models.ScanResults, aiReport *ai.ReviewReport) []byte {
	var sb strings.Builder
	stats := statsOf(results)

	sb.WriteString("# Duplicate File Report\n\n")

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Scan Path | `%s` |\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("| Threshold | %.2f |\n", results.Threshold))
	sb.WriteString(fmt.Sprintf("| Start Time | %s |\n", results.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("| Total Files | %d |\n", stats.TotalFiles))
	sb.WriteString(fmt.Sprintf("| Pairs Compared | %d |\n", stats.PairsVisited))
	sb.WriteString(fmt.Sprintf("| pHash Filtered | %d |\n", stats.PHashFiltered))
	sb.WriteString(fmt.Sprintf("| Pairs Skipped | %d |\n", stats.PairsSkipped))
	sb.WriteString(fmt.Sprintf("| **Duplicates** | **%d** |\n", len(results.Pairs)))
	sb.WriteString("\n")

	if len(results.Pairs) == 0 {
		sb.WriteString("> ✅ **No duplicates found**\n\n")
		return []byte(sb.String())
	}

	// Files by group
	sb.WriteString("## Files by Group\n\n")
	sb.WriteString("| Group | Count |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Image | %d |\n", stats.ImageFiles))
	sb.WriteString(fmt.Sprintf("| Text | %d |\n", stats.TextFiles))
	sb.WriteString(fmt.Sprintf("| Code | %d |\n", stats.CodeFiles))
	sb.WriteString(fmt.Sprintf("| Ignored | %d |\n", stats.IgnoredFiles))
	sb.WriteString("\n")

	// Pairs
	sb.WriteString("## Duplicate Pairs\n\n")
	sb.WriteString("| # | Match | Score | File 1 | File 2 |\n")
	sb.WriteString("|---|-------|-------|--------|--------|\n")
	for i, pair := range results.Pairs {
		score := "-"
		if pair.MatchType == models.MatchNear {
			score = fmt.Sprintf("%.4f", pair.Score)
		}
		sb.WriteString(fmt.Sprintf("| %d | %s %s | %s | `%s` | `%s` |\n",
			i+1, getMatchEmoji(pair.MatchType), pair.MatchType, score, pair.File1, pair.File2))
	}
	sb.WriteString("\n")

	// AI review section
	if aiReport != nil && aiReport.ReviewedCount > 0 {
		sb.WriteString("## AI Review\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Model | %s |\n", aiReport.Model))
		sb.WriteString(fmt.Sprintf("| Pairs Reviewed | %d |\n", aiReport.ReviewedCount))
		sb.WriteString(fmt.Sprintf("| 🔴 Copies | %d |\n", aiReport.CopyCount))
		sb.WriteString(fmt.Sprintf("| 🟠 Revisions | %d |\n", aiReport.RevisionCount))
		sb.WriteString(fmt.Sprintf("| 🟢 Unrelated | %d |\n", aiReport.UnrelatedCount))
		sb.WriteString(fmt.Sprintf("| Tokens Used | %d |\n", aiReport.TotalTokensUsed))
		sb.WriteString("\n")

		for i, pair := range results.Pairs {
			if pair.Review == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("### %d. %s %s (Confidence: %d%%)\n\n", i+1,
				getVerdictEmoji(ai.Verdict(pair.Review.Verdict)), strings.ToUpper(pair.Review.Verdict), pair.Review.Confidence))
			sb.WriteString(fmt.Sprintf("`%s` ↔ `%s`\n\n", pair.File1, pair.File2))
			sb.WriteString(fmt.Sprintf("**Explanation:** %s\n\n", pair.Review.Explanation))
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("---\n\n")
	sb.WriteString("*Generated by duplihq*\n")

	return []byte(sb.String())
}

// getMatchEmoji returns emoji for a match type
func getMatchEmoji(t models.MatchType) string {
	if t == models.MatchExact {
		return "🔴"
	}
	return "🟡"
}

// getVerdictEmoji returns emoji for an AI verdict
func getVerdictEmoji(v ai.Verdict) string {
	switch v {
	case ai.VerdictCopy:
		return "🔴"
	case ai.VerdictRevision:
		return "🟠"
	case ai.VerdictUnrelated:
		return "🟢"
	default:
		return "⚪"
	}
}
