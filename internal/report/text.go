package report

import (
	"fmt"
	"strings"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/ai"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// renderText renders a plain text report
func renderText(results *models.ScanResults, aiReport *ai.ReviewReport) []byte {
	var sb strings.Builder
	stats := statsOf(results)

	// Header
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n")
	sb.WriteString("  DUPLICATE FILE REPORT\n")
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n\n")

	// Summary
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Scan Path:        %s\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("Threshold:        %.2f\n", results.Threshold))
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", results.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("Total Files:      %d\n", stats.TotalFiles))
	sb.WriteString(fmt.Sprintf("Image Files:      %d\n", stats.ImageFiles))
	sb.WriteString(fmt.Sprintf("Text Files:       %d\n", stats.TextFiles))
	sb.WriteString(fmt.Sprintf("Code Files:       %d\n", stats.CodeFiles))
	sb.WriteString(fmt.Sprintf("Ignored Files:    %d\n", stats.IgnoredFiles))
	sb.WriteString(fmt.Sprintf("Pairs Compared:   %d\n", stats.PairsVisited))
	sb.WriteString(fmt.Sprintf("pHash Filtered:   %d\n", stats.PHashFiltered))
	sb.WriteString(fmt.Sprintf("Pairs Skipped:    %d\n", stats.PairsSkipped))
	sb.WriteString(fmt.Sprintf("DUPLICATES:       %d (%d exact, %d near)\n", len(results.Pairs), stats.ExactMatches, stats.NearMatches))
	sb.WriteString("\n")

	if len(results.Pairs) > 0 {
		sb.WriteString("DUPLICATE PAIRS\n")
		sb.WriteString(strings.Repeat("=", 79) + "\n\n")

		for i, pair := range results.Pairs {
			sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, pair.Label()))
			sb.WriteString(strings.Repeat("-", 79) + "\n")
			sb.WriteString(fmt.Sprintf("File 1:      %s\n", pair.File1))
			sb.WriteString(fmt.Sprintf("File 2:      %s\n", pair.File2))
			if pair.Group != "" {
				sb.WriteString(fmt.Sprintf("Group:       %s\n", pair.Group))
			}
			if pair.Review != nil {
				sb.WriteString(fmt.Sprintf("AI Verdict:  %s (Confidence: %d%%)\n", strings.ToUpper(pair.Review.Verdict), pair.Review.Confidence))
				sb.WriteString(fmt.Sprintf("Explanation: %s\n", pair.Review.Explanation))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No duplicates found.\n\n")
	}

	if aiReport != nil && aiReport.ReviewedCount > 0 {
		sb.WriteString("AI REVIEW\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		sb.WriteString(fmt.Sprintf("Model:            %s\n", aiReport.Model))
		sb.WriteString(fmt.Sprintf("Pairs Reviewed:   %d\n", aiReport.ReviewedCount))
		if aiReport.SkippedCount > 0 {
			sb.WriteString(fmt.Sprintf("Over Limit:       %d\n", aiReport.SkippedCount))
		}
		sb.WriteString(fmt.Sprintf("Copies:           %d\n", aiReport.CopyCount))
		sb.WriteString(fmt.Sprintf("Revisions:        %d\n", aiReport.RevisionCount))
		sb.WriteString(fmt.Sprintf("Unrelated:        %d\n", aiReport.UnrelatedCount))
		sb.WriteString(fmt.Sprintf("Tokens Used:      %d\n", aiReport.TotalTokensUsed))
		sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(aiReport.Duration)))
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString("End of Report\n")
	sb.WriteString(strings.Repeat("=", 79) + "\n")

	return []byte(sb.String())
}

func statsOf(results *models.ScanResults) *models.ScanStatistics {
	if results.Stats == nil {
		return &models.ScanStatistics{}
	}
	return results.Stats
}
