package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/ai"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/artifacts"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorWhite   = "\033[37m"
	colorOrange  = "\033[38;5;208m"
	colorGray    = "\033[38;5;245m"
)

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// PairEntry is one element of a duplicate report
type PairEntry struct {
	File1     string             `json:"file1" yaml:"file1"`
	File2     string             `json:"file2" yaml:"file2"`
	MatchType models.MatchType   `json:"match_type" yaml:"match_type"`
	Score     *float64           `json:"score,omitempty" yaml:"score,omitempty"`
	Review    *models.PairReview `json:"review,omitempty" yaml:"review,omitempty"`
}

// Entries converts pairs into report entries. EXACT pairs carry no score.
func Entries(pairs []*models.DuplicatePair) []PairEntry {
	entries := make([]PairEntry, 0, len(pairs))
	for _, p := range pairs {
		e := PairEntry{File1: p.File1, File2: p.File2, MatchType: p.MatchType, Review: p.Review}
		if p.MatchType == models.MatchNear {
			score := p.Score
			e.Score = &score
		}
		entries = append(entries, e)
	}
	return entries
}

// extensions maps a report format to its file extension
var extensions = map[string]string{
	"json": "json",
	"yaml": "yaml",
	"text": "txt",
	"md":   "md",
}

// Generator renders duplicate reports and writes them below the reports directory
type Generator struct {
	config *config.Config
	store  *artifacts.Store
	fs     afero.Fs
	logger *zap.Logger
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config, store *artifacts.Store, fs afero.Fs, logger *zap.Logger) (*Generator, error) {
	if _, ok := extensions[cfg.Scan.Format]; !ok {
		return nil, fmt.Errorf("%w: unknown report format: %s", models.ErrUsage, cfg.Scan.Format)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		config: cfg,
		store:  store,
		fs:     fs,
		logger: logger,
	}, nil
}

// Render returns the report body and its file extension
func (g *Generator) Render(results *models.ScanResults, aiReport *ai.ReviewReport) ([]byte, string, error) {
	format := g.config.Scan.Format

	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = renderJSON(results)
	case "yaml":
		data, err = renderYAML(results)
	case "text":
		data = renderText(results, aiReport)
	case "md":
		data = renderMarkdown(results, aiReport)
	default:
		return nil, "", fmt.Errorf("%w: unknown report format: %s", models.ErrUsage, format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}
	return data, extensions[format], nil
}

// Generate renders the report and writes it to scan.output_file, or to a
// timestamped file under the scan reports directory
func (g *Generator) Generate(results *models.ScanResults, aiReport *ai.ReviewReport) (string, error) {
	data, ext, err := g.Render(results, aiReport)
	if err != nil {
		return "", err
	}

	var path string
	if out := g.config.Scan.OutputFile; out != "" {
		if err := g.fs.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
		if err := afero.WriteFile(g.fs, out, data, 0644); err != nil {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		path = out
	} else {
		path, err = g.store.SaveScanReport(data, ext, results.StartTime)
		if err != nil {
			return "", err
		}
	}

	g.logger.Info("Report written",
		zap.String("format", g.config.Scan.Format),
		zap.String("output", path))

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return absPath, nil
}

// PrintConsole prints a colored summary of the scan to w
func PrintConsole(w io.Writer, results *models.ScanResults, aiReport *ai.ReviewReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%sSCAN COMPLETE%s\n", colorBold, colorOrange, colorReset)
	fmt.Fprintln(w)

	stats := results.Stats
	if stats == nil {
		stats = &models.ScanStatistics{}
	}
	fmt.Fprintf(w, "  %sPath:%s      %s\n", colorGray, colorReset, results.ScanPath)
	fmt.Fprintf(w, "  %sFiles:%s     %d (%d image, %d text, %d code, %d ignored)\n", colorGray, colorReset,
		stats.TotalFiles, stats.ImageFiles, stats.TextFiles, stats.CodeFiles, stats.IgnoredFiles)
	fmt.Fprintf(w, "  %sPairs:%s     %d compared, %d filtered by pHash, %d skipped\n", colorGray, colorReset,
		stats.PairsVisited, stats.PHashFiltered, stats.PairsSkipped)
	fmt.Fprintf(w, "  %sDuration:%s  %s\n", colorGray, colorReset, FormatDuration(results.Duration))
	fmt.Fprintln(w)

	if len(results.Pairs) == 0 {
		fmt.Fprintf(w, "  %s%s✓ No duplicates found%s\n", colorBold, colorGreen, colorReset)
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "  %s%s⚠ DUPLICATES FOUND: %d%s (%d exact, %d near)\n", colorBold, colorRed,
		len(results.Pairs), colorReset, stats.ExactMatches, stats.NearMatches)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s───────────────────────────────────────────────────────────────%s\n", colorGray, colorReset)

	for i, pair := range results.Pairs {
		fmt.Fprintf(w, "\n  %s%s[%d]%s %s%s%s\n", colorBold, colorWhite, i+1, colorReset,
			getMatchColor(pair.MatchType), pair.Label(), colorReset)
		fmt.Fprintf(w, "      %sFile:%s      %s%s%s\n", colorGray, colorReset, colorOrange, pair.File1, colorReset)
		fmt.Fprintf(w, "      %sFile:%s      %s%s%s\n", colorGray, colorReset, colorOrange, pair.File2, colorReset)

		if pair.Review != nil {
			verdictColor := getVerdictColor(ai.Verdict(pair.Review.Verdict))
			fmt.Fprintf(w, "      %sAI:%s        %s%s%s (%d%% confidence)\n",
				colorGray, colorReset, verdictColor, strings.ToUpper(pair.Review.Verdict), colorReset, pair.Review.Confidence)
			if pair.Review.Explanation != "" {
				fmt.Fprintf(w, "      %sReason:%s    %s%s%s\n", colorGray, colorReset, colorDim, cleanText(pair.Review.Explanation, 100), colorReset)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s───────────────────────────────────────────────────────────────%s\n", colorGray, colorReset)

	if aiReport != nil && aiReport.ReviewedCount > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s%sAI REVIEW SUMMARY%s\n", colorBold, colorMagenta, colorReset)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %sModel:%s       %s\n", colorGray, colorReset, aiReport.Model)
		fmt.Fprintf(w, "  %sReviewed:%s    %d pairs\n", colorGray, colorReset, aiReport.ReviewedCount)
		fmt.Fprintf(w, "  %sCopies:%s      %s%d%s\n", colorGray, colorReset, colorRed, aiReport.CopyCount, colorReset)
		fmt.Fprintf(w, "  %sRevisions:%s   %s%d%s\n", colorGray, colorReset, colorOrange, aiReport.RevisionCount, colorReset)
		fmt.Fprintf(w, "  %sUnrelated:%s   %s%d%s\n", colorGray, colorReset, colorGreen, aiReport.UnrelatedCount, colorReset)
		fmt.Fprintf(w, "  %sTokens:%s      %d\n", colorGray, colorReset, aiReport.TotalTokensUsed)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s───────────────────────────────────────────────────────────────%s\n", colorGray, colorReset)
	}

	fmt.Fprintln(w)
}

// getMatchColor returns ANSI color for a match type
func getMatchColor(t models.MatchType) string {
	if t == models.MatchExact {
		return colorRed + colorBold
	}
	return colorYellow
}

// getVerdictColor returns ANSI color for AI verdict
func getVerdictColor(verdict ai.Verdict) string {
	switch verdict {
	case ai.VerdictCopy:
		return colorRed + colorBold
	case ai.VerdictRevision:
		return colorOrange
	case ai.VerdictUnrelated:
		return colorGreen
	default:
		return colorBlue
	}
}

// cleanText flattens and truncates text for single-line output
func cleanText(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\t", " ")

	// Collapse multiple spaces
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}

	text = strings.TrimSpace(text)

	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}

	return text
}
