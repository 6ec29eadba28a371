package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/ai"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/core"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/report"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// duplicatesCmd creates the duplicates command
func duplicatesCmd() *cobra.Command {
	var (
		threshold  float64
		format     string
		outputFile string
		workers    int
		exclude    []string
		reports    string
		// AI flags
		aiReview bool
		aiModel  string
		aiToken  string
		aiMax    int
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "duplicates <folder>",
		Short: "Find exact and near-duplicate files in a folder",
		Long: `Compare every pair of images, documents and source files under a folder
and write a report of exact and near duplicates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			flags := cmd.Flags()

			// Validate flags before doing anything
			if err := validateDuplicateFlags(aiModel); err != nil {
				return invalidParameter(err)
			}

			sess, err := openSession(cmd.Context(), func(cfg *config.Config) {
				if flags.Changed("threshold") {
					cfg.Scan.Threshold = threshold
				}
				if format != "" {
					cfg.Scan.Format = format
				}
				if outputFile != "" {
					cfg.Scan.OutputFile = outputFile
				}
				if workers > 0 {
					cfg.Workers = workers
				}
				if len(exclude) > 0 {
					cfg.Exclude = exclude
				}
				if reports != "" {
					cfg.ReportsDir = reports
				}

				// AI configuration overrides
				if aiReview {
					cfg.AI.Enabled = true
				}
				if aiModel != "" {
					cfg.AI.Model = aiModel
				}
				if aiToken != "" {
					cfg.AI.APIToken = aiToken
				}
				if aiMax > 0 {
					cfg.AI.MaxPairs = aiMax
				}
			})
			if err != nil {
				return err
			}
			defer sess.Close()
			cfg, logger := sess.cfg, sess.logger

			printBanner("Scanning", folder)

			scanner := core.NewDuplicateScanner(cfg, sess.fs, sess.registry, logger)
			scanner.SetProgressCallback(scanProgress())

			results, err := scanner.Scan(cmd.Context(), folder, cfg.Scan.Threshold)
			if err != nil {
				logger.Error("Scan failed", zap.Error(err))
				return invalidParameter(err)
			}

			var aiReport *ai.ReviewReport
			if cfg.AI.Enabled {
				aiReport = runReview(cmd, cfg, sess, results, yes)
			}

			generator, err := report.NewGenerator(cfg, sess.store, sess.fs, logger)
			if err != nil {
				return invalidParameter(err)
			}
			path, err := generator.Generate(results, aiReport)
			if err != nil {
				logger.Error("Failed to write report", zap.Error(err))
				return err
			}
			results.ReportPath = path

			report.PrintConsole(os.Stdout, results, aiReport)
			fmt.Printf("  %sReport:%s    %s%s%s\n", colorGray, colorReset, colorOrange, results.ReportPath, colorReset)
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity for a near duplicate (default: 0.40)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format: json, yaml, text, md (default: json)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of comparison workers (default: CPU cores)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directories to exclude (comma-separated)")
	cmd.Flags().StringVar(&reports, "reports-dir", "", "Artifact directory (default: reports)")

	// AI flags
	cmd.Flags().BoolVar(&aiReview, "ai-review", false, "Ask Claude to review near-duplicate text and code pairs")
	cmd.Flags().StringVar(&aiModel, "ai-model", "", "AI model: haiku, sonnet, opus (default: sonnet)")
	cmd.Flags().StringVar(&aiToken, "ai-token", "", "Anthropic API token (or set ANTHROPIC_API_KEY)")
	cmd.Flags().IntVar(&aiMax, "ai-max-pairs", 0, "Maximum pairs to review (default: 20)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the cost confirmation prompt")

	return cmd
}

// validateDuplicateFlags validates CLI flag values not covered by config validation
func validateDuplicateFlags(aiModel string) error {
	if aiModel != "" {
		validModels := []string{"haiku", "sonnet", "opus"}
		if !contains(validModels, aiModel) {
			return fmt.Errorf("%w: --ai-model must be one of: %s (got: %s)",
				models.ErrUsage, strings.Join(validModels, ", "), aiModel)
		}
	}
	return nil
}

// scanProgress prints the walk summary and a comparison progress bar
func scanProgress() core.ProgressCallback {
	lastPhase := ""
	return func(phase string, current, total int, message string) {
		// Clear previous line if same phase
		if lastPhase == phase && phase == "comparing" {
			fmt.Print("\033[1A\033[K")
		}
		lastPhase = phase

		switch phase {
		case "walking":
			if total == 0 {
				fmt.Printf("  %sCollecting files...%s\n", colorGray, colorReset)
				return
			}
			fmt.Printf("  %sFiles:%s     %s\n", colorGray, colorReset, message)
		case "comparing":
			if total == 0 {
				return
			}
			pct := float64(current) / float64(total) * 100
			fmt.Printf("  %sComparing:%s [%s%s%s] %s%.1f%%%s (%d/%d)\n",
				colorGray, colorReset, colorOrange, progressBar(current, total, 30), colorReset,
				colorOrange, pct, colorReset, current, total)
		}
	}
}

// runReview asks Claude about near-duplicate pairs. Failures are printed and
// the scan report is written without reviews.
func runReview(cmd *cobra.Command, cfg *config.Config, sess *session, results *models.ScanResults, yes bool) *ai.ReviewReport {
	eligible := ai.Eligible(results)
	if len(eligible) == 0 {
		fmt.Printf("  %s⊘ AI review skipped: no near-duplicate text or code pairs%s\n\n", colorGray, colorReset)
		return nil
	}

	count := len(eligible)
	if cfg.AI.MaxPairs > 0 && count > cfg.AI.MaxPairs {
		count = cfg.AI.MaxPairs
	}
	if !yes && !confirmCost(ai.EstimateCost(cfg.AI.Model, count)) {
		fmt.Printf("  %s⊘ AI review skipped%s\n\n", colorGray, colorReset)
		return nil
	}

	analyzer, err := ai.NewAnalyzer(&cfg.AI, sess.fs, sess.logger)
	if err != nil {
		fmt.Printf("  %s⚠ AI review unavailable:%s %v\n\n", colorYellow, colorReset, err)
		return nil
	}

	fmt.Printf("\n  %s%sAI Review%s\n", colorBold, colorRed, colorReset)
	fmt.Println()
	analyzer.SetProgressCallback(func(current, total int, message string) {
		if current > 1 {
			fmt.Print("\033[1A\033[K")
		}
		if len(message) > 40 {
			message = message[:37] + "..."
		}
		fmt.Printf("  %sReviewing:%s [%s%s%s] (%d/%d) %s%s%s\n",
			colorGray, colorReset, colorRed, progressBar(current, total, 30), colorReset,
			current, total, colorGray, message, colorReset)
	})

	aiReport, err := analyzer.ReviewPairs(cmd.Context(), results)
	if err != nil {
		fmt.Printf("  %s⚠ %v%s\n\n", colorYellow, err, colorReset)
	}
	if aiReport != nil {
		fmt.Printf("  %s✓ AI review complete%s %s(%d tokens used)%s\n\n",
			colorRed, colorReset, colorGray, aiReport.TotalTokensUsed, colorReset)
	}
	return aiReport
}

// confirmCost shows the cost estimate and asks for confirmation
func confirmCost(estimate *ai.CostEstimate) bool {
	fmt.Printf("\n  %s%sAI Review Cost Estimate%s\n", colorBold, colorRed, colorReset)
	fmt.Printf("  %sPairs:%s         %d\n", colorGray, colorReset, estimate.PairsCount)
	fmt.Printf("  %sModel:%s         %s\n", colorGray, colorReset, estimate.Model)
	fmt.Printf("  %sEst. Tokens:%s   ~%dk\n", colorGray, colorReset, estimate.EstimatedTokens/1000)
	fmt.Printf("  %sEst. Cost:%s     %s$%.2f%s\n", colorGray, colorReset, colorYellow, estimate.EstimatedCostUSD, colorReset)
	fmt.Println()

	fmt.Printf("  %sProceed with AI review? [Y/n]:%s ", colorBold, colorReset)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))
	return input == "" || input == "y" || input == "yes"
}
