package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/classifier"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/core"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

var (
	similarStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	differentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// compareCmd creates the compare command
func compareCmd() *cobra.Command {
	var (
		model     string
		auto      bool
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "compare <fileA> <fileB>",
		Short: "Score the similarity of two files",
		Long: `Embed two files with one modality and compare the cosine similarity with a
threshold. Pick the modality with --model or let --auto choose it from the type of the first file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			// Validate flags before doing anything
			if err := validateCompareFlags(model, auto); err != nil {
				return invalidParameter(err)
			}

			sess, err := openSession(cmd.Context(), func(cfg *config.Config) {
				if flags.Changed("threshold") {
					cfg.Compare.Threshold = threshold
				}
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			result, err := core.Compare(cmd.Context(), sess.registry, classifier.New(sess.fs), args[0], args[1], core.CompareOptions{
				Modality:  embedding.Modality(model),
				Auto:      auto,
				Threshold: sess.cfg.Compare.Threshold,
			})
			if err != nil {
				sess.logger.Error("Compare failed", zap.Error(err))
				return invalidParameter(err)
			}

			fmt.Println()
			fmt.Printf("  %s %s\n", mutedStyle.Render("Modality:  "), result.Modality)
			fmt.Printf("  %s %s\n", mutedStyle.Render("Similarity:"), scoreStyle.Render(fmt.Sprintf("%.4f", result.Similarity)))
			fmt.Printf("  %s %.4f\n", mutedStyle.Render("Threshold: "), result.Threshold)
			fmt.Println()
			if result.Similar {
				fmt.Printf("  %s\n\n", similarStyle.Render("✓ SIMILAR"))
			} else {
				fmt.Printf("  %s\n\n", differentStyle.Render("✗ DIFFERENT"))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Modality: visual-grid, visual-histogram, text, code")
	cmd.Flags().BoolVar(&auto, "auto", false, "Select the modality from the type of the first file")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Similarity above which the files are similar (default: 0.9)")

	return cmd
}

// validateCompareFlags checks that exactly one way of choosing the modality was given
func validateCompareFlags(model string, auto bool) error {
	switch {
	case model != "" && auto:
		return fmt.Errorf("%w: --model and --auto are mutually exclusive", models.ErrUsage)
	case model == "" && !auto:
		return fmt.Errorf("%w: one of --model or --auto is required", models.ErrUsage)
	}

	if model != "" {
		validModels := []string{
			string(embedding.ModalityVisualGrid),
			string(embedding.ModalityVisualHistogram),
			string(embedding.ModalityText),
			string(embedding.ModalityCode),
		}
		if !contains(validModels, model) {
			return fmt.Errorf("%w: --model must be one of: %s (got: %s)",
				models.ErrUsage, strings.Join(validModels, ", "), model)
		}
	}
	return nil
}
