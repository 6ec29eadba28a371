package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/differ"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// snapshotCmd creates the snapshot command
func snapshotCmd() *cobra.Command {
	var (
		threshold float64
		maxSize   string
		exclude   []string
		hashAlg   string
		reports   string
	)

	cmd := &cobra.Command{
		Use:   "snapshot <folder>",
		Short: "Fingerprint a folder and diff it against the previous snapshot",
		Long: `Fingerprint every file under a folder, save the snapshot and compare it
with the newest earlier snapshot of the same folder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			flags := cmd.Flags()

			sess, err := openSession(cmd.Context(), func(cfg *config.Config) {
				if flags.Changed("threshold") {
					cfg.Snapshot.Threshold = threshold
				}
				if maxSize != "" {
					cfg.MaxSize = maxSize
				}
				if len(exclude) > 0 {
					cfg.Exclude = exclude
				}
				if hashAlg != "" {
					cfg.HashAlgorithm = hashAlg
				}
				if reports != "" {
					cfg.ReportsDir = reports
				}
			})
			if err != nil {
				return err
			}
			defer sess.Close()
			logger := sess.logger

			printBanner("Snapshot", folder)

			spinner := startSpinner("Fingerprinting files...")
			snap, err := sess.snapshots().TakeSnapshot(cmd.Context(), folder)
			stopSpinner(spinner)
			if err != nil {
				logger.Error("Snapshot failed", zap.Error(err))
				return invalidParameter(err)
			}

			path, err := sess.store.SaveSnapshot(snap)
			if err != nil {
				return err
			}
			fmt.Printf("  %sFiles:%s     %d\n", colorGray, colorReset, snap.Len())
			fmt.Printf("  %sSnapshot:%s  %s%s%s\n", colorGray, colorReset, colorOrange, path, colorReset)
			fmt.Println()

			previous, err := sess.store.LoadPrevious(snap)
			if errors.Is(err, models.ErrNotFound) {
				fmt.Printf("  %sNo previous snapshot to compare%s\n\n", colorGray, colorReset)
				return nil
			}
			if err != nil {
				return err
			}
			prevName := previous.Name

			d := differ.NewDiffer(sess.cfg.Snapshot.Threshold, logger)
			entries := d.Diff(previous, snap)
			summary := differ.Summarize(entries)
			fmt.Printf("  %sPrevious:%s  %s\n", colorGray, colorReset, prevName)

			if summary.Total() == 0 {
				fmt.Printf("  %s%s✓ No significant changes%s\n\n", colorBold, colorGreen, colorReset)
				return nil
			}

			diffPath, err := sess.store.SaveDiff(snap.Name, prevName, differ.RenderReport(entries))
			if err != nil {
				return err
			}
			fmt.Printf("  %s%s⚠ %d changes%s (%d new, %d modified)\n", colorBold, colorYellow,
				summary.Total(), colorReset, summary.New, summary.Modified)
			fmt.Printf("  %sDiff:%s      %s%s%s\n\n", colorGray, colorReset, colorOrange, diffPath, colorReset)

			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Cosine similarity below which a file counts as modified (default: 0.999999)")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Files larger than this are fingerprinted by hash only (default: 50M)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directories to exclude (comma-separated)")
	cmd.Flags().StringVar(&hashAlg, "hash", "", "Digest for hashed files: md5, sha1, sha256 (default: sha256)")
	cmd.Flags().StringVar(&reports, "reports-dir", "", "Artifact directory (default: reports)")

	return cmd
}
