package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/artifacts"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/core"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/differ"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/tracker"
	"go.uber.org/zap"
)

// trackerCmd creates the tracker command
func trackerCmd() *cobra.Command {
	var (
		interval      time.Duration
		threshold     float64
		scanThreshold float64
		listen        string
		reports       string
	)

	cmd := &cobra.Command{
		Use:   "tracker <folder>",
		Short: "Watch a folder for changes and new duplicates",
		Long: `Poll a folder at a fixed interval. Each cycle snapshots the folder, and when
anything changed it rescans for duplicates and appends an alert for new pairs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			flags := cmd.Flags()

			sess, err := openSession(cmd.Context(), func(cfg *config.Config) {
				if interval != 0 {
					cfg.Tracker.Interval = interval
				}
				if flags.Changed("threshold") {
					cfg.Tracker.Threshold = threshold
				}
				if flags.Changed("scan-threshold") {
					cfg.Scan.Threshold = scanThreshold
				}
				if listen != "" {
					cfg.Tracker.Listen = listen
				}
				if reports != "" {
					cfg.ReportsDir = reports
				}
			})
			if err != nil {
				return err
			}
			defer sess.Close()
			cfg, logger := sess.cfg, sess.logger

			t, err := tracker.New(tracker.Options{
				Folder:        folder,
				Interval:      cfg.Tracker.Interval,
				ScanThreshold: cfg.Scan.Threshold,
			},
				sess.snapshots(),
				core.NewDuplicateScanner(cfg, sess.fs, sess.registry, logger),
				differ.NewDiffer(cfg.Tracker.Threshold, logger),
				sess.store,
				logger)
			if err != nil {
				return invalidParameter(err)
			}

			printBanner("Tracking", folder)
			fmt.Printf("  %sInterval:%s  %s\n", colorGray, colorReset, cfg.Tracker.Interval)
			fmt.Printf("  %sAlerts:%s    %s\n", colorGray, colorReset, sess.store.Path(artifacts.AlertLogFile))

			ctx := cmd.Context()
			if cfg.Tracker.Listen != "" {
				server := tracker.NewStatusServer(t.Status(), logger)
				go func() {
					if err := server.ListenAndServe(ctx, cfg.Tracker.Listen); err != nil {
						logger.Error("Status endpoint stopped", zap.Error(err))
					}
				}()
				fmt.Printf("  %sStatus:%s    http://%s/status\n", colorGray, colorReset, cfg.Tracker.Listen)
			}
			fmt.Printf("\n  %sPress Ctrl+C to stop%s\n\n", colorGray, colorReset)

			if err := t.Run(ctx); err != nil {
				logger.Error("Tracker failed", zap.Error(err))
				return invalidParameter(err)
			}

			fmt.Printf("\n  %sTracker stopped after %d cycles%s\n\n", colorGray, t.Status().Cycles(), colorReset)
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval (default: 30s)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Cosine similarity below which a file counts as modified (default: 0.999999)")
	cmd.Flags().Float64Var(&scanThreshold, "scan-threshold", 0, "Minimum similarity for a near duplicate (default: 0.40)")
	cmd.Flags().StringVar(&listen, "listen", "", "Serve /status and /healthz on this address (e.g. :8081)")
	cmd.Flags().StringVar(&reports, "reports-dir", "", "Artifact directory (default: reports)")

	return cmd
}
