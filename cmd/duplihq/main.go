package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/artifacts"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/filesystem"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/fingerprint"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/logging"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorOrange = "\033[38;5;208m"
	colorYellow = "\033[38;5;220m"
	colorGray   = "\033[38;5;245m"
	colorCyan   = "\033[36m"
)

var (
	version    = "0.1.0"
	verbose    bool
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "duplihq",
		Short: "duplihq - Forensic near-duplicate file detection",
		Long: `Detects exact and near-duplicate images, documents and source files,
snapshots folders for later comparison and watches folders for new duplicates.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			printMainBanner()
			cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")

	// Disable built-in help command
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(duplicatesCmd())
	rootCmd.AddCommand(trackerCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(hashesCmd())
	rootCmd.AddCommand(helpCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printMainBanner prints the main banner
func printMainBanner() {
	fmt.Println()
	fmt.Printf("%s", colorOrange)
	fmt.Println("█▀▄ █ █ █▀█ █   █ █ █ █▀█")
	fmt.Println("█▄▀ █▄█ █▀▀ █▄▄ █ █▀█ ▀▀█")
	fmt.Printf("%s", colorReset)
	fmt.Println()
	fmt.Printf("%sForensic Duplicate Detector v%s%s\n", colorGray, version, colorReset)
	fmt.Println()
}

// printBanner prints the startup banner of a folder command
func printBanner(title, path string) {
	printMainBanner()
	fmt.Printf("  %s%s:%s  %s\n", colorGray, title, colorReset, path)
	fmt.Println()
}

// session holds what every command needs: configuration, logger and the
// shared embedding registry
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	fs       afero.Fs
	cache    *embedding.Cache
	registry *embedding.Registry
	store    *artifacts.Store
	cmdLog   *logging.CommandLog
}

// openSession loads configuration, applies flag overrides, validates the
// result and builds the logger and embedding registry
func openSession(ctx context.Context, override func(cfg *config.Config)) (*session, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, invalidParameter(err)
	}

	logger, err := logging.NewLogger(cfg.Log, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger, fs: afero.NewOsFs()}

	s.cmdLog, err = logging.OpenCommandLog(cfg.Log)
	if err != nil {
		logger.Warn("Command log unavailable", zap.Error(err))
	} else if err := s.cmdLog.Record(os.Args); err != nil {
		logger.Warn("Failed to record command", zap.Error(err))
	}

	if cfg.Cache.Enabled {
		s.cache, err = embedding.OpenCache(cfg.Cache.Path)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	s.registry, err = embedding.NewRegistryFromConfig(ctx, cfg.Embedding, s.fs, s.cache, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.store = artifacts.NewStore(s.fs, cfg.ReportsDir, logger)

	return s, nil
}

// snapshots builds the fingerprint store from the session configuration
func (s *session) snapshots() *fingerprint.Store {
	return fingerprint.NewStore(s.fs, s.registry, fingerprint.Options{
		Algorithm: s.cfg.HashAlgorithm,
		MaxSize:   filesystem.ParseSize(s.cfg.MaxSize),
		Exclude:   s.cfg.Exclude,
		Skip:      s.cfg.ArtifactPaths(),
	}, s.logger)
}

// Close releases the cache and the command log
func (s *session) Close() {
	if err := s.cache.Close(); err != nil {
		s.logger.Warn("Failed to close embedding cache", zap.Error(err))
	}
	if err := s.cmdLog.Close(); err != nil {
		s.logger.Warn("Failed to close command log", zap.Error(err))
	}
	s.logger.Sync()
}

// invalidParameter prints usage errors the way flag validation does
func invalidParameter(err error) error {
	if errors.Is(err, models.ErrUsage) {
		msg := strings.TrimPrefix(err.Error(), models.ErrUsage.Error()+": ")
		fmt.Printf("\n  %s✗ Invalid parameter:%s %s\n\n", colorRed, colorReset, msg)
	}
	return err
}

// startSpinner starts a pterm spinner; a nil spinner is returned when the
// terminal cannot show one
func startSpinner(text string) *pterm.SpinnerPrinter {
	spinner := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100 * time.Millisecond).
		WithRemoveWhenDone(true)

	spinnerInstance, err := spinner.Start(text)
	if err != nil {
		return nil
	}
	return spinnerInstance
}

func stopSpinner(spinner *pterm.SpinnerPrinter) {
	if spinner != nil {
		spinner.Stop()
	}
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// progressBar renders a fixed-width bar for current/total
func progressBar(current, total, width int) string {
	filled := 0
	if total > 0 {
		filled = width * current / total
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
