package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/filesystem"
	"go.uber.org/zap"
)

var hashAlgorithms = []string{"md5", "sha1", "sha256"}

// FileHashes are the digests of one file
type FileHashes struct {
	Path   string `json:"path"`
	MD5    string `json:"md5"`
	SHA1   string `json:"sha1"`
	SHA256 string `json:"sha256"`
}

// collectHashes digests every file under root except the skipped paths.
// Unreadable files are logged and left out.
func collectHashes(fs afero.Fs, root string, exclude, skip []string, logger *zap.Logger) ([]FileHashes, error) {
	files, err := filesystem.NewWalker(fs, exclude, logger).SkipPaths(skip...).Files(root)
	if err != nil {
		return nil, err
	}

	out := make([]FileHashes, 0, len(files))
	for _, f := range files {
		sums, err := filesystem.Digests(fs, f.Path, hashAlgorithms)
		if err != nil {
			logger.Warn("Failed to hash file", zap.String("file", f.Path), zap.Error(err))
			continue
		}
		out = append(out, FileHashes{Path: f.Path, MD5: sums["md5"], SHA1: sums["sha1"], SHA256: sums["sha256"]})
	}
	return out, nil
}

// hashesCmd creates the hashes command
func hashesCmd() *cobra.Command {
	var (
		asJSON     bool
		outputFile string
		exclude    []string
	)

	cmd := &cobra.Command{
		Use:   "hashes <folder>",
		Short: "Print MD5, SHA-1 and SHA-256 of every file in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), func(cfg *config.Config) {
				if len(exclude) > 0 {
					cfg.Exclude = exclude
				}
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			spinner := startSpinner("Hashing files...")
			hashes, err := collectHashes(sess.fs, root, sess.cfg.Exclude, sess.cfg.ArtifactPaths(), sess.logger)
			stopSpinner(spinner)
			if err != nil {
				return err
			}

			if asJSON || outputFile != "" {
				data, err := json.MarshalIndent(hashes, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal hashes: %w", err)
				}
				data = append(data, '\n')
				if outputFile == "" {
					_, err = os.Stdout.Write(data)
					return err
				}
				if err := afero.WriteFile(sess.fs, outputFile, data, 0644); err != nil {
					return fmt.Errorf("failed to write hashes: %w", err)
				}
				fmt.Printf("  %sHashes:%s    %s%s%s\n", colorGray, colorReset, colorOrange, outputFile, colorReset)
				return nil
			}

			table := pterm.TableData{{"File", "MD5", "SHA1", "SHA256"}}
			for _, h := range hashes {
				rel, err := filepath.Rel(root, h.Path)
				if err != nil {
					rel = h.Path
				}
				table = append(table, []string{rel, h.MD5, h.SHA1, h.SHA256})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write JSON to a file")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directories to exclude (comma-separated)")

	return cmd
}
