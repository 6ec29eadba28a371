// Package fingerprint computes per-file fingerprints and folder snapshots.
package fingerprint

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/classifier"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/filesystem"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// Options tunes a Store
type Options struct {
	Algorithm string   // digest used for HASH entries
	MaxSize   int64    // files above this size are hashed, 0 means no limit
	Exclude   []string // directory names skipped by the walk
	Skip      []string // files or directories skipped by absolute path
}

// Store fingerprints files: an embedding when a provider can serve the file,
// a content digest otherwise
type Store struct {
	fs         afero.Fs
	walker     *filesystem.Walker
	classifier *classifier.Classifier
	registry   *embedding.Registry
	opts       Options
	logger     *zap.Logger
	now        func() time.Time
}

// NewStore creates a fingerprint store
func NewStore(fs afero.Fs, registry *embedding.Registry, opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Algorithm == "" {
		opts.Algorithm = "sha256"
	}
	return &Store{
		fs:         fs,
		walker:     filesystem.NewWalker(fs, opts.Exclude, logger).SkipPaths(opts.Skip...),
		classifier: classifier.New(fs),
		registry:   registry,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// ComputeFingerprint returns the fingerprint of one classified file. Provider
// failures fall back to a digest; only a failed digest is an error.
// Embeddings carry digest lanes so any content change is visible to the
// differ.
func (s *Store) ComputeFingerprint(ctx context.Context, rec models.FileRecord) (models.FingerprintEntry, error) {
	if plan, ok := embedding.PlanFor(rec.Subtype); ok && s.withinLimit(rec.Size) {
		res := s.registry.EmbedPlan(ctx, rec.Path, plan)
		if res.IsOk() {
			sum, err := filesystem.ContentSum(s.fs, rec.Path)
			if err != nil {
				return models.FingerprintEntry{}, err
			}
			return models.EmbeddingEntry(withDigestLanes(res.Vector, sum)), nil
		}
		s.logger.Debug("Embedding failed, falling back to hash",
			zap.String("path", rec.Path),
			zap.String("plan", plan.String()),
			zap.Error(res.Err))
	}

	digest, err := filesystem.Digest(s.fs, rec.Path, s.opts.Algorithm)
	if err != nil {
		return models.FingerprintEntry{}, err
	}
	return models.HashEntry(digest), nil
}

func (s *Store) withinLimit(size int64) bool {
	return s.opts.MaxSize <= 0 || size <= s.opts.MaxSize
}

// TakeSnapshot fingerprints every file below folder. A file that cannot be
// fingerprinted is logged and left out.
func (s *Store) TakeSnapshot(ctx context.Context, folder string) (*models.Snapshot, error) {
	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder: %w", err)
	}
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", models.ErrUsage, root)
	}

	snapshot := models.NewSnapshot(root, s.now().Truncate(time.Second))

	files, err := s.walker.Files(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	for _, fi := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := s.classifier.Record(fi)
		entry, err := s.ComputeFingerprint(ctx, rec)
		if err != nil {
			s.logger.Warn("Skipping file", zap.String("path", fi.Path), zap.Error(err))
			continue
		}
		snapshot.Entries[fi.Path] = entry
	}

	s.logger.Debug("Snapshot taken",
		zap.String("folder", root),
		zap.Int("entries", snapshot.Len()),
		zap.Int("walked", len(files)))

	return snapshot, nil
}
