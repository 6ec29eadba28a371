package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// Walker walks a folder tree on an afero filesystem
type Walker struct {
	fs      afero.Fs
	logger  *zap.Logger
	exclude map[string]bool
	skip    map[string]bool // absolute paths, files or directories
}

// NewWalker creates a new filesystem walker
func NewWalker(fs afero.Fs, exclude []string, logger *zap.Logger) *Walker {
	// Build exclude map for fast lookup
	excludeSet := make(map[string]bool)
	for _, dir := range exclude {
		excludeSet[dir] = true
	}

	return &Walker{
		fs:      fs,
		logger:  logger,
		exclude: excludeSet,
		skip:    make(map[string]bool),
	}
}

// SkipPaths excludes specific files or directory trees, such as the tool's
// own artifact directory when it sits inside the walked folder
func (w *Walker) SkipPaths(paths ...string) *Walker {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		w.skip[filepath.Clean(p)] = true
	}
	return w
}

// Walk recursively walks the directory tree in lexical order
func (w *Walker) Walk(root string, callback func(*models.FileInfo) error) error {
	return afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil // Continue walking
		}

		// Get relative path
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			relPath = path
		}

		if w.skip[filepath.Clean(path)] {
			w.logger.Debug("Skipping artifact path", zap.String("path", path))
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip excluded directories
		if info.IsDir() && relPath != "." {
			if w.shouldExclude(info.Name(), relPath) {
				w.logger.Debug("Skipping excluded directory", zap.String("path", relPath))
				return filepath.SkipDir
			}
		}

		return callback(&models.FileInfo{
			Path:     path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			IsDir:    info.IsDir(),
			IsHidden: isHidden(info.Name()),
		})
	})
}

// Files returns every regular file below root
func (w *Walker) Files(root string) ([]*models.FileInfo, error) {
	var files []*models.FileInfo
	err := w.Walk(root, func(fi *models.FileInfo) error {
		if !fi.IsDir {
			files = append(files, fi)
		}
		return nil
	})
	return files, err
}

// shouldExclude checks if a directory should be excluded
func (w *Walker) shouldExclude(name, path string) bool {
	// Check exact match
	if w.exclude[name] {
		return true
	}

	// Check if path contains excluded directory
	parts := strings.Split(path, string(os.PathSeparator))
	for _, part := range parts {
		if w.exclude[part] {
			return true
		}
	}

	return false
}

// isHidden checks if a file is hidden
func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// GetExtension returns the file extension without dot
func GetExtension(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
