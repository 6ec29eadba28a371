// Package classifier maps paths to coarse content types.
package classifier

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/filesystem"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// SniffSize is how much of an extensionless file is probed for text
const SniffSize = 2048

var (
	textExtensions = map[string]bool{
		".txt": true, ".md": true, ".log": true, ".sh": true, ".bash": true, ".zsh": true,
		".conf": true, ".ini": true, ".cfg": true, ".profile": true, ".bashrc": true, ".zshrc": true,
		".py": true, ".c": true, ".cpp": true, ".java": true, ".js": true,
		".go": true, ".rs": true, ".rb": true, ".php": true, ".ts": true, ".h": true, ".hpp": true,
		".html": true, ".htm": true, ".css": true, ".json": true, ".yaml": true, ".yml": true,
		".xml": true, ".csv": true, ".toml": true,
	}
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
	}
	binaryExtensions = map[string]bool{
		".appimage": true, ".deb": true, ".rpm": true, ".tgz": true,
		".tar": true, ".gz": true, ".zip": true, ".bin": true, ".run": true,
	}
	codeExtensions = map[string]bool{
		".sh": true, ".py": true, ".c": true, ".cpp": true, ".java": true, ".js": true,
		".go": true, ".rs": true, ".rb": true, ".php": true, ".ts": true, ".h": true, ".hpp": true,
	}
	hashNameMarkers = []string{"hash", "md5", "sha256"}
)

// Classifier assigns FileType values. The only I/O it performs is the
// bounded content probe for files without an extension.
type Classifier struct {
	fs afero.Fs
}

// New creates a classifier reading from fs
func New(fs afero.Fs) *Classifier {
	return &Classifier{fs: fs}
}

// Classify returns image, text, binary or unknown
func (c *Classifier) Classify(path string) models.FileType {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, ".tar.gz") {
		return models.TypeBinary
	}

	ext := filepath.Ext(name)
	switch {
	case textExtensions[ext]:
		return models.TypeText
	case imageExtensions[ext]:
		return models.TypeImage
	case binaryExtensions[ext]:
		return models.TypeBinary
	case ext != "":
		return models.TypeUnknown
	}

	prefix, err := filesystem.ReadPrefix(c.fs, path, SniffSize)
	if err != nil {
		return models.TypeUnknown
	}
	if isText(prefix, len(prefix) == SniffSize) {
		return models.TypeText
	}
	return models.TypeUnknown
}

// Subtype splits text into code, text and hash-like. Other types pass through.
func Subtype(path string, fileType models.FileType) models.FileType {
	if fileType != models.TypeText {
		return fileType
	}

	name := strings.ToLower(filepath.Base(path))
	for _, marker := range hashNameMarkers {
		if strings.Contains(name, marker) {
			return models.TypeHashLike
		}
	}
	if codeExtensions[filepath.Ext(name)] {
		return models.TypeCode
	}
	return models.TypeText
}

// Record classifies a walked file
func (c *Classifier) Record(info *models.FileInfo) models.FileRecord {
	fileType := c.Classify(info.Path)
	return models.FileRecord{
		Path:    info.Path,
		Type:    fileType,
		Subtype: Subtype(info.Path, fileType),
		Size:    info.Size,
	}
}

// isText reports whether data decodes as UTF-8. A probe cut at the size
// limit may end inside a multi-byte rune; that tail is ignored.
func isText(data []byte, truncated bool) bool {
	if utf8.Valid(data) {
		return true
	}
	if !truncated {
		return false
	}
	for cut := 1; cut < utf8.UTFMax && cut <= len(data); cut++ {
		if utf8.Valid(data[:len(data)-cut]) {
			return !utf8.FullRune(data[len(data)-cut:])
		}
	}
	return false
}
