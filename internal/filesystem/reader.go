package filesystem

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"github.com/zeebo/xxh3"
)

// chunkSize is the read size used when hashing file content
const chunkSize = 4096

// ReadFile reads a file and returns a File model with its digest
func ReadFile(fs afero.Fs, path, algorithm string) (*models.File, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}

	h, err := newHash(algorithm)
	if err != nil {
		return nil, err
	}
	h.Write(content)

	return &models.File{
		Path:      path,
		Name:      filepath.Base(path),
		Extension: GetExtension(path),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Content:   content,
		Hash:      hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// ReadPrefix reads at most n bytes from the start of a file
func ReadPrefix(fs afero.Fs, path string, n int) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}
	return buf[:read], nil
}

// Digest computes the hex digest of a file, reading it in 4096-byte chunks
func Digest(fs afero.Fs, path, algorithm string) (string, error) {
	sums, err := Digests(fs, path, []string{algorithm})
	if err != nil {
		return "", err
	}
	return sums[algorithm], nil
}

// Digests computes several digests of a file in a single pass
func Digests(fs afero.Fs, path string, algorithms []string) (map[string]string, error) {
	hashes := make(map[string]hash.Hash, len(algorithms))
	writers := make([]io.Writer, 0, len(algorithms))
	for _, alg := range algorithms {
		h, err := newHash(alg)
		if err != nil {
			return nil, err
		}
		hashes[alg] = h
		writers = append(writers, h)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}
	defer f.Close()

	if _, err := io.CopyBuffer(io.MultiWriter(writers...), f, make([]byte, chunkSize)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}

	sums := make(map[string]string, len(hashes))
	for alg, h := range hashes {
		sums[alg] = hex.EncodeToString(h.Sum(nil))
	}
	return sums, nil
}

// ContentKey returns a fast non-cryptographic key for content
func ContentKey(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}

// ContentSum streams a file through xxh3. It matches ContentKey on the same
// bytes without holding the file in memory.
func ContentSum(fs afero.Fs, path string) (uint64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, chunkSize)); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}
	return h.Sum64(), nil
}

func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "md5":
		return md5.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "sha256", "":
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported hash algorithm %q", models.ErrUsage, algorithm)
	}
}

// ParseSize parses size string (e.g., "650K", "1M") to bytes
func ParseSize(sizeStr string) int64 {
	if len(sizeStr) == 0 {
		return 0
	}

	// Get last character (unit)
	last := sizeStr[len(sizeStr)-1]
	var multiplier int64 = 1

	switch last {
	case 'K', 'k':
		multiplier = 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	}

	// Parse number
	var size int64
	fmt.Sscanf(sizeStr, "%d", &size)

	return size * multiplier
}
