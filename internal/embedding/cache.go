package embedding

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/filesystem"
	"go.uber.org/zap"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS embeddings (
	bucket      TEXT NOT NULL,
	content_key TEXT NOT NULL,
	dims        INTEGER NOT NULL,
	vector      BLOB NOT NULL,
	created_at  DATETIME NOT NULL,
	PRIMARY KEY (bucket, content_key)
);`

// Cache stores embeddings keyed by bucket and content hash. A bucket names the
// modality together with the backend that produced it.
type Cache struct {
	db *sqlx.DB
}

type cacheRow struct {
	Dims   int    `db:"dims"`
	Vector []byte `db:"vector"`
}

// OpenCache opens or creates the cache database at path
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	// sqlite serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database connection
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached vector, if any
func (c *Cache) Get(ctx context.Context, bucket, key string) ([]float64, bool, error) {
	var row cacheRow
	err := c.db.GetContext(ctx, &row,
		`SELECT dims, vector FROM embeddings WHERE bucket = ? AND content_key = ?`,
		bucket, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}

	vec, err := decodeVector(row.Vector)
	if err != nil || len(vec) != row.Dims {
		// stale or damaged row, treat as a miss
		return nil, false, nil
	}
	return vec, true, nil
}

// Put stores a vector, replacing any previous value
func (c *Cache) Put(ctx context.Context, bucket, key string, vec []float64) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (bucket, content_key, dims, vector, created_at) VALUES (?, ?, ?, ?, ?)`,
		bucket, key, len(vec), encodeVector(vec), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Count returns the number of cached vectors in bucket
func (c *Cache) Count(ctx context.Context, bucket string) (int, error) {
	var n int
	err := c.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM embeddings WHERE bucket = ?`, bucket)
	return n, err
}

func encodeVector(vec []float64) []byte {
	buf := make([]byte, 8*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 8", len(buf))
	}
	vec := make([]float64, len(buf)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return vec, nil
}

// CachedProvider serves vectors from a Cache and falls through to the
// wrapped provider on a miss. Only successful results are stored.
type CachedProvider struct {
	inner  Provider
	cache  *Cache
	bucket string
	fs     afero.Fs
	logger *zap.Logger
}

// NewCachedProvider wraps inner with cache. backend distinguishes vectors of
// the same modality produced by different models.
func NewCachedProvider(inner Provider, backend string, cache *Cache, fs afero.Fs, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		bucket: fmt.Sprintf("%s@%s", inner.Modality(), backend),
		fs:     fs,
		logger: logger,
	}
}

func (p *CachedProvider) Modality() Modality { return p.inner.Modality() }

// Bucket is the cache partition this provider reads and writes
func (p *CachedProvider) Bucket() string { return p.bucket }

func (p *CachedProvider) Embed(ctx context.Context, path string) Result {
	content, err := afero.ReadFile(p.fs, path)
	if err != nil {
		// let the provider report the read failure in its own terms
		return p.inner.Embed(ctx, path)
	}
	key := filesystem.ContentKey(content)

	if vec, ok, err := p.cache.Get(ctx, p.bucket, key); err != nil {
		p.logger.Warn("Embedding cache lookup failed", zap.String("path", path), zap.Error(err))
	} else if ok {
		return Ok(vec)
	}

	res := p.inner.Embed(ctx, path)
	if !res.IsOk() {
		return res
	}
	if err := p.cache.Put(ctx, p.bucket, key, res.Vector); err != nil {
		p.logger.Warn("Embedding cache store failed", zap.String("path", path), zap.Error(err))
	}
	return res
}
