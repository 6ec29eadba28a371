package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// Config represents the detector configuration
type Config struct {
	// Walk settings
	ReportsDir    string   `mapstructure:"reports_dir"`    // root of all written artifacts
	Exclude       []string `mapstructure:"exclude"`        // directories to exclude
	Workers       int      `mapstructure:"workers"`        // pair comparison workers
	MaxSize       string   `mapstructure:"max_size"`       // larger files are fingerprinted by hash only
	HashAlgorithm string   `mapstructure:"hash_algorithm"` // md5, sha1, sha256

	Scan      ScanConfig      `mapstructure:"scan"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Compare   CompareConfig   `mapstructure:"compare"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
	AI        AIConfig        `mapstructure:"ai"`
}

// ScanConfig holds duplicate scan settings
type ScanConfig struct {
	Threshold       float64 `mapstructure:"threshold"`        // minimum fused similarity for NEAR_DUPLICATE
	PHashSimilarity float64 `mapstructure:"phash_similarity"` // minimum pHash bit similarity before embeddings run
	MinTextLength   int     `mapstructure:"min_text_length"`  // trimmed characters required for text/code pairs
	MinVariance     float64 `mapstructure:"min_variance"`     // embeddings below this variance are degenerate
	Format          string  `mapstructure:"format"`           // json, yaml, text, md
	OutputFile      string  `mapstructure:"output_file"`      // report path override
}

// SnapshotConfig holds snapshot diff settings
type SnapshotConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// CompareConfig holds two-file compare settings
type CompareConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// TrackerConfig holds polling loop settings
type TrackerConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Threshold float64       `mapstructure:"threshold"`
	Listen    string        `mapstructure:"listen"` // status endpoint address, empty disables it
}

// EmbeddingConfig selects and tunes embedding providers
type EmbeddingConfig struct {
	TextDims    int          `mapstructure:"text_dims"`
	CodeDims    int          `mapstructure:"code_dims"`
	StripMarkup bool         `mapstructure:"strip_markup"` // strip HTML before text embedding
	TextBackend string       `mapstructure:"text_backend"` // local, ollama, vertex
	CodeBackend string       `mapstructure:"code_backend"` // local, ollama, vertex
	Ollama      OllamaConfig `mapstructure:"ollama"`
	Vertex      VertexConfig `mapstructure:"vertex"`
}

// OllamaConfig points at an Ollama embeddings endpoint
type OllamaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// VertexConfig points at a Vertex AI text embedding model
type VertexConfig struct {
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
	Model    string `mapstructure:"model"`
}

// CacheConfig controls the persistent embedding cache
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig controls the optional rotating log file and the command log
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	CommandLog string `mapstructure:"command_log"`
}

// AIConfig holds near-duplicate review configuration
type AIConfig struct {
	Enabled  bool   `mapstructure:"enabled"`   // review NEAR_DUPLICATE text/code pairs
	Model    string `mapstructure:"model"`     // haiku, sonnet, opus
	APIToken string `mapstructure:"token"`     // Anthropic API token
	MaxPairs int    `mapstructure:"max_pairs"` // cost control limit
	Timeout  int    `mapstructure:"timeout"`   // seconds per request
}

var (
	validFormats    = []string{"json", "yaml", "text", "md"}
	validAlgorithms = []string{"md5", "sha1", "sha256"}
	validBackends   = []string{"local", "ollama", "vertex"}
)

// LoadConfig loads configuration from .env, an optional config file,
// environment variables and defaults
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Read environment variables
	v.SetEnvPrefix("DUPLIHQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	thresholds := []struct {
		key   string
		value float64
	}{
		{"scan.threshold", c.Scan.Threshold},
		{"scan.phash_similarity", c.Scan.PHashSimilarity},
		{"snapshot.threshold", c.Snapshot.Threshold},
		{"compare.threshold", c.Compare.Threshold},
		{"tracker.threshold", c.Tracker.Threshold},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 1 {
			return fmt.Errorf("%w: %s must be within [0, 1] (got: %v)", models.ErrUsage, th.key, th.value)
		}
	}

	if !contains(validAlgorithms, c.HashAlgorithm) {
		return fmt.Errorf("%w: hash_algorithm must be one of: %s (got: %s)",
			models.ErrUsage, strings.Join(validAlgorithms, ", "), c.HashAlgorithm)
	}
	if !contains(validFormats, c.Scan.Format) {
		return fmt.Errorf("%w: scan.format must be one of: %s (got: %s)",
			models.ErrUsage, strings.Join(validFormats, ", "), c.Scan.Format)
	}
	for key, backend := range map[string]string{
		"embedding.text_backend": c.Embedding.TextBackend,
		"embedding.code_backend": c.Embedding.CodeBackend,
	} {
		if !contains(validBackends, backend) {
			return fmt.Errorf("%w: %s must be one of: %s (got: %s)",
				models.ErrUsage, key, strings.Join(validBackends, ", "), backend)
		}
	}
	if c.Tracker.Interval <= 0 {
		return fmt.Errorf("%w: tracker.interval must be positive (got: %s)", models.ErrUsage, c.Tracker.Interval)
	}

	return nil
}

// PHashMaxDistance converts the pHash similarity gate into a bit distance
func (c *Config) PHashMaxDistance(hashLength int) int {
	return int((1 - c.Scan.PHashSimilarity) * float64(hashLength))
}

// ArtifactPaths lists every path the tool itself writes to. Walks skip them
// so a reports directory inside a scanned folder never shows up as content.
func (c *Config) ArtifactPaths() []string {
	paths := []string{c.ReportsDir, c.Log.File, c.Log.CommandLog}
	if c.Cache.Enabled {
		paths = append(paths, c.Cache.Path)
	}
	if c.Scan.OutputFile != "" {
		paths = append(paths, c.Scan.OutputFile)
	}

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
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

// Default returns the built-in configuration without reading files or the
// environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reports_dir", "reports")
	v.SetDefault("exclude", []string{".git", "node_modules", "vendor", ".svn", ".hg"})
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("max_size", "50M")
	v.SetDefault("hash_algorithm", "sha256")

	v.SetDefault("scan.threshold", 0.40)
	v.SetDefault("scan.phash_similarity", 0.40)
	v.SetDefault("scan.min_text_length", 16)
	v.SetDefault("scan.min_variance", 1e-12)
	v.SetDefault("scan.format", "json")
	v.SetDefault("scan.output_file", "")

	v.SetDefault("snapshot.threshold", 0.999999)
	v.SetDefault("compare.threshold", 0.9)

	v.SetDefault("tracker.interval", 30*time.Second)
	v.SetDefault("tracker.threshold", 0.999999)
	v.SetDefault("tracker.listen", "")

	v.SetDefault("embedding.text_dims", 512)
	v.SetDefault("embedding.code_dims", 256)
	v.SetDefault("embedding.strip_markup", true)
	v.SetDefault("embedding.text_backend", "local")
	v.SetDefault("embedding.code_backend", "local")
	v.SetDefault("embedding.ollama.base_url", "http://localhost:11434/api")
	v.SetDefault("embedding.ollama.model", "nomic-embed-text")
	v.SetDefault("embedding.ollama.timeout", 60*time.Second)
	v.SetDefault("embedding.vertex.project", "")
	v.SetDefault("embedding.vertex.location", "us-central1")
	v.SetDefault("embedding.vertex.model", "text-embedding-005")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "reports/cache/embeddings.db")

	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.command_log", "logs/cli_commands.log")

	// AI defaults
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "sonnet")
	v.SetDefault("ai.token", "")
	v.SetDefault("ai.max_pairs", 20)
	v.SetDefault("ai.timeout", 30)
}
