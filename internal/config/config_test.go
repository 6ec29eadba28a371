package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

func validConfig() *Config {
	return &Config{
		HashAlgorithm: "sha256",
		Scan:          ScanConfig{Threshold: 0.4, PHashSimilarity: 0.4, Format: "json"},
		Snapshot:      SnapshotConfig{Threshold: 0.999999},
		Compare:       CompareConfig{Threshold: 0.9},
		Tracker:       TrackerConfig{Interval: 30 * time.Second, Threshold: 0.999999},
		Embedding:     EmbeddingConfig{TextBackend: "local", CodeBackend: "local"},
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ReportsDir != "reports" {
		t.Errorf("LoadConfig() ReportsDir = %v, want reports", cfg.ReportsDir)
	}
	if cfg.Scan.Threshold != 0.40 {
		t.Errorf("LoadConfig() Scan.Threshold = %v, want 0.40", cfg.Scan.Threshold)
	}
	if cfg.Snapshot.Threshold != 0.999999 {
		t.Errorf("LoadConfig() Snapshot.Threshold = %v, want 0.999999", cfg.Snapshot.Threshold)
	}
	if cfg.Compare.Threshold != 0.9 {
		t.Errorf("LoadConfig() Compare.Threshold = %v, want 0.9", cfg.Compare.Threshold)
	}
	if cfg.Tracker.Interval != 30*time.Second {
		t.Errorf("LoadConfig() Tracker.Interval = %v, want 30s", cfg.Tracker.Interval)
	}
	if cfg.HashAlgorithm != "sha256" {
		t.Errorf("LoadConfig() HashAlgorithm = %v, want sha256", cfg.HashAlgorithm)
	}
	if cfg.Workers <= 0 {
		t.Errorf("LoadConfig() Workers = %v, want > 0", cfg.Workers)
	}
	if len(cfg.Exclude) == 0 {
		t.Error("LoadConfig() Exclude should have default values")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DUPLIHQ_SCAN_THRESHOLD", "0.75")
	t.Setenv("DUPLIHQ_TRACKER_INTERVAL", "5s")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Scan.Threshold != 0.75 {
		t.Errorf("Scan.Threshold = %v, want 0.75", cfg.Scan.Threshold)
	}
	if cfg.Tracker.Interval != 5*time.Second {
		t.Errorf("Tracker.Interval = %v, want 5s", cfg.Tracker.Interval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"Threshold above one", func(c *Config) { c.Scan.Threshold = 1.5 }, true},
		{"Negative threshold", func(c *Config) { c.Compare.Threshold = -0.1 }, true},
		{"Unknown algorithm", func(c *Config) { c.HashAlgorithm = "crc32" }, true},
		{"Unknown format", func(c *Config) { c.Scan.Format = "xml" }, true},
		{"Unknown backend", func(c *Config) { c.Embedding.CodeBackend = "openai" }, true},
		{"Zero interval", func(c *Config) { c.Tracker.Interval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrUsage) {
				t.Errorf("Validate() error = %v, want ErrUsage", err)
			}
		})
	}
}

func TestPHashMaxDistance(t *testing.T) {
	cfg := validConfig()
	if got := cfg.PHashMaxDistance(64); got != 38 {
		t.Errorf("PHashMaxDistance(64) = %d, want 38", got)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Scan.Threshold != 0.40 {
		t.Errorf("Scan.Threshold = %v, want 0.40", cfg.Scan.Threshold)
	}
	if cfg.Tracker.Interval != 30*time.Second {
		t.Errorf("Tracker.Interval = %v, want 30s", cfg.Tracker.Interval)
	}
}

func TestArtifactPaths(t *testing.T) {
	cfg := validConfig()
	cfg.ReportsDir = "/case/reports"
	cfg.Log = LogConfig{File: "/var/log/duplihq.log"}
	cfg.Cache = CacheConfig{Enabled: false, Path: "/case/cache.db"}

	got := cfg.ArtifactPaths()
	want := []string{"/case/reports", "/var/log/duplihq.log"}
	if len(got) != len(want) {
		t.Fatalf("ArtifactPaths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ArtifactPaths()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	cfg.Cache.Enabled = true
	cfg.Scan.OutputFile = "/case/out.json"
	got = cfg.ArtifactPaths()
	if n := len(got); n != 4 || got[2] != "/case/cache.db" || got[3] != "/case/out.json" {
		t.Errorf("ArtifactPaths() = %v, want cache and output file appended", got)
	}

	cfg.ReportsDir = "reports"
	if got := cfg.ArtifactPaths()[0]; !filepath.IsAbs(got) {
		t.Errorf("ArtifactPaths()[0] = %s, want an absolute path", got)
	}
}
