// Package logging builds the zap logger used by every command and the
// append-only command audit log.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates the process logger. Verbose mode uses the development
// encoder; otherwise only errors reach stderr. When cfg.File is set every
// record at info and above is also written to a rotating JSON file.
func NewLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		// Silent logger - only errors
		zcfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:         "json",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
		logger, err = zcfg.Build()
	}
	if err != nil {
		return nil, err
	}

	if cfg.File == "" {
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(newRotatingFile(cfg.File, cfg)),
		zap.InfoLevel,
	)

	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}

func newRotatingFile(path string, cfg config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB, // megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   true,
	}
}

// CommandLog appends one line per CLI invocation
type CommandLog struct {
	w   io.WriteCloser
	now func() time.Time
}

// OpenCommandLog opens the audit log at path, creating its directory
func OpenCommandLog(cfg config.LogConfig) (*CommandLog, error) {
	if cfg.CommandLog == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CommandLog), 0755); err != nil {
		return nil, fmt.Errorf("failed to create command log directory: %w", err)
	}
	return &CommandLog{w: newRotatingFile(cfg.CommandLog, cfg), now: time.Now}, nil
}

// Record writes "[YYYY-MM-DD HH:MM:SS] <command>". A nil log is a no-op.
func (c *CommandLog) Record(args []string) error {
	if c == nil {
		return nil
	}
	line := fmt.Sprintf("[%s] %s\n", c.now().Format("2006-01-02 15:04:05"), strings.TrimSpace(strings.Join(args, " ")))
	_, err := io.WriteString(c.w, line)
	return err
}

// Close closes the underlying file
func (c *CommandLog) Close() error {
	if c == nil {
		return nil
	}
	return c.w.Close()
}
