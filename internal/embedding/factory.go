package embedding

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"go.uber.org/zap"
)

// NewRegistryFromConfig builds the registry for a run. Images always use the
// local visual providers; text and code use the configured backend. When
// cache is non-nil every provider is wrapped with it.
func NewRegistryFromConfig(ctx context.Context, cfg config.EmbeddingConfig, fs afero.Fs, cache *Cache, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	text, err := textualProvider(ctx, cfg, cfg.TextBackend, ModalityText, fs)
	if err != nil {
		return nil, err
	}
	code, err := textualProvider(ctx, cfg, cfg.CodeBackend, ModalityCode, fs)
	if err != nil {
		return nil, err
	}

	backends := map[Modality]string{
		ModalityVisualGrid:      "local",
		ModalityVisualHistogram: "local",
		ModalityText:            backendID(cfg, cfg.TextBackend, ModalityText),
		ModalityCode:            backendID(cfg, cfg.CodeBackend, ModalityCode),
	}

	providers := []Provider{NewGridProvider(fs), NewHistogramProvider(fs), text, code}
	registry := NewRegistry()
	for _, p := range providers {
		if cache != nil {
			cached := NewCachedProvider(p, backends[p.Modality()], cache, fs, logger)
			if n, err := cache.Count(ctx, cached.Bucket()); err != nil {
				logger.Warn("Embedding cache unreadable", zap.String("bucket", cached.Bucket()), zap.Error(err))
			} else {
				logger.Debug("Embedding cache bucket", zap.String("bucket", cached.Bucket()), zap.Int("entries", n))
			}
			p = cached
		}
		registry.Register(p)
	}

	logger.Debug("Embedding registry ready",
		zap.String("text_backend", backends[ModalityText]),
		zap.String("code_backend", backends[ModalityCode]),
		zap.Bool("cache", cache != nil))

	return registry, nil
}

func textualProvider(ctx context.Context, cfg config.EmbeddingConfig, backend string, modality Modality, fs afero.Fs) (Provider, error) {
	switch backend {
	case "", "local":
		if modality == ModalityCode {
			return NewCodeProvider(fs, cfg.CodeDims), nil
		}
		return NewTextProvider(fs, cfg.TextDims, cfg.StripMarkup), nil
	case "ollama":
		return NewOllamaProvider(fs, modality, cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout), nil
	case "vertex":
		p, err := NewVertexProvider(ctx, fs, modality, cfg.Vertex.Project, cfg.Vertex.Location, cfg.Vertex.Model)
		if err != nil {
			return nil, fmt.Errorf("vertex %s provider: %w", modality, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown %s backend %q", modality, backend)
	}
}

// backendID names the model behind a modality for cache bucketing. Local
// providers include their dimension since it changes the vectors.
func backendID(cfg config.EmbeddingConfig, backend string, modality Modality) string {
	switch backend {
	case "ollama":
		return "ollama:" + cfg.Ollama.Model
	case "vertex":
		return "vertex:" + cfg.Vertex.Model
	}
	if modality == ModalityCode {
		return fmt.Sprintf("local:%d", cfg.CodeDims)
	}
	return fmt.Sprintf("local:%d:markup=%t", cfg.TextDims, cfg.StripMarkup)
}
