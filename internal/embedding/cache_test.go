package embedding

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCache_GetPut(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)

	_, ok, err := cache.Get(ctx, "text@local", "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	vec := []float64{0.125, -3.5, 1e-9}
	require.NoError(t, cache.Put(ctx, "text@local", "k1", vec))

	got, ok, err := cache.Get(ctx, "text@local", "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, vec, got)

	// other buckets do not see it
	_, ok, _ = cache.Get(ctx, "text@ollama", "k1")
	assert.False(t, ok)
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/a.txt", []byte("same content"), 0644)
	afero.WriteFile(fs, "/b.txt", []byte("same content"), 0644)

	cache := openTestCache(t)
	inner := &stubProvider{modality: ModalityText, vector: []float64{1, 0, 2}}
	p := NewCachedProvider(inner, "stub", cache, fs, nil)

	first := p.Embed(ctx, "/a.txt")
	require.True(t, first.IsOk())
	second := p.Embed(ctx, "/b.txt")
	require.True(t, second.IsOk())

	assert.Equal(t, first.Vector, second.Vector)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, ModalityText, p.Modality())

	n, err := cache.Count(ctx, "text@stub")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCachedProvider_FailuresNotStored(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/a.go", []byte("package a"), 0644)

	cache := openTestCache(t)
	inner := &stubProvider{modality: ModalityCode, err: errors.New("backend down")}
	p := NewCachedProvider(inner, "stub", cache, fs, nil)

	assert.False(t, p.Embed(ctx, "/a.go").IsOk())
	assert.False(t, p.Embed(ctx, "/a.go").IsOk())
	assert.Equal(t, 2, inner.calls)

	n, err := cache.Count(ctx, "code@stub")
	require.NoError(t, err)
	assert.Zero(t, n)
}
