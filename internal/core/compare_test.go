package core

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/classifier"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

func compareFixture(t *testing.T) (afero.Fs, *embedding.Registry, *classifier.Classifier) {
	t.Helper()
	fs := afero.NewMemMapFs()
	text := "Witness statement recorded at the scene on the evening of March 3."
	require.NoError(t, afero.WriteFile(fs, "/case/a.txt", []byte(text), 0644))
	require.NoError(t, afero.WriteFile(fs, "/case/b.txt", []byte(text), 0644))
	require.NoError(t, afero.WriteFile(fs, "/case/c.txt", []byte("Unrelated invoice for office chairs and two desks."), 0644))
	require.NoError(t, afero.WriteFile(fs, "/case/evidence.zip", []byte("PK\x03\x04\x00\x00\x00\x00"), 0644))
	writePNG(t, fs, "/case/a.png", patternImage(0))
	writePNG(t, fs, "/case/b.png", patternImage(0))
	return fs, testRegistry(fs), classifier.New(fs)
}

func TestCompare_UsageErrors(t *testing.T) {
	_, registry, cls := compareFixture(t)

	tests := []struct {
		name string
		opts CompareOptions
	}{
		{"both model and auto", CompareOptions{Modality: embedding.ModalityText, Auto: true, Threshold: 0.9}},
		{"neither model nor auto", CompareOptions{Threshold: 0.9}},
		{"unknown model", CompareOptions{Modality: "audio", Threshold: 0.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compare(context.Background(), registry, cls, "/case/a.txt", "/case/b.txt", tt.opts)
			assert.True(t, errors.Is(err, models.ErrUsage), "err = %v", err)
		})
	}
}

func TestCompare_AutoUnsupportedType(t *testing.T) {
	_, registry, cls := compareFixture(t)

	_, err := Compare(context.Background(), registry, cls, "/case/evidence.zip", "/case/a.txt", CompareOptions{Auto: true, Threshold: 0.9})
	assert.ErrorIs(t, err, models.ErrUsage)
}

func TestCompare_Auto(t *testing.T) {
	_, registry, cls := compareFixture(t)

	result, err := Compare(context.Background(), registry, cls, "/case/a.png", "/case/b.png", CompareOptions{Auto: true, Threshold: 0.9})
	require.NoError(t, err)
	assert.Equal(t, embedding.ModalityVisualGrid, result.Modality)
	assert.InDelta(t, 1.0, result.Similarity, 1e-9)
	assert.True(t, result.Similar)

	result, err = Compare(context.Background(), registry, cls, "/case/a.txt", "/case/c.txt", CompareOptions{Auto: true, Threshold: 0.9})
	require.NoError(t, err)
	assert.Equal(t, embedding.ModalityText, result.Modality)
	assert.False(t, result.Similar)
}

func TestCompare_ThresholdIsStrict(t *testing.T) {
	_, registry, cls := compareFixture(t)

	result, err := Compare(context.Background(), registry, cls, "/case/a.txt", "/case/b.txt",
		CompareOptions{Modality: embedding.ModalityText, Threshold: 1.0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Similarity, 1e-9)
	assert.False(t, result.Similar, "a score equal to the threshold is not similar")
}

func TestCompare_EmbedFailure(t *testing.T) {
	fs, registry, cls := compareFixture(t)
	require.NoError(t, afero.WriteFile(fs, "/case/broken.png", []byte("garbage"), 0644))

	_, err := Compare(context.Background(), registry, cls, "/case/a.png", "/case/broken.png",
		CompareOptions{Modality: embedding.ModalityVisualHistogram, Threshold: 0.9})
	assert.ErrorIs(t, err, models.ErrUnreadableImage)
}
