package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

type stubProvider struct {
	modality Modality
	vector   []float64
	err      error
	calls    int
}

func (s *stubProvider) Modality() Modality { return s.modality }

func (s *stubProvider) Embed(ctx context.Context, path string) Result {
	s.calls++
	if s.err != nil {
		return Fail(s.modality, s.err)
	}
	return Ok(append([]float64(nil), s.vector...))
}

func TestPlanFor(t *testing.T) {
	tests := []struct {
		fileType models.FileType
		want     Plan
		ok       bool
	}{
		{models.TypeImage, Hybrid(ModalityVisualGrid, ModalityVisualHistogram), true},
		{models.TypeText, Single(ModalityText), true},
		{models.TypeCode, Hybrid(ModalityText, ModalityCode), true},
		{models.TypeHashLike, Plan{}, false},
		{models.TypeBinary, Plan{}, false},
		{models.TypeUnknown, Plan{}, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.fileType), func(t *testing.T) {
			got, ok := PlanFor(tt.fileType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_EmbedPlan(t *testing.T) {
	ctx := context.Background()
	text := &stubProvider{modality: ModalityText, vector: []float64{1, 2}}
	code := &stubProvider{modality: ModalityCode, vector: []float64{3}}
	r := NewRegistry(text, code)

	t.Run("single", func(t *testing.T) {
		res := r.EmbedPlan(ctx, "a.txt", Single(ModalityText))
		require.True(t, res.IsOk())
		assert.Equal(t, []float64{1, 2}, res.Vector)
	})

	t.Run("hybrid concatenates", func(t *testing.T) {
		res := r.EmbedPlan(ctx, "a.go", Hybrid(ModalityText, ModalityCode))
		require.True(t, res.IsOk())
		assert.Equal(t, []float64{1, 2, 3}, res.Vector)
	})

	t.Run("hybrid fails when either half fails", func(t *testing.T) {
		boom := errors.New("boom")
		failing := NewRegistry(text, &stubProvider{modality: ModalityCode, err: boom})
		res := failing.EmbedPlan(ctx, "a.go", Hybrid(ModalityText, ModalityCode))
		assert.False(t, res.IsOk())
		assert.ErrorIs(t, res.Err, models.ErrProviderFailure)
		assert.ErrorIs(t, res.Err, boom)
	})

	t.Run("missing provider", func(t *testing.T) {
		res := r.EmbedPlan(ctx, "a.png", Single(ModalityVisualGrid))
		assert.ErrorIs(t, res.Err, models.ErrProviderFailure)
	})
}

func TestRegistry_Modalities(t *testing.T) {
	r := NewRegistry(
		&stubProvider{modality: ModalityText},
		&stubProvider{modality: ModalityCode},
		&stubProvider{modality: ModalityText},
	)
	assert.Equal(t, []Modality{ModalityCode, ModalityText}, r.Modalities())
}
