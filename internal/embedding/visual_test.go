package embedding

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"golang.org/x/image/bmp"
)

func gradientImage(mirror bool) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			if mirror {
				v = uint8((63 - x) * 4)
			}
			img.Set(x, y, color.RGBA{R: v, G: 128, B: 255 - v, A: 255})
		}
	}
	return img
}

func uniformImage(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writeImage(t *testing.T, fs afero.Fs, path string, img image.Image, encode func(*bytes.Buffer, image.Image) error) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0644))
}

func encodePNG(buf *bytes.Buffer, img image.Image) error { return png.Encode(buf, img) }
func encodeBMP(buf *bytes.Buffer, img image.Image) error { return bmp.Encode(buf, img) }

func TestVisualProviders_FormatIndependent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeImage(t, fs, "/img/a.png", gradientImage(false), encodePNG)
	writeImage(t, fs, "/img/a.bmp", gradientImage(false), encodeBMP)

	grid := NewGridProvider(fs)
	g1 := embedOK(t, grid, "/img/a.png")
	g2 := embedOK(t, grid, "/img/a.bmp")
	assert.Len(t, g1, GridDims)
	assert.InDelta(t, 1.0, cosine(t, g1, g2), 1e-9)

	hist := NewHistogramProvider(fs)
	h1 := embedOK(t, hist, "/img/a.png")
	h2 := embedOK(t, hist, "/img/a.bmp")
	assert.Len(t, h1, HistogramDims)
	assert.InDelta(t, 1.0, cosine(t, h1, h2), 1e-9)
}

func TestVisualProviders_Mirror(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeImage(t, fs, "/img/a.png", gradientImage(false), encodePNG)
	writeImage(t, fs, "/img/b.png", gradientImage(true), encodePNG)

	grid := NewGridProvider(fs)
	hist := NewHistogramProvider(fs)

	// same colors, opposite layout
	assert.InDelta(t, 1.0, cosine(t, embedOK(t, hist, "/img/a.png"), embedOK(t, hist, "/img/b.png")), 1e-9)
	assert.Less(t, cosine(t, embedOK(t, grid, "/img/a.png"), embedOK(t, grid, "/img/b.png")), 0.5)
}

func TestHistogramVector_Uniform(t *testing.T) {
	vec := HistogramVector(uniformImage(color.RGBA{R: 255, A: 255}))
	// r=3, g=0, b=0
	assert.Equal(t, 1.0, vec[48])
}

func TestGridVector_UniformIsFlat(t *testing.T) {
	vec := GridVector(uniformImage(color.RGBA{R: 40, G: 90, B: 200, A: 255}))
	assert.Len(t, vec, GridDims)
	assert.Less(t, Variance(vec), 1e-4)
}

func TestVisualProviders_Unreadable(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/img/broken.png", []byte("not an image"), 0644)

	for _, p := range []Provider{NewGridProvider(fs), NewHistogramProvider(fs)} {
		res := p.Embed(context.Background(), "/img/broken.png")
		assert.ErrorIs(t, res.Err, models.ErrProviderFailure)
		assert.ErrorIs(t, res.Err, models.ErrUnreadableImage)
	}
}
