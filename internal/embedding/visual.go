package embedding

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	_ "golang.org/x/image/bmp" // register decoder
	xdraw "golang.org/x/image/draw"
)

const (
	gridSide       = 16
	histogramBins  = 4
	GridDims       = gridSide * gridSide * 3
	HistogramDims  = histogramBins * histogramBins * histogramBins
	histogramShift = 6 // 256 / 4 bins per channel
)

// GridProvider embeds an image as a 16x16 RGB thumbnail with each channel
// centered on its mean. It captures layout.
type GridProvider struct {
	fs afero.Fs
}

// NewGridProvider creates a layout-sensitive image provider
func NewGridProvider(fs afero.Fs) *GridProvider {
	return &GridProvider{fs: fs}
}

func (p *GridProvider) Modality() Modality { return ModalityVisualGrid }

func (p *GridProvider) Embed(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return Fail(ModalityVisualGrid, err)
	}
	img, err := decodeImage(p.fs, path)
	if err != nil {
		return Fail(ModalityVisualGrid, err)
	}
	return Ok(GridVector(img))
}

// GridVector computes the grid embedding of a decoded image
func GridVector(img image.Image) []float64 {
	rgba := toRGBA(img)
	thumb := image.NewRGBA(image.Rect(0, 0, gridSide, gridSide))
	xdraw.BiLinear.Scale(thumb, thumb.Bounds(), rgba, rgba.Bounds(), xdraw.Src, nil)

	vec := make([]float64, GridDims)
	var means [3]float64
	for y := 0; y < gridSide; y++ {
		for x := 0; x < gridSide; x++ {
			c := thumb.RGBAAt(x, y)
			base := (y*gridSide + x) * 3
			for ch, v := range [3]uint8{c.R, c.G, c.B} {
				vec[base+ch] = float64(v) / 255
				means[ch] += float64(v) / 255
			}
		}
	}
	for ch := range means {
		means[ch] /= gridSide * gridSide
	}
	for i := range vec {
		vec[i] -= means[i%3]
	}
	return vec
}

// HistogramProvider embeds an image as a coarse RGB color histogram. It
// ignores layout entirely.
type HistogramProvider struct {
	fs afero.Fs
}

// NewHistogramProvider creates a color-distribution image provider
func NewHistogramProvider(fs afero.Fs) *HistogramProvider {
	return &HistogramProvider{fs: fs}
}

func (p *HistogramProvider) Modality() Modality { return ModalityVisualHistogram }

func (p *HistogramProvider) Embed(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return Fail(ModalityVisualHistogram, err)
	}
	img, err := decodeImage(p.fs, path)
	if err != nil {
		return Fail(ModalityVisualHistogram, err)
	}
	return Ok(HistogramVector(img))
}

// HistogramVector computes the histogram embedding of a decoded image
func HistogramVector(img image.Image) []float64 {
	rgba := toRGBA(img)
	vec := make([]float64, HistogramDims)
	b := rgba.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := rgba.RGBAAt(x, y)
			r := int(c.R) >> histogramShift
			g := int(c.G) >> histogramShift
			bl := int(c.B) >> histogramShift
			vec[(r*histogramBins+g)*histogramBins+bl]++
		}
	}
	return normalizeL1(vec)
}

func decodeImage(fs afero.Fs, path string) (image.Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableImage, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableImage, path, err)
	}
	return img, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
