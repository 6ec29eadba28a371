// Package phash computes DCT-based perceptual hashes of images.
package phash

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"math"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	_ "golang.org/x/image/bmp" // register decoder
	xdraw "golang.org/x/image/draw"
)

const (
	// Length is the number of bits in a hash
	Length = 64

	sampleSize = 32
	blockSize  = 8
)

// Tier buckets a hash similarity
type Tier int

const (
	TierIdentical Tier = iota
	TierHighlySimilar
	TierNeedsDeepAnalysis
	TierDifferent
)

func (t Tier) String() string {
	switch t {
	case TierIdentical:
		return "IDENTICAL"
	case TierHighlySimilar:
		return "HIGHLY_SIMILAR"
	case TierNeedsDeepAnalysis:
		return "NEEDS_DEEP_ANALYSIS"
	default:
		return "DIFFERENT"
	}
}

// Analysis is the result of comparing two hashes
type Analysis struct {
	Tier       Tier
	Distance   int
	Similarity float64 // percent
}

// cosTable[k][n] = cos((2n+1)kπ / 2N) for the low-frequency rows only
var cosTable = func() [blockSize][sampleSize]float64 {
	var t [blockSize][sampleSize]float64
	for k := 0; k < blockSize; k++ {
		for n := 0; n < sampleSize; n++ {
			t[k][n] = math.Cos(float64(2*n+1) * float64(k) * math.Pi / (2 * sampleSize))
		}
	}
	return t
}()

// Engine computes hashes of images stored on fs
type Engine struct {
	fs afero.Fs
}

// NewEngine creates an engine reading from fs
func NewEngine(fs afero.Fs) *Engine {
	return &Engine{fs: fs}
}

// ComputeHash decodes the image at path and returns its 64-character bit string
func (e *Engine) ComputeHash(path string) (string, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrUnreadableImage, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrUnreadableImage, path, err)
	}

	return HashImage(img), nil
}

// HashImage hashes a decoded image: grayscale, 32x32, DCT, top-left 8x8
// thresholded at its median, row-major.
func HashImage(img image.Image) string {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)

	small := image.NewGray(image.Rect(0, 0, sampleSize, sampleSize))
	xdraw.BiLinear.Scale(small, small.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)

	coeffs := dctLowFrequency(small)
	median := medianOf(coeffs[:])

	var sb strings.Builder
	sb.Grow(Length)
	for _, c := range coeffs {
		if c > median {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// dctLowFrequency returns the orthonormal 2D DCT-II coefficients for the
// top-left 8x8 block in row-major order
func dctLowFrequency(img *image.Gray) [blockSize * blockSize]float64 {
	var pixels [sampleSize][sampleSize]float64
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			pixels[y][x] = float64(img.GrayAt(x, y).Y)
		}
	}

	scale := func(k int) float64 {
		if k == 0 {
			return math.Sqrt(1.0 / sampleSize)
		}
		return math.Sqrt(2.0 / sampleSize)
	}

	var out [blockSize * blockSize]float64
	for row := 0; row < blockSize; row++ {
		for col := 0; col < blockSize; col++ {
			var sum float64
			for y := 0; y < sampleSize; y++ {
				var inner float64
				for x := 0; x < sampleSize; x++ {
					inner += pixels[y][x] * cosTable[col][x]
				}
				sum += inner * cosTable[row][y]
			}
			out[row*blockSize+col] = scale(row) * scale(col) * sum
		}
	}
	return out
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// HammingDistance counts differing bit positions
func HammingDistance(h1, h2 string) (int, error) {
	if len(h1) != len(h2) {
		return 0, fmt.Errorf("%w: %d != %d", models.ErrLengthMismatch, len(h1), len(h2))
	}
	dist := 0
	for i := 0; i < len(h1); i++ {
		if h1[i] != h2[i] {
			dist++
		}
	}
	return dist, nil
}

// AnalyzeSimilarity buckets the distance between two hashes
func AnalyzeSimilarity(h1, h2 string) (Analysis, error) {
	dist, err := HammingDistance(h1, h2)
	if err != nil {
		return Analysis{}, err
	}
	if len(h1) == 0 {
		return Analysis{Tier: TierIdentical, Similarity: 100}, nil
	}

	similarity := (1 - float64(dist)/float64(len(h1))) * 100
	a := Analysis{Distance: dist, Similarity: similarity}
	switch {
	case similarity >= 98:
		a.Tier = TierIdentical
	case similarity >= 95:
		a.Tier = TierHighlySimilar
	case similarity >= 80:
		a.Tier = TierNeedsDeepAnalysis
	default:
		a.Tier = TierDifferent
	}
	return a, nil
}
