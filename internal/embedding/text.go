package embedding

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

const (
	wordWeight    = 1.0
	trigramWeight = 0.5
)

// TextProvider embeds natural-language text as hashed word unigrams plus raw
// rune trigrams. The trigrams keep whitespace and case so that any edit moves
// the vector.
type TextProvider struct {
	fs          afero.Fs
	dims        int
	stripMarkup bool
}

// NewTextProvider creates a text provider producing dims-length vectors
func NewTextProvider(fs afero.Fs, dims int, stripMarkup bool) *TextProvider {
	return &TextProvider{fs: fs, dims: dims, stripMarkup: stripMarkup}
}

func (p *TextProvider) Modality() Modality { return ModalityText }

// Embed reads path as UTF-8 text and embeds it
func (p *TextProvider) Embed(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return Fail(ModalityText, err)
	}
	text, err := readText(p.fs, path)
	if err != nil {
		return Fail(ModalityText, err)
	}
	if p.stripMarkup && looksLikeMarkup([]byte(text)) {
		if stripped, err := extractText([]byte(text)); err == nil {
			text = stripped
		}
	}
	return Ok(p.EmbedText(text))
}

// EmbedText embeds an in-memory string
func (p *TextProvider) EmbedText(text string) []float64 {
	hv := newHashedVector(p.dims)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		hv.add("w:"+w, wordWeight)
	}

	runes := []rune(text)
	for i := 0; i+3 <= len(runes); i++ {
		hv.add("t:"+string(runes[i:i+3]), trigramWeight)
	}
	if len(runes) > 0 && len(runes) < 3 {
		hv.add("t:"+string(runes), trigramWeight)
	}

	return hv.vector()
}

// readText loads a file that must decode as UTF-8
func readText(fs afero.Fs, path string) (string, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s: not valid UTF-8", models.ErrUnreadableFile, path)
	}
	return string(content), nil
}
