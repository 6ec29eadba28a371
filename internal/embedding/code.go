package embedding

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/spf13/afero"
)

const maxTokenValue = 64

// CodeProvider embeds source code as hashed lexer tokens: token types, typed
// token values and token-type bigrams. Layout and comments matter less
// than structure.
type CodeProvider struct {
	fs   afero.Fs
	dims int
}

// NewCodeProvider creates a code provider producing dims-length vectors
func NewCodeProvider(fs afero.Fs, dims int) *CodeProvider {
	return &CodeProvider{fs: fs, dims: dims}
}

func (p *CodeProvider) Modality() Modality { return ModalityCode }

// Embed tokenizes path with the lexer matching its name
func (p *CodeProvider) Embed(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return Fail(ModalityCode, err)
	}
	source, err := readText(p.fs, path)
	if err != nil {
		return Fail(ModalityCode, err)
	}
	vec, err := p.EmbedSource(filepath.Base(path), source)
	if err != nil {
		return Fail(ModalityCode, err)
	}
	return Ok(vec)
}

// EmbedSource embeds source text; name selects the lexer
func (p *CodeProvider) EmbedSource(name, source string) ([]float64, error) {
	lexer := lexers.Match(name)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil, err
	}

	hv := newHashedVector(p.dims)
	prev := "^"
	for tok := iter(); tok != chroma.EOF; tok = iter() {
		value := strings.TrimSpace(tok.Value)
		if value == "" {
			continue
		}
		if len(value) > maxTokenValue {
			value = value[:maxTokenValue]
		}
		typ := tok.Type.String()

		hv.add("k:"+typ, 1)
		hv.add("v:"+typ+":"+value, 1)
		hv.add("b:"+prev+">"+typ, 0.5)
		prev = typ
	}

	return hv.vector(), nil
}
