package embedding

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

func embedOK(t *testing.T, p Provider, path string) []float64 {
	t.Helper()
	res := p.Embed(context.Background(), path)
	require.NoError(t, res.Err)
	return res.Vector
}

func cosine(t *testing.T, a, b []float64) float64 {
	t.Helper()
	sim, err := Cosine(a, b)
	require.NoError(t, err)
	return sim
}

func TestTextProvider(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := "The quarterly report shows revenue growth across all regions."
	afero.WriteFile(fs, "/docs/a.txt", []byte(base), 0644)
	afero.WriteFile(fs, "/docs/b.txt", []byte(base), 0644)
	afero.WriteFile(fs, "/docs/c.txt", []byte("The quarterly report shows revenue growth across most regions."), 0644)
	afero.WriteFile(fs, "/docs/d.txt", []byte("Install the package, then restart the daemon before login."), 0644)

	p := NewTextProvider(fs, 512, false)
	a := embedOK(t, p, "/docs/a.txt")
	b := embedOK(t, p, "/docs/b.txt")
	c := embedOK(t, p, "/docs/c.txt")
	d := embedOK(t, p, "/docs/d.txt")

	assert.Len(t, a, 512)
	assert.InDelta(t, 1.0, cosine(t, a, b), 1e-9)

	edited := cosine(t, a, c)
	assert.Less(t, edited, 1.0)
	assert.Greater(t, edited, 0.7)

	assert.Less(t, cosine(t, a, d), edited)
}

func TestTextProvider_InvalidUTF8(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/bad.txt", []byte{0xff, 0xfe, 'a'}, 0644)

	res := NewTextProvider(fs, 64, false).Embed(context.Background(), "/bad.txt")
	assert.ErrorIs(t, res.Err, models.ErrProviderFailure)
	assert.ErrorIs(t, res.Err, models.ErrUnreadableFile)
}

func TestTextProvider_StripMarkup(t *testing.T) {
	fs := afero.NewMemMapFs()
	page := `<!DOCTYPE html><html><head><style>p { color: red; }</style></head>
<body><p>Hello   world</p><script>var tracker = 1;</script></body></html>`
	afero.WriteFile(fs, "/page.html", []byte(page), 0644)
	afero.WriteFile(fs, "/plain.txt", []byte("Hello world"), 0644)

	stripping := NewTextProvider(fs, 256, true)
	assert.InDelta(t, 1.0, cosine(t, embedOK(t, stripping, "/page.html"), embedOK(t, stripping, "/plain.txt")), 1e-9)

	raw := NewTextProvider(fs, 256, false)
	assert.Less(t, cosine(t, embedOK(t, raw, "/page.html"), embedOK(t, raw, "/plain.txt")), 0.9)
}

func TestLooksLikeMarkup(t *testing.T) {
	assert.True(t, looksLikeMarkup([]byte("  <HTML><body></body></html>")))
	assert.True(t, looksLikeMarkup([]byte("<!doctype html>")))
	assert.False(t, looksLikeMarkup([]byte("a < b and c > d")))
}
