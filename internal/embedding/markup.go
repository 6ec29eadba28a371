package embedding

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var markupMarkers = [][]byte{[]byte("<!doctype html"), []byte("<html"), []byte("<body")}

// looksLikeMarkup reports whether content is an HTML document
func looksLikeMarkup(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	for _, marker := range markupMarkers {
		if bytes.Contains(head, marker) {
			return true
		}
	}
	return false
}

// extractText returns the visible text of an HTML document
func extractText(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
