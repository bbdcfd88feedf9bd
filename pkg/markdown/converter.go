// Package markdown converts caller-supplied page bodies into the HTML
// that Confluence's storage representation accepts.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var htmlTagRe = regexp.MustCompile(`<\s*[a-zA-Z][^>]*>`)

var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// looksLikeHTML reports whether the content already appears to be HTML.
func looksLikeHTML(content string) bool {
	return htmlTagRe.MatchString(strings.TrimSpace(content))
}

// ToStorage normalizes incoming page content for the Confluence storage
// representation. Markdown is rendered to HTML; input that already looks
// like HTML is passed through unchanged so internal page links and
// macros survive round-trips.
func ToStorage(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	if looksLikeHTML(content) {
		return content, nil
	}

	var buf bytes.Buffer
	if err := converter.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}
