package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrMarkdown indicates a free-text field could not be converted.
var ErrMarkdown = errors.New("markdown conversion failed")

// FreeTextConverter renders short Markdown snippets (app notices, remarks)
// into HTML fragments.
type FreeTextConverter interface {
	ToHTML(text string) (string, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with strikethrough and
// autolinks. Raw HTML in the input is dropped.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // receipts keep the author's line breaks
			html.WithXHTML(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts text to an HTML fragment. Empty or blank text yields "".
func (c *GoldmarkConverter) ToHTML(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdown, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Compile-time interface check.
var _ FreeTextConverter = (*GoldmarkConverter)(nil)
