package ssohelp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Placeholders replaced in prose before Markdown conversion.
const (
	domainPlaceholder = "{{DOMAIN}}"
	realmPlaceholder  = "{{REALM}}"

	// Shown when the realm is not configured.
	exampleDomain = ".example.com"
	exampleRealm  = "EXAMPLE.COM"
)

// highlightStyle is the chroma style for code blocks in prose.
const highlightStyle = "github"

// proseRenderer converts the page instructions from Markdown to HTML.
type proseRenderer struct {
	md goldmark.Markdown
}

func newProseRenderer() *proseRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(), // "## Firefox {#firefox}"
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &proseRenderer{md: md}
}

// Render fills the placeholders and returns the HTML fragment.
// Placeholder values become Markdown source: raw HTML in them is omitted
// like any other raw HTML.
func (r *proseRenderer) Render(ctx context.Context, prose, realm, domain string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if realm == "" {
		realm = exampleRealm
	}
	if domain == "" {
		domain = exampleDomain
	}
	prose = strings.NewReplacer(
		domainPlaceholder, domain,
		realmPlaceholder, realm,
	).Replace(prose)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(prose), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

var (
	highlightCSSOnce sync.Once
	highlightCSS     string
)

// HighlightCSS returns the stylesheet for highlighted code blocks.
func HighlightCSS() string {
	highlightCSSOnce.Do(func() {
		var buf bytes.Buffer
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		if err := formatter.WriteCSS(&buf, styles.Get(highlightStyle)); err == nil {
			highlightCSS = buf.String()
		}
	})
	return highlightCSS
}
