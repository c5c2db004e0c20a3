package document

import (
	"context"
	"errors"
	"html"
	"strings"
	"sync"

	"github.com/alnah/go-ssohelp/internal/bootstrap"
)

// Sentinel errors for document edits.
var (
	ErrEmptyReference  = errors.New("reference path cannot be empty")
	ErrElementNotFound = errors.New("element not found")
	ErrEmptyElementID  = errors.New("element id cannot be empty")
	ErrNotContainer    = errors.New("element cannot hold content")
)

// Compile-time interface checks.
var (
	_ bootstrap.ScriptRunner = (*Document)(nil)
	_ bootstrap.Injector     = (*Document)(nil)
)

// Document holds one HTML page. It is safe for concurrent use.
type Document struct {
	mu      sync.Mutex
	content string
}

// New creates a Document from HTML content.
func New(content string) *Document {
	return &Document{content: content}
}

// String returns the current HTML.
func (d *Document) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

// InjectStyle adds <link rel="stylesheet"> before </head>.
// A stylesheet already linked with the same href is left alone.
func (d *Document) InjectStyle(ctx context.Context, path string) error {
	return d.injectHead(ctx, "link", "href", path,
		`<link rel="stylesheet" type="text/css" href="`+html.EscapeString(path)+`">`)
}

// InjectIcon adds <link rel="icon"> before </head>.
// An icon already linked with the same href is left alone.
func (d *Document) InjectIcon(ctx context.Context, path string) error {
	return d.injectHead(ctx, "link", "href", path,
		`<link rel="icon" type="`+IconType(path)+`" href="`+html.EscapeString(path)+`">`)
}

// RunScript appends <script src> before </body>. Browsers execute
// non-async scripts in document order, so appending in run order keeps the
// sequence. A script already referenced with the same src is left alone.
func (d *Document) RunScript(ctx context.Context, path string) error {
	if err := checkReference(ctx, path); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if hasReference(d.content, "script", "src", path) {
		return nil
	}
	tag := `<script type="text/javascript" src="` + html.EscapeString(path) + `"></script>`
	d.content = insertBeforeBodyClose(d.content, tag)
	return nil
}

// InjectCSS inserts an inline <style> block before </head>.
// CSS content is sanitized so it cannot close the block.
func (d *Document) InjectCSS(ctx context.Context, css string) {
	if css == "" || ctx.Err() != nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = insertBeforeHeadClose(d.content, "<style>"+sanitizeCSS(css)+"</style>")
}

// SetInnerHTML replaces the content of the element with the given id.
// fragment is inserted as-is; callers escape untrusted text.
func (d *Document) SetInnerHTML(ctx context.Context, id, fragment string) error {
	if id == "" {
		return ErrEmptyElementID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	start, end, err := findElementContent(d.content, id)
	if err != nil {
		return err
	}
	d.content = d.content[:start] + fragment + d.content[end:]
	return nil
}

// ElementText returns the raw inner HTML of the element with the given id.
func (d *Document) ElementText(id string) (string, error) {
	if id == "" {
		return "", ErrEmptyElementID
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	start, end, err := findElementContent(d.content, id)
	if err != nil {
		return "", err
	}
	return d.content[start:end], nil
}

func (d *Document) injectHead(ctx context.Context, tagName, attr, path, tag string) error {
	if err := checkReference(ctx, path); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if hasReference(d.content, tagName, attr, path) {
		return nil
	}
	d.content = insertBeforeHeadClose(d.content, tag)
	return nil
}

func checkReference(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyReference
	}
	return ctx.Err()
}

// IconType guesses the MIME type of an icon from its extension.
func IconType(path string) string {
	p := strings.ToLower(path)
	if i := strings.IndexAny(p, "?#"); i != -1 {
		p = p[:i]
	}
	switch {
	case strings.HasSuffix(p, ".png"):
		return "image/png"
	case strings.HasSuffix(p, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(p, ".gif"):
		return "image/gif"
	default:
		return "image/x-icon"
	}
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// insertBeforeHeadClose tries </head>, then after <body>, then prepends.
func insertBeforeHeadClose(content, fragment string) string {
	lower := strings.ToLower(content)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return content[:idx] + fragment + content[idx:]
	}
	if pos, ok := afterBodyOpen(content, lower); ok {
		return content[:pos] + fragment + content[pos:]
	}
	return fragment + content
}

// insertBeforeBodyClose tries the last </body>, then appends.
func insertBeforeBodyClose(content, fragment string) string {
	lower := strings.ToLower(content)

	if idx := strings.LastIndex(lower, "</body>"); idx != -1 {
		return content[:idx] + fragment + content[idx:]
	}
	return content + fragment
}

// afterBodyOpen returns the offset right after the <body ...> tag.
func afterBodyOpen(content, lower string) (int, bool) {
	idx := strings.Index(lower, "<body")
	if idx == -1 {
		return 0, false
	}
	closeIdx := strings.Index(content[idx:], ">")
	if closeIdx == -1 {
		return 0, false
	}
	return idx + closeIdx + 1, true
}
