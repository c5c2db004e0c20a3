package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed pages prose messages static
var content embed.FS

// EmbeddedLoader loads assets from embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadPage loads an HTML page template from embedded assets by name.
func (e *EmbeddedLoader) LoadPage(name string) (string, error) {
	data, err := e.readNamed(pagesDir, name, pageExt, ErrPageNotFound)
	return string(data), err
}

// LoadProse loads the Markdown instructions for a locale.
func (e *EmbeddedLoader) LoadProse(locale string) (string, error) {
	data, err := e.readNamed(proseDir, locale, proseExt, ErrProseNotFound)
	return string(data), err
}

// LoadMessages loads the YAML message catalog for a locale.
func (e *EmbeddedLoader) LoadMessages(locale string) ([]byte, error) {
	return e.readNamed(messagesDir, locale, messagesExt, ErrMessagesNotFound)
}

// LoadStatic loads a file below static/.
func (e *EmbeddedLoader) LoadStatic(p string) ([]byte, error) {
	if err := ValidateStaticPath(p); err != nil {
		return nil, err
	}
	data, err := content.ReadFile(staticDir + "/" + p)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrStaticNotFound, p)
	}
	return data, nil
}

func (e *EmbeddedLoader) readNamed(dir, name, ext string, notFound error) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	data, err := content.ReadFile(dir + "/" + name + ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", notFound, name)
	}
	return data, nil
}

// StaticFS returns the embedded static/ tree.
func StaticFS() fs.FS {
	sub, err := fs.Sub(content, staticDir)
	if err != nil {
		// static/ is embedded at compile time.
		panic(err)
	}
	return sub
}

// Locales returns the locales with embedded prose, sorted.
func Locales() []string {
	entries, err := content.ReadDir(proseDir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), proseExt); ok && !e.IsDir() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
