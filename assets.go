package ssohelp

import (
	"fmt"
	"io/fs"

	"github.com/alnah/go-ssohelp/internal/assets"
)

// AssetLoader loads the page template, prose, message catalogs and static
// files of the help page.
type AssetLoader interface {
	LoadPage(name string) (string, error)
	LoadProse(locale string) (string, error)
	LoadMessages(locale string) ([]byte, error)
	LoadStatic(path string) ([]byte, error)
}

// DefaultLocale is the locale of the built-in prose and messages.
const DefaultLocale = assets.DefaultLocale

// NewAssetLoader returns a loader that reads files below basePath and falls
// back to the built-in assets for anything missing there.
//
// Directory layout:
//
//	assets/
//	├── pages/ssbrowser.html
//	├── prose/<locale>.md
//	├── messages/<locale>.yaml
//	└── static/{css,js,images}/...
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	return resolver, nil
}

// StaticFS returns the built-in static files (css/, js/, images/).
func StaticFS() fs.FS {
	return assets.StaticFS()
}

// Locales returns the locales with built-in prose.
func Locales() []string {
	return assets.Locales()
}

// Compile-time interface check.
var _ assets.AssetLoader = AssetLoader(nil)
