package assets

// AssetLoader defines the contract for loading help page assets.
// Implementations may load from embedded assets, filesystem, etc.
type AssetLoader interface {
	// LoadPage loads an HTML page template by name (without .html extension).
	// Returns ErrPageNotFound if the page doesn't exist.
	LoadPage(name string) (string, error)

	// LoadProse loads the Markdown instructions for a locale.
	// Returns ErrProseNotFound if the locale has no prose.
	LoadProse(locale string) (string, error)

	// LoadMessages loads the raw YAML message catalog for a locale.
	// Returns ErrMessagesNotFound if the locale has no catalog.
	LoadMessages(locale string) ([]byte, error)

	// LoadStatic loads a file below static/ by slash-separated path.
	// Returns ErrStaticNotFound if the file doesn't exist.
	LoadStatic(path string) ([]byte, error)
}

// Asset directories and extensions below a base path.
const (
	pagesDir    = "pages"
	proseDir    = "prose"
	messagesDir = "messages"
	staticDir   = "static"

	pageExt     = ".html"
	proseExt    = ".md"
	messagesExt = ".yaml"
)

// Names of the built-in assets.
const (
	DefaultPageName = "ssbrowser"
	DefaultLocale   = "en"
)
