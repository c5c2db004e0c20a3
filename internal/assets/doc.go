// Package assets provides the help page template, prose, message catalogs
// and static files (scripts, styles, icons).
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in page)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the builder and the server. It tries
// the custom FilesystemLoader first, falling back to EmbeddedLoader only
// when the asset is not found there. This lets a site override the prose
// or a single stylesheet while keeping everything else built in.
//
// # Directory Structure
//
//	{basePath}/
//	├── pages/{name}.html         # html/template page skeleton
//	├── prose/{locale}.md         # browser instructions in Markdown
//	├── messages/{locale}.yaml    # localized strings
//	└── static/                   # scripts, styles, icons served as-is
//	    ├── css/
//	    ├── js/
//	    └── images/
//
// # Security
//
// Asset names and static paths are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
