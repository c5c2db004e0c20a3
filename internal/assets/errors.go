package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrPageNotFound indicates the requested page template does not exist.
	ErrPageNotFound = errors.New("page template not found")

	// ErrProseNotFound indicates no prose exists for the requested locale.
	ErrProseNotFound = errors.New("prose not found")

	// ErrMessagesNotFound indicates no message catalog exists for the locale.
	ErrMessagesNotFound = errors.New("message catalog not found")

	// ErrStaticNotFound indicates the requested static file does not exist.
	ErrStaticNotFound = errors.New("static file not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidStaticPath indicates a static path that is absolute, unclean
	// or escapes the static directory.
	ErrInvalidStaticPath = errors.New("invalid static path")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
