package assets

import (
	"errors"
)

// AssetResolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the asset is not found in the custom location.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadPage loads a page template, trying the custom loader first.
func (r *AssetResolver) LoadPage(name string) (string, error) {
	return withFallback(r, func(l AssetLoader) (string, error) { return l.LoadPage(name) })
}

// LoadProse loads prose, trying the custom loader first.
func (r *AssetResolver) LoadProse(locale string) (string, error) {
	return withFallback(r, func(l AssetLoader) (string, error) { return l.LoadProse(locale) })
}

// LoadMessages loads a message catalog, trying the custom loader first.
func (r *AssetResolver) LoadMessages(locale string) ([]byte, error) {
	return withFallback(r, func(l AssetLoader) ([]byte, error) { return l.LoadMessages(locale) })
}

// LoadStatic loads a static file, trying the custom loader first.
func (r *AssetResolver) LoadStatic(p string) ([]byte, error) {
	return withFallback(r, func(l AssetLoader) ([]byte, error) { return l.LoadStatic(p) })
}

// withFallback implements the custom-first, fallback-to-embedded logic.
func withFallback[T any](r *AssetResolver, load func(AssetLoader) (T, error)) (T, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	v, err := load(r.custom)
	if err == nil {
		return v, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !IsNotFound(err) {
		return v, err
	}
	return load(r.embedded)
}

// IsNotFound reports whether err means the asset does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPageNotFound) ||
		errors.Is(err, ErrProseNotFound) ||
		errors.Is(err, ErrMessagesNotFound) ||
		errors.Is(err, ErrStaticNotFound)
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
