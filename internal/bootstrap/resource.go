package bootstrap

import (
	"fmt"
	"strings"
)

// Kind identifies what a resource reference points at.
type Kind int

// Resource kinds.
const (
	KindScript Kind = iota
	KindStyle
	KindIcon
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindStyle:
		return "style"
	case KindIcon:
		return "icon"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resource is a path tagged with its kind. It has no identity beyond the path.
type Resource struct {
	Path string
	Kind Kind
}

// Manifest lists the resources of one bootstrap call.
// Scripts are processed front-to-back; Styles and Icons are unordered.
type Manifest struct {
	Scripts []string `yaml:"scripts"`
	Styles  []string `yaml:"styles"`
	Icons   []string `yaml:"icons"`
}

// Validate checks that every path is non-empty and that no script is
// listed twice. Repeated styles and icons are allowed; they are injected
// once.
func (m Manifest) Validate() error {
	for _, r := range m.Resources() {
		if strings.TrimSpace(r.Path) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyPath, r.Kind)
		}
	}
	seen := make(map[string]struct{}, len(m.Scripts))
	for _, p := range m.Scripts {
		if _, ok := seen[p]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateScript, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Resources flattens the manifest: scripts in order, then styles, then icons.
func (m Manifest) Resources() []Resource {
	out := make([]Resource, 0, len(m.Scripts)+len(m.Styles)+len(m.Icons))
	for _, p := range m.Scripts {
		out = append(out, Resource{Path: p, Kind: KindScript})
	}
	for _, p := range m.Styles {
		out = append(out, Resource{Path: p, Kind: KindStyle})
	}
	for _, p := range m.Icons {
		out = append(out, Resource{Path: p, Kind: KindIcon})
	}
	return out
}

// IsZero reports whether the manifest lists no resources.
func (m Manifest) IsZero() bool {
	return len(m.Scripts) == 0 && len(m.Styles) == 0 && len(m.Icons) == 0
}

// Clone returns a deep copy so callers can keep a shared default manifest.
func (m Manifest) Clone() Manifest {
	return Manifest{
		Scripts: append([]string(nil), m.Scripts...),
		Styles:  append([]string(nil), m.Styles...),
		Icons:   append([]string(nil), m.Icons...),
	}
}

// uniquePaths drops repeated paths, keeping first occurrences.
func uniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
