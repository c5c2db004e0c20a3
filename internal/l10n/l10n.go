// Package l10n looks up localized strings by identifier and assigns them
// into a page element.
package l10n

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/alnah/go-ssohelp/internal/assets"
	"github.com/alnah/go-ssohelp/internal/yamlutil"
)

// Sentinel errors for localization.
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNoKeys          = errors.New("substitution has no message keys")
	ErrNoElement       = errors.New("substitution has no element id")
)

// refPrefix marks a message reference in page configuration.
const refPrefix = "@i18n:"

// MessageSource provides raw YAML catalogs by locale.
type MessageSource interface {
	LoadMessages(locale string) ([]byte, error)
}

// Catalog resolves message ids for a locale, falling back to the base
// language and then to the default locale. Parsed catalogs are cached.
type Catalog struct {
	src      MessageSource
	fallback string

	mu    sync.RWMutex
	cache map[string]map[string]string // nil value: locale has no catalog
}

// NewCatalog creates a Catalog over src with assets.DefaultLocale as the
// last fallback.
func NewCatalog(src MessageSource) *Catalog {
	return NewCatalogWithFallback(src, assets.DefaultLocale)
}

// NewCatalogWithFallback creates a Catalog with an explicit fallback locale.
func NewCatalogWithFallback(src MessageSource, fallback string) *Catalog {
	return &Catalog{
		src:      src,
		fallback: fallback,
		cache:    make(map[string]map[string]string),
	}
}

// Lookup returns the message for id in locale.
// "fr-CA" tries fr-CA, then fr, then the fallback locale.
// A leading "@i18n:" on id is ignored.
func (c *Catalog) Lookup(locale, id string) (string, error) {
	id = strings.TrimPrefix(id, refPrefix)

	for _, loc := range Chain(locale, c.fallback) {
		msgs, err := c.messages(loc)
		if err != nil {
			return "", err
		}
		if v, ok := msgs[id]; ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q (locale %q)", ErrMessageNotFound, id, locale)
}

// Text concatenates the messages for ids in order.
func (c *Catalog) Text(locale string, ids ...string) (string, error) {
	var b strings.Builder
	for _, id := range ids {
		v, err := c.Lookup(locale, id)
		if err != nil {
			return "", err
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// Chain lists the locales to try for locale, most specific first, ending
// with fallback. Duplicates and empty entries are dropped.
func Chain(locale, fallback string) []string {
	var out []string
	add := func(l string) {
		if l == "" {
			return
		}
		for _, seen := range out {
			if seen == l {
				return
			}
		}
		out = append(out, l)
	}

	add(locale)
	if base, _, ok := strings.Cut(locale, "-"); ok {
		add(base)
	} else if base, _, ok := strings.Cut(locale, "_"); ok {
		add(base)
	}
	add(fallback)
	return out
}

// messages returns the parsed catalog for locale, or nil if it has none.
func (c *Catalog) messages(locale string) (map[string]string, error) {
	c.mu.RLock()
	msgs, ok := c.cache[locale]
	c.mu.RUnlock()
	if ok {
		return msgs, nil
	}

	data, err := c.src.LoadMessages(locale)
	switch {
	case err == nil:
		msgs, err = yamlutil.StringMap(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s messages: %w", locale, err)
		}
	case assets.IsNotFound(err) || errors.Is(err, assets.ErrInvalidAssetName):
		msgs = nil
	default:
		return nil, fmt.Errorf("loading %s messages: %w", locale, err)
	}

	c.mu.Lock()
	c.cache[locale] = msgs
	c.mu.Unlock()
	return msgs, nil
}

// Setter assigns HTML into the element with the given id.
type Setter interface {
	SetInnerHTML(ctx context.Context, id, fragment string) error
}

// Substitution names the page element that receives localized text and the
// message keys concatenated into it.
type Substitution struct {
	ElementID string   `yaml:"elementId"`
	Keys      []string `yaml:"keys"`
}

// DefaultSubstitution fills the help page's message element.
func DefaultSubstitution() Substitution {
	return Substitution{
		ElementID: "ssbrowser-msg",
		Keys: []string{
			"@i18n:ssbrowser-page.header",
			"@i18n:ssbrowser-page.intro",
			"@i18n:ssbrowser-page.choose",
		},
	}
}

// Validate checks that the substitution names an element and keys.
func (s Substitution) Validate() error {
	if s.ElementID == "" {
		return ErrNoElement
	}
	if len(s.Keys) == 0 {
		return ErrNoKeys
	}
	return nil
}

// Render resolves the keys and returns the HTML-escaped text.
func (s Substitution) Render(c *Catalog, locale string) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	text, err := c.Text(locale, s.Keys...)
	if err != nil {
		return "", err
	}
	return html.EscapeString(text), nil
}

// Apply renders the text and assigns it into the target element.
// It returns the fragment that was assigned.
func (s Substitution) Apply(ctx context.Context, c *Catalog, locale string, target Setter) (string, error) {
	fragment, err := s.Render(c, locale)
	if err != nil {
		return "", err
	}
	if err := target.SetInnerHTML(ctx, s.ElementID, fragment); err != nil {
		return "", fmt.Errorf("substituting #%s: %w", s.ElementID, err)
	}
	return fragment, nil
}
