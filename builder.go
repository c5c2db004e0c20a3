package ssohelp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-ssohelp/internal/assets"
	"github.com/alnah/go-ssohelp/internal/bootstrap"
	"github.com/alnah/go-ssohelp/internal/document"
	"github.com/alnah/go-ssohelp/internal/l10n"
)

// Message ids read by the builder.
const (
	titleMessage = "ssbrowser-page.title"
	certMessage  = "ssbrowser-page.cert"
)

// PageInput describes one rendering of the help page.
type PageInput struct {
	Locale    string // Empty = builder locale
	Realm     string // Kerberos realm, e.g. "EXAMPLE.COM"
	Domain    string // DNS domain, e.g. ".example.com"
	CACertURL string // Link target for the CA certificate (empty = no link)
	Title     string // Overrides the localized title

	Manifest     *Manifest     // nil = builder manifest
	Substitution *Substitution // nil = builder substitution

	// InlineStyles embeds stylesheets in the page instead of linking them,
	// for rendering outside a web server (PDF export).
	InlineStyles bool
}

// Page is a rendered help page.
type Page struct {
	HTML   []byte
	Locale string
	Text   string  // Substituted fragment, empty when substitution did not run
	Report *Report // Bootstrap outcome
}

// Builder renders the help page.
// Create with NewBuilder and reuse: Build is safe for concurrent use.
type Builder struct {
	cfg     settings
	loader  AssetLoader
	catalog *l10n.Catalog
	prose   *proseRenderer
	tmpl    map[string]*template.Template
}

// NewBuilder creates a Builder. The page template is parsed once here.
// Returns error if the asset path is invalid or the template cannot be parsed.
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg := newSettings(opts)

	loader, err := resolveLoader(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.locale == "" {
		cfg.locale = DefaultLocale
	}
	if cfg.pageName == "" {
		cfg.pageName = assets.DefaultPageName
	}
	if cfg.manifest == nil {
		m := DefaultManifest()
		cfg.manifest = &m
	}
	if err := cfg.manifest.Validate(); err != nil {
		return nil, err
	}
	if cfg.substitution == nil {
		sub := DefaultSubstitution()
		cfg.substitution = &sub
	}

	b := &Builder{
		cfg:     cfg,
		loader:  loader,
		catalog: l10n.NewCatalog(loader),
		prose:   newProseRenderer(),
	}

	tmpl, err := b.parseTemplate(cfg.pageName)
	if err != nil {
		return nil, err
	}
	b.tmpl = map[string]*template.Template{cfg.pageName: tmpl}

	return b, nil
}

func resolveLoader(cfg settings) (AssetLoader, error) {
	if cfg.assetLoader != nil {
		return cfg.assetLoader, nil
	}
	if cfg.assetPath != "" {
		return NewAssetLoader(cfg.assetPath)
	}
	return assets.NewEmbeddedLoader(), nil
}

func (b *Builder) parseTemplate(name string) (*template.Template, error) {
	src, err := b.loader.LoadPage(name)
	if err != nil {
		return nil, fmt.Errorf("loading page template: %w", err)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageTemplate, err)
	}
	return tmpl, nil
}

// pageData is the page template's view model.
type pageData struct {
	Lang      string
	Title     string
	Realm     string
	Domain    string
	Prose     template.HTML
	CACertURL string
	CertLabel string
}

// Build renders the page, runs the bootstrap against it and substitutes
// the localized text once every script is in place.
//
// A script that cannot be loaded stops the bootstrap: the returned Page has
// the resources placed before the failure, no substituted text, and the
// error matches ErrScriptLoad. Style and icon failures are recorded in the
// Report and do not fail the build.
func (b *Builder) Build(ctx context.Context, input PageInput) (page *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			page, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, b.cfg.timeout)
	defer cancel()

	locale := input.Locale
	if locale == "" {
		locale = b.cfg.locale
	}
	manifest := *b.cfg.manifest
	if input.Manifest != nil {
		manifest = *input.Manifest
	}
	sub := *b.cfg.substitution
	if input.Substitution != nil {
		sub = *input.Substitution
	}

	content, err := b.renderTemplate(ctx, locale, input)
	if err != nil {
		return nil, err
	}

	doc := document.New(content)
	if css := HighlightCSS(); css != "" {
		doc.InjectCSS(ctx, css)
	}

	var injector bootstrap.Injector = doc
	if input.InlineStyles {
		injector = &inlineInjector{doc: doc, loader: b.loader}
	}

	var (
		text     string
		applyErr error
	)
	onComplete := func() {
		if !substitutionEnabled(sub) {
			return
		}
		text, applyErr = sub.Apply(ctx, b.catalog, locale, doc)
	}

	loader := bootstrap.NewLoader(doc, injector, bootstrap.WithLogger(b.cfg.logger))
	report, runErr := loader.Run(ctx, manifest, onComplete)

	if report == nil {
		// Invalid manifest: nothing was placed.
		return nil, runErr
	}
	page = &Page{HTML: []byte(doc.String()), Locale: locale, Report: report}

	if runErr != nil {
		b.cfg.logger.Warn("bootstrap stopped", zap.String("run_id", report.RunID), zap.Error(runErr))
		return page, runErr
	}
	if applyErr != nil {
		return page, fmt.Errorf("%w: %w", ErrSubstitution, applyErr)
	}
	page.Text = text
	return page, nil
}

func (b *Builder) renderTemplate(ctx context.Context, locale string, input PageInput) (string, error) {
	proseSrc, err := b.loadProse(locale)
	if err != nil {
		return "", err
	}
	proseHTML, err := b.prose.Render(ctx, proseSrc, input.Realm, input.Domain)
	if err != nil {
		return "", err
	}

	title := input.Title
	if title == "" {
		title, err = b.catalog.Lookup(locale, titleMessage)
		if err != nil {
			return "", err
		}
	}
	certLabel := ""
	if input.CACertURL != "" {
		certLabel, err = b.catalog.Lookup(locale, certMessage)
		if err != nil {
			return "", err
		}
	}

	data := pageData{
		Lang:      locale,
		Title:     title,
		Realm:     input.Realm,
		Domain:    input.Domain,
		Prose:     template.HTML(proseHTML), // #nosec G203 -- goldmark output without WithUnsafe
		CACertURL: input.CACertURL,
		CertLabel: certLabel,
	}

	var buf bytes.Buffer
	if err := b.tmpl[b.cfg.pageName].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageTemplate, err)
	}
	return buf.String(), nil
}

// loadProse tries locale, its base language, then the default locale.
func (b *Builder) loadProse(locale string) (string, error) {
	var lastErr error
	for _, loc := range l10n.Chain(locale, DefaultLocale) {
		prose, err := b.loader.LoadProse(loc)
		if err == nil {
			return prose, nil
		}
		if !assets.IsNotFound(err) && !errors.Is(err, assets.ErrInvalidAssetName) {
			return "", fmt.Errorf("loading prose: %w", err)
		}
		lastErr = err
	}
	return "", fmt.Errorf("loading prose: %w", lastErr)
}

// LoadStatic returns a static file by its manifest path ("static/js/x.js")
// or its path below static/.
func (b *Builder) LoadStatic(path string) ([]byte, error) {
	return b.loader.LoadStatic(strings.TrimPrefix(path, "static/"))
}

// Manifest returns a copy of the builder's default manifest.
func (b *Builder) Manifest() Manifest {
	return b.cfg.manifest.Clone()
}

// Locale returns the builder's default locale.
func (b *Builder) Locale() string {
	return b.cfg.locale
}

// inlineInjector embeds stylesheet contents and links icons.
type inlineInjector struct {
	doc    *document.Document
	loader AssetLoader
}

func (i *inlineInjector) InjectStyle(ctx context.Context, path string) error {
	css, err := i.loader.LoadStatic(strings.TrimPrefix(path, "static/"))
	if err != nil {
		return err
	}
	i.doc.InjectCSS(ctx, string(css))
	return nil
}

func (i *inlineInjector) InjectIcon(ctx context.Context, path string) error {
	return i.doc.InjectIcon(ctx, path)
}
