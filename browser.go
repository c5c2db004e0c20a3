package ssohelp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-ssohelp/internal/bootstrap"
	"github.com/alnah/go-ssohelp/internal/document"
	"github.com/alnah/go-ssohelp/internal/fileutil"
	"github.com/alnah/go-ssohelp/internal/l10n"
	"github.com/alnah/go-ssohelp/internal/process"
)

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// Scripts evaluated in the live page.
const (
	// errorTrapJS records uncaught errors so a script that loads but throws
	// counts as failed. Installed before any page script runs.
	errorTrapJS = `window.__ssohelpErrors = [];
window.addEventListener("error", function (e) {
  window.__ssohelpErrors.push(e.message || String(e.error));
});`

	takeErrorsJS = `() => {
  const errs = window.__ssohelpErrors || [];
  window.__ssohelpErrors = [];
  return errs.length ? errs[0] : "";
}`

	hasReferenceJS = `(selector, attr, ref) => {
  const want = new URL(ref, document.baseURI).href;
  return Array.from(document.querySelectorAll(selector)).some(el => el[attr] === want);
}`

	addIconJS = `(href, type) => {
  const link = document.createElement("link");
  link.rel = "icon";
  link.type = type;
  link.href = href;
  document.head.appendChild(link);
}`

	setInnerHTMLJS = `(id, html) => {
  const el = document.getElementById(id);
  if (!el) return false;
  el.innerHTML = html;
  return true;
}`

	textContentJS = `(id) => {
  const el = document.getElementById(id);
  return el ? el.textContent : "";
}`
)

// BootstrapInput describes one live bootstrap.
type BootstrapInput struct {
	URL          string        // Page to open (required)
	Locale       string        // Empty = browser locale
	Manifest     *Manifest     // nil = browser manifest
	Substitution *Substitution // nil = browser substitution
}

// BootstrapResult is the outcome of a live bootstrap.
type BootstrapResult struct {
	Report *Report
	Text   string // textContent of the substituted element, read back from the DOM
}

// Browser runs the bootstrap and PDF export in headless Chrome.
// Chrome is launched on first use. Rod downloads Chromium on first run if
// no browser is found. Safe for concurrent use; each call opens its own tab.
type Browser struct {
	cfg     settings
	catalog *l10n.Catalog

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool
}

// NewBrowser creates a Browser. No process is started until first use.
func NewBrowser(opts ...Option) (*Browser, error) {
	cfg := newSettings(opts)
	loader, err := resolveLoader(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.locale == "" {
		cfg.locale = DefaultLocale
	}
	if cfg.manifest == nil {
		m := DefaultManifest()
		cfg.manifest = &m
	}
	if cfg.substitution == nil {
		sub := DefaultSubstitution()
		cfg.substitution = &sub
	}
	return &Browser{cfg: cfg, catalog: l10n.NewCatalog(loader)}, nil
}

// ensureBrowser lazily launches and connects to Chrome.
func (b *Browser) ensureBrowser() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrowserClosed
	}
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.cfg.logger.Debug("browser launched", zap.Int("pid", l.PID()))
	b.browser = browser
	b.launcher = l
	return browser, nil
}

// Close releases browser resources. The Browser cannot be used afterwards.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		process.KillProcessGroup(b.launcher.PID())
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

// Bootstrap opens input.URL and runs the bootstrap inside the live page:
// styles and icons are added, scripts are added one at a time and each
// must load and execute without an uncaught error before the next starts.
// After the last script the localized text is assigned into the
// substitution element.
//
// A script failure returns the partial result and an error matching
// ErrScriptLoad; no text is substituted in that case.
func (b *Browser) Bootstrap(ctx context.Context, input BootstrapInput) (*BootstrapResult, error) {
	if input.URL == "" {
		return nil, ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

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

	page, err := b.openPage(ctx, input.URL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	live := &livePage{page: page, timeout: b.cfg.timeout}

	var applyErr error
	onComplete := func() {
		if substitutionEnabled(sub) {
			_, applyErr = sub.Apply(ctx, b.catalog, locale, live)
		}
	}

	loader := bootstrap.NewLoader(live, live, bootstrap.WithLogger(b.cfg.logger))
	report, err := loader.Run(ctx, manifest, onComplete)
	if report == nil {
		return nil, err
	}
	result := &BootstrapResult{Report: report}
	if err != nil {
		return result, err
	}
	if applyErr != nil {
		return result, fmt.Errorf("%w: %w", ErrSubstitution, applyErr)
	}

	if substitutionEnabled(sub) {
		text, err := live.textContent(ctx, sub.ElementID)
		if err != nil {
			return result, err
		}
		result.Text = text
	}
	return result, nil
}

// openPage creates a tab with the error trap installed and waits for url to load.
func (b *Browser) openPage(ctx context.Context, url string) (*rod.Page, error) {
	browser, err := b.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if _, err := page.EvalOnNewDocument(errorTrapJS); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	loadCtx, cancel := b.deadline(ctx)
	defer cancel()

	p := page.Context(loadCtx)
	if err := p.Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Errors raised by the page's own scripts are not ours to report.
	if _, err := page.Context(ctx).Eval(takeErrorsJS); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return page, nil
}

// deadline bounds ctx by the browser timeout.
func (b *Browser) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.cfg.timeout)
}

// PDF renders html to a US Letter PDF.
// Relative links in html resolve against a temporary directory, so
// stylesheets should be inlined (see PageInput.InlineStyles).
func (b *Browser) PDF(ctx context.Context, html []byte) ([]byte, error) {
	if len(html) == 0 {
		return nil, ErrEmptyHTML
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(string(html), "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	u, err := fileutil.FileURL(tmpPath)
	if err != nil {
		return nil, err
	}

	page, err := b.openPage(ctx, u)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	pdfCtx, cancel := b.deadline(ctx)
	defer cancel()

	reader, err := page.Context(pdfCtx).PDF(pdfOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// pdfOptions returns the print settings for the help page.
func pdfOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// livePage runs the bootstrap against a page open in Chrome.
type livePage struct {
	page    *rod.Page
	timeout time.Duration
}

// errScriptThrew reports an uncaught error raised while a script executed.
var errScriptThrew = errors.New("script raised an uncaught error")

func (l *livePage) with(ctx context.Context) (*rod.Page, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(ctx, l.timeout)
	return l.page.Context(tctx), cancel
}

// RunScript adds a <script src> and waits for it to load and execute.
// A script already present in the page is not added again.
func (l *livePage) RunScript(ctx context.Context, path string) error {
	p, cancel := l.with(ctx)
	defer cancel()

	present, err := l.has(p, "script[src]", "src", path)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	if err := p.AddScriptTag(path, ""); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	res, err := p.Eval(takeErrorsJS)
	if err != nil {
		return fmt.Errorf("reading script errors: %w", err)
	}
	if msg := res.Value.Str(); msg != "" {
		return fmt.Errorf("%w: %s", errScriptThrew, msg)
	}
	return nil
}

// InjectStyle adds a stylesheet link and waits for it to load.
func (l *livePage) InjectStyle(ctx context.Context, path string) error {
	p, cancel := l.with(ctx)
	defer cancel()

	present, err := l.has(p, `link[rel="stylesheet"]`, "href", path)
	if err != nil || present {
		return err
	}
	return p.AddStyleTag(path, "")
}

// InjectIcon adds an icon link. Browsers fetch icons lazily, so there is
// no load to wait for.
func (l *livePage) InjectIcon(ctx context.Context, path string) error {
	p, cancel := l.with(ctx)
	defer cancel()

	present, err := l.has(p, `link[rel~="icon"]`, "href", path)
	if err != nil || present {
		return err
	}
	_, err = p.Eval(addIconJS, path, document.IconType(path))
	return err
}

// SetInnerHTML assigns fragment into the element with the given id.
func (l *livePage) SetInnerHTML(ctx context.Context, id, fragment string) error {
	p, cancel := l.with(ctx)
	defer cancel()

	res, err := p.Eval(setInnerHTMLJS, id, fragment)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return fmt.Errorf("%w: #%s", document.ErrElementNotFound, id)
	}
	return nil
}

func (l *livePage) textContent(ctx context.Context, id string) (string, error) {
	p, cancel := l.with(ctx)
	defer cancel()

	res, err := p.Eval(textContentJS, id)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (l *livePage) has(p *rod.Page, selector, attr, ref string) (bool, error) {
	res, err := p.Eval(hasReferenceJS, selector, attr, ref)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// Compile-time interface checks.
var (
	_ bootstrap.ScriptRunner = (*livePage)(nil)
	_ bootstrap.Injector     = (*livePage)(nil)
	_ l10n.Setter            = (*livePage)(nil)
)
