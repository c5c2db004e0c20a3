package ssohelp

import (
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-ssohelp/internal/bootstrap"
	"github.com/alnah/go-ssohelp/internal/l10n"
)

// Manifest lists the scripts, styles and icons a page bootstraps.
type Manifest = bootstrap.Manifest

// Report describes one bootstrap run.
type Report = bootstrap.Report

// ScriptLoadError reports the script that stopped a bootstrap run.
type ScriptLoadError = bootstrap.ScriptLoadError

// InjectError reports a style or icon that could not be injected.
type InjectError = bootstrap.InjectError

// Substitution names the element that receives localized text and the
// message keys concatenated into it.
type Substitution = l10n.Substitution

// DefaultManifest returns the resources of the built-in help page.
// detect.js must run before ssbrowser.js.
func DefaultManifest() Manifest {
	return Manifest{
		Scripts: []string{"static/js/detect.js", "static/js/ssbrowser.js"},
		Styles:  []string{"static/css/ssbrowser.css"},
		Icons:   []string{"static/images/favicon.svg"},
	}
}

// DefaultSubstitution fills the help page's message element.
func DefaultSubstitution() Substitution {
	return l10n.DefaultSubstitution()
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// Option configures a Builder or a Browser.
// Options that do not apply to the receiver are ignored.
type Option func(*settings)

// settings holds the configuration shared by Builder and Browser.
type settings struct {
	timeout      time.Duration
	logger       *zap.Logger
	assetPath    string
	assetLoader  AssetLoader
	locale       string
	pageName     string
	manifest     *Manifest
	substitution *Substitution
}

func newSettings(opts []Option) settings {
	s := settings{
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithTimeout sets the time limit for one build or one browser operation.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("ssohelp: WithTimeout duration must be positive")
	}
	return func(s *settings) {
		s.timeout = d
	}
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger == nil {
			logger = zap.NewNop()
		}
		s.logger = logger
	}
}

// WithAssetPath overrides built-in assets with files below dir.
// Missing files fall back to the built-in ones.
func WithAssetPath(dir string) Option {
	return func(s *settings) {
		s.assetPath = dir
	}
}

// WithAssetLoader sets a custom asset loader. Takes precedence over WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(s *settings) {
		s.assetLoader = loader
	}
}

// WithLocale sets the default locale for prose and messages.
func WithLocale(locale string) Option {
	return func(s *settings) {
		s.locale = locale
	}
}

// WithPageName selects the page template (default "ssbrowser").
func WithPageName(name string) Option {
	return func(s *settings) {
		s.pageName = name
	}
}

// WithManifest sets the default resources to bootstrap.
func WithManifest(m Manifest) Option {
	return func(s *settings) {
		c := m.Clone()
		s.manifest = &c
	}
}

// WithSubstitution sets the default localized text substitution.
// A zero Substitution disables it.
func WithSubstitution(sub Substitution) Option {
	return func(s *settings) {
		c := Substitution{ElementID: sub.ElementID, Keys: append([]string(nil), sub.Keys...)}
		s.substitution = &c
	}
}

// substitutionEnabled reports whether sub names anything to substitute.
func substitutionEnabled(sub Substitution) bool {
	return sub.ElementID != "" || len(sub.Keys) > 0
}
