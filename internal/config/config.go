package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-ssohelp/internal/bootstrap"
	"github.com/alnah/go-ssohelp/internal/browserpolicy"
	"github.com/alnah/go-ssohelp/internal/fileutil"
	"github.com/alnah/go-ssohelp/internal/l10n"
	"github.com/alnah/go-ssohelp/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid field value")
)

// Field length limits.
const (
	MaxRealmLength    = 253  // DNS name limit
	MaxDomainLength   = 253  // DNS name limit
	MaxDomains        = 32   // policy allowlists stay readable
	MaxLocaleLength   = 35   // BCP 47 upper bound in practice
	MaxTitleLength    = 200  // Page title
	MaxURLLength      = 2048 // Browser limit
	MaxPathLength     = 4096 // PATH_MAX
	MaxAddrLength     = 262  // host:port
	MaxResourceCount  = 64   // per manifest list
	MaxElementIDLen   = 100  // Substitution target id
	MaxMessageKeys    = 32   // Substitution keys
	MaxMessageKeyLen  = 200  // "@i18n:ssbrowser-page.header"
	MaxWorkers        = 8    // Browser pool
	DefaultAddr       = ":8080"
	DefaultTimeout    = 30 * time.Second
	DefaultPageLocale = "en"
)

// Config holds all configuration for the help page.
type Config struct {
	Realm     RealmConfig     `yaml:"realm"`
	Page      PageConfig      `yaml:"page"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Policy    PolicyConfig    `yaml:"policy"`
	Server    ServerConfig    `yaml:"server"`
	Browser   BrowserConfig   `yaml:"browser"`
	Assets    AssetsConfig    `yaml:"assets"`
}

// RealmConfig describes the Kerberos realm the page explains.
type RealmConfig struct {
	Name       string   `yaml:"name"`       // "EXAMPLE.COM"
	Domains    []string `yaml:"domains"`    // ".example.com"
	CACertPath string   `yaml:"caCertPath"` // Served at /ca.crt (empty = no link)
	CACertURL  string   `yaml:"caCertURL"`  // Overrides the link target
}

// Domain returns the first configured domain, or an empty string.
func (r RealmConfig) Domain() string {
	if len(r.Domains) == 0 {
		return ""
	}
	return r.Domains[0]
}

// PageConfig defines how the page is rendered.
type PageConfig struct {
	Name   string `yaml:"name"`   // Page template name (default: "ssbrowser")
	Locale string `yaml:"locale"` // Prose and message locale (default: "en")
	Title  string `yaml:"title"`  // Overrides the localized title
}

// BootstrapConfig lists the resources the page loads and its text substitution.
type BootstrapConfig struct {
	Scripts      []string          `yaml:"scripts"`
	Styles       []string          `yaml:"styles"`
	Icons        []string          `yaml:"icons"`
	Substitution l10n.Substitution `yaml:"substitution"`
}

// Manifest returns the resource lists as a bootstrap manifest.
func (b BootstrapConfig) Manifest() bootstrap.Manifest {
	return bootstrap.Manifest{
		Scripts: b.Scripts,
		Styles:  b.Styles,
		Icons:   b.Icons,
	}.Clone()
}

// PolicyConfig defines generated browser policies.
type PolicyConfig struct {
	Delegate bool `yaml:"delegate"`
	Locked   bool `yaml:"locked"`
}

// ServerConfig defines the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"` // default: ":8080"
}

// BrowserConfig defines headless Chrome usage.
type BrowserConfig struct {
	Timeout string `yaml:"timeout"` // Go duration, default: "30s"
	Workers int    `yaml:"workers"` // 0 = auto
}

// TimeoutDuration parses Timeout, returning DefaultTimeout when unset.
func (b BrowserConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: browser.timeout %q", ErrInvalidField, b.Timeout)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: browser.timeout must be positive, got %s", ErrInvalidField, d)
	}
	return d, nil
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks field lengths and values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	// Realm
	if err := validateFieldLength("realm.name", c.Realm.Name, MaxRealmLength); err != nil {
		return err
	}
	if len(c.Realm.Domains) > MaxDomains {
		return fmt.Errorf("%w: realm.domains (%d entries, max %d)", ErrFieldTooLong, len(c.Realm.Domains), MaxDomains)
	}
	for i, d := range c.Realm.Domains {
		field := fmt.Sprintf("realm.domains[%d]", i)
		if err := validateFieldLength(field, d, MaxDomainLength); err != nil {
			return err
		}
		if _, err := browserpolicy.NormalizeDomain(d); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if err := validateFieldLength("realm.caCertPath", c.Realm.CACertPath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("realm.caCertURL", c.Realm.CACertURL, MaxURLLength); err != nil {
		return err
	}

	// Page
	if err := validateFieldLength("page.name", c.Page.Name, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.locale", c.Page.Locale, MaxLocaleLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Page.Locale, "/\\. ") {
		return fmt.Errorf("%w: page.locale %q", ErrInvalidField, c.Page.Locale)
	}
	if err := validateFieldLength("page.title", c.Page.Title, MaxTitleLength); err != nil {
		return err
	}

	// Bootstrap
	if err := c.validateBootstrap(); err != nil {
		return err
	}

	// Server and browser
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if _, err := c.Browser.TimeoutDuration(); err != nil {
		return err
	}
	if c.Browser.Workers < 0 || c.Browser.Workers > MaxWorkers {
		return fmt.Errorf("%w: browser.workers must be between 0 and %d, got %d", ErrInvalidField, MaxWorkers, c.Browser.Workers)
	}

	return validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength)
}

func (c *Config) validateBootstrap() error {
	lists := []struct {
		name  string
		paths []string
	}{
		{"bootstrap.scripts", c.Bootstrap.Scripts},
		{"bootstrap.styles", c.Bootstrap.Styles},
		{"bootstrap.icons", c.Bootstrap.Icons},
	}
	for _, l := range lists {
		if len(l.paths) > MaxResourceCount {
			return fmt.Errorf("%w: %s (%d entries, max %d)", ErrFieldTooLong, l.name, len(l.paths), MaxResourceCount)
		}
		for i, p := range l.paths {
			if err := validateFieldLength(fmt.Sprintf("%s[%d]", l.name, i), p, MaxURLLength); err != nil {
				return err
			}
		}
	}
	if err := c.Bootstrap.Manifest().Validate(); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	sub := c.Bootstrap.Substitution
	if err := validateFieldLength("bootstrap.substitution.elementId", sub.ElementID, MaxElementIDLen); err != nil {
		return err
	}
	if len(sub.Keys) > MaxMessageKeys {
		return fmt.Errorf("%w: bootstrap.substitution.keys (%d entries, max %d)", ErrFieldTooLong, len(sub.Keys), MaxMessageKeys)
	}
	for i, k := range sub.Keys {
		if err := validateFieldLength(fmt.Sprintf("bootstrap.substitution.keys[%d]", i), k, MaxMessageKeyLen); err != nil {
			return err
		}
	}
	if sub.ElementID != "" || len(sub.Keys) > 0 {
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("bootstrap.substitution: %w", err)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the built-in help page configuration.
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{Locale: DefaultPageLocale},
		Bootstrap: BootstrapConfig{
			Scripts:      []string{"static/js/detect.js", "static/js/ssbrowser.js"},
			Styles:       []string{"static/css/ssbrowser.css"},
			Icons:        []string{"static/images/favicon.svg"},
			Substitution: l10n.DefaultSubstitution(),
		},
		Server:  ServerConfig{Addr: DefaultAddr},
		Browser: BrowserConfig{Timeout: DefaultTimeout.String()},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Unset fields keep the values of DefaultConfig.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over DefaultConfig and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-ssohelp/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-ssohelp", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
