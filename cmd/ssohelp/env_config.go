package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-ssohelp/internal/config"
)

// envPrefix marks the variables read by ssohelp.
const envPrefix = "SSOHELP_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // SSOHELP_CONFIG: config file name or path
	Addr       string // SSOHELP_ADDR: server listen address
	Realm      string // SSOHELP_REALM: Kerberos realm
	Domain     string // SSOHELP_DOMAIN: comma-separated realm domains
	Locale     string // SSOHELP_LOCALE: page locale
	Timeout    string // SSOHELP_TIMEOUT: browser timeout (Go duration)
	Workers    int    // SSOHELP_WORKERS: browser pool size
	AssetPath  string // SSOHELP_ASSET_PATH: custom asset directory
	CACert     string // SSOHELP_CA_CERT: CA certificate file
}

// knownEnvVars lists valid SSOHELP_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"SSOHELP_CONFIG":     true,
	"SSOHELP_ADDR":       true,
	"SSOHELP_REALM":      true,
	"SSOHELP_DOMAIN":     true,
	"SSOHELP_LOCALE":     true,
	"SSOHELP_TIMEOUT":    true,
	"SSOHELP_WORKERS":    true,
	"SSOHELP_ASSET_PATH": true,
	"SSOHELP_CA_CERT":    true,
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("SSOHELP_CONFIG"),
		Addr:       getenv("SSOHELP_ADDR"),
		Realm:      getenv("SSOHELP_REALM"),
		Domain:     getenv("SSOHELP_DOMAIN"),
		Locale:     getenv("SSOHELP_LOCALE"),
		Timeout:    getenv("SSOHELP_TIMEOUT"),
		AssetPath:  getenv("SSOHELP_ASSET_PATH"),
		CACert:     getenv("SSOHELP_CA_CERT"),
	}

	if workers := getenv("SSOHELP_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized SSOHELP_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to cfg.
// Resulting priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via applyFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Realm != "" {
		cfg.Realm.Name = env.Realm
	}
	if env.Domain != "" {
		cfg.Realm.Domains = splitList(env.Domain)
	}
	if env.Locale != "" {
		cfg.Page.Locale = env.Locale
	}
	if env.Timeout != "" {
		cfg.Browser.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Browser.Workers = env.Workers
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.CACert != "" {
		cfg.Realm.CACertPath = env.CACert
	}
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
