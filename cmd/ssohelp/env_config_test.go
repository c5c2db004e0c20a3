package main

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-ssohelp/internal/config"
)

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"SSOHELP_CONFIG":     "corp",
		"SSOHELP_ADDR":       ":9090",
		"SSOHELP_REALM":      "EXAMPLE.COM",
		"SSOHELP_DOMAIN":     "example.com",
		"SSOHELP_LOCALE":     "fr",
		"SSOHELP_TIMEOUT":    "1m",
		"SSOHELP_WORKERS":    "3",
		"SSOHELP_ASSET_PATH": "/srv/assets",
		"SSOHELP_CA_CERT":    "/etc/ipa/ca.crt",
	}
	got := loadEnvConfig(func(k string) string { return vars[k] })

	want := &envConfig{
		ConfigPath: "corp",
		Addr:       ":9090",
		Realm:      "EXAMPLE.COM",
		Domain:     "example.com",
		Locale:     "fr",
		Timeout:    "1m",
		Workers:    3,
		AssetPath:  "/srv/assets",
		CACert:     "/etc/ipa/ca.crt",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("loadEnvConfig() = %+v, want %+v", got, want)
	}
}

func TestLoadEnvConfig_InvalidWorkers(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"abc", "0", "-2"} {
		got := loadEnvConfig(func(k string) string {
			if k == "SSOHELP_WORKERS" {
				return v
			}
			return ""
		})
		if got.Workers != 0 {
			t.Errorf("SSOHELP_WORKERS=%q: Workers = %d, want 0", v, got.Workers)
		}
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides set values", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		applyEnvConfig(&envConfig{
			Addr:      ":9090",
			Realm:     "EXAMPLE.COM",
			Domain:    "example.com, lab.example.com,",
			Locale:    "fr",
			Timeout:   "45s",
			Workers:   2,
			AssetPath: "/srv/assets",
			CACert:    "/etc/ipa/ca.crt",
		}, cfg)

		if cfg.Server.Addr != ":9090" || cfg.Realm.Name != "EXAMPLE.COM" || cfg.Page.Locale != "fr" {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if want := []string{"example.com", "lab.example.com"}; !reflect.DeepEqual(cfg.Realm.Domains, want) {
			t.Errorf("Domains = %v, want %v", cfg.Realm.Domains, want)
		}
		if cfg.Browser.Timeout != "45s" || cfg.Browser.Workers != 2 {
			t.Errorf("Browser = %+v", cfg.Browser)
		}
		if cfg.Assets.BasePath != "/srv/assets" || cfg.Realm.CACertPath != "/etc/ipa/ca.crt" {
			t.Errorf("paths not applied: %+v", cfg)
		}
	})

	t.Run("empty leaves defaults", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		applyEnvConfig(&envConfig{}, cfg)
		if !reflect.DeepEqual(cfg, config.DefaultConfig()) {
			t.Errorf("config changed: %+v", cfg)
		}
	})
}

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"HOME=/root",
		"SSOHELP_REALM=EXAMPLE.COM",
		"SSOHELP_RELAM=EXAMPLE.COM",
		"SSOHELP_PORT=8080",
	})

	out := buf.String()
	for _, want := range []string{"SSOHELP_RELAM", "SSOHELP_PORT"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing warning for %s: %q", want, out)
		}
	}
	if strings.Contains(out, "SSOHELP_REALM ") || strings.Contains(out, "HOME") {
		t.Errorf("unexpected warning: %q", out)
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , ,b ,", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	t.Parallel()

	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("loadDotEnv() error = %v, want nil", err)
	}
}
