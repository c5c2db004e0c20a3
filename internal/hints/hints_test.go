package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		inContainer bool
		env         map[string]string
		want        []string
		notWant     []string
	}{
		{
			name: "CI without sandbox or binary",
			env:  map[string]string{"CI": "true"},
			want: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN"},
		},
		{
			name:        "docker without sandbox",
			inContainer: true,
			want:        []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "sandbox already disabled",
			inContainer: true,
			env:         map[string]string{"ROD_NO_SANDBOX": "1"},
			notWant:     []string{"ROD_NO_SANDBOX"},
		},
		{
			name:    "desktop with custom binary",
			env:     map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"},
			notWant: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.inContainer }

			for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"} {
				t.Setenv(k, tt.env[k])
			}

			hint := ForBrowserConnect()
			for _, w := range tt.want {
				if !strings.Contains(hint, w) {
					t.Errorf("hint %q should mention %s", hint, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(hint, w) {
					t.Errorf("hint %q should not mention %s", hint, w)
				}
			}
		})
	}
}

func TestForBrowserConnect_AllConfigured(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chrome")

	if hint := ForBrowserConnect(); hint != "" {
		t.Errorf("expected empty hint when all configured, got %q", hint)
	}
}

func TestForTimeout(t *testing.T) {
	hint := ForTimeout()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "--timeout") {
		t.Error("expected --timeout flag mention")
	}
}

func TestForConfigNotFound(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			contains: "--config",
		},
		{
			name:     "with user config path",
			paths:    []string{"./site.yaml", "/home/u/.config/go-ssohelp/site.yaml"},
			contains: "or create /home/u/.config/go-ssohelp/site.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.paths)

			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForScriptLoad(t *testing.T) {
	if hint := ForScriptLoad(""); hint != "" {
		t.Errorf("expected empty hint for empty path, got %q", hint)
	}

	hint := ForScriptLoad("static/js/ssbrowser.js")
	if !strings.Contains(hint, "static/js/ssbrowser.js") {
		t.Errorf("expected script path in hint, got %q", hint)
	}
	if !strings.Contains(hint, "console") {
		t.Errorf("expected console mention, got %q", hint)
	}
}

func TestForAssetsDir(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		contains  string
		excludes  string
	}{
		{
			name:     "no locales",
			contains: "static/",
			excludes: "locales",
		},
		{
			name:      "with locales",
			available: []string{"en", "fr"},
			contains:  "built-in locales: en, fr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForAssetsDir(tt.available)

			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
			if tt.excludes != "" && strings.Contains(hint, tt.excludes) {
				t.Errorf("hint should not contain %q, got %q", tt.excludes, hint)
			}
		})
	}
}

func TestFormat_Consistency(t *testing.T) {
	hints := []string{
		ForTimeout(),
		ForOutputDirectory(),
		ForMissingDomain(),
		ForCACertNotConfigured(),
		ForScriptLoad("a.js"),
		ForAssetsDir(nil),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
