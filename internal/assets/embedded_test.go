package assets

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadPage(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	page, err := loader.LoadPage(DefaultPageName)
	if err != nil {
		t.Fatalf("LoadPage(%q) error: %v", DefaultPageName, err)
	}
	for _, part := range []string{`id="ssbrowser-msg"`, "{{.Title}}", "{{.Prose}}", "</head>", "</body>"} {
		if !strings.Contains(page, part) {
			t.Errorf("page template should contain %q", part)
		}
	}

	if _, err := loader.LoadPage("nonexistent"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("LoadPage(nonexistent) error = %v, want ErrPageNotFound", err)
	}
	if _, err := loader.LoadPage("../pages/ssbrowser"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadPage(traversal) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestEmbeddedLoader_LoadProse(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		locale      string
		wantErr     error
		wantContain string
	}{
		{name: "english", locale: "en", wantContain: "network.negotiate-auth.trusted-uris"},
		{name: "french", locale: "fr", wantContain: "Intranet local"},
		{name: "missing locale", locale: "xx", wantErr: ErrProseNotFound},
		{name: "invalid locale", locale: "en.md", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadProse(tt.locale)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadProse(%q) error = %v, want %v", tt.locale, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadProse(%q) unexpected error: %v", tt.locale, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadProse(%q) should contain %q", tt.locale, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_LoadMessages(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	data, err := loader.LoadMessages(DefaultLocale)
	if err != nil {
		t.Fatalf("LoadMessages(en) error: %v", err)
	}
	if !strings.Contains(string(data), "ssbrowser-page:") {
		t.Error("english catalog should define ssbrowser-page messages")
	}
	if _, err := loader.LoadMessages("xx"); !errors.Is(err, ErrMessagesNotFound) {
		t.Errorf("LoadMessages(xx) error = %v, want ErrMessagesNotFound", err)
	}
}

func TestEmbeddedLoader_LoadStatic(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "stylesheet", path: "css/ssbrowser.css"},
		{name: "detect script", path: "js/detect.js"},
		{name: "page script", path: "js/ssbrowser.js"},
		{name: "icon", path: "images/favicon.svg"},
		{name: "missing", path: "js/missing.js", wantErr: ErrStaticNotFound},
		{name: "traversal", path: "../messages/en.yaml", wantErr: ErrInvalidStaticPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := loader.LoadStatic(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStatic(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStatic(%q) unexpected error: %v", tt.path, err)
			}
			if len(data) == 0 {
				t.Errorf("LoadStatic(%q) returned empty content", tt.path)
			}
		})
	}
}

func TestStaticFS(t *testing.T) {
	t.Parallel()

	if _, err := fs.Stat(StaticFS(), "js/detect.js"); err != nil {
		t.Errorf("StaticFS() missing js/detect.js: %v", err)
	}
	if _, err := fs.Stat(StaticFS(), "pages/ssbrowser.html"); err == nil {
		t.Error("StaticFS() must not expose page templates")
	}
}

func TestEmbeddedLoader_ImplementsAssetLoader(t *testing.T) {
	t.Parallel()

	var _ AssetLoader = (*EmbeddedLoader)(nil)
}

func TestLocales(t *testing.T) {
	t.Parallel()

	got := Locales()
	if len(got) != 2 || got[0] != "en" || got[1] != "fr" {
		t.Errorf("Locales() = %v, want [en fr]", got)
	}
}
