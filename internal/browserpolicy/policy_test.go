package browserpolicy

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "example.com", want: ".example.com"},
		{input: ".Example.COM", want: ".example.com"},
		{input: "  ipa.example.com ", want: ".ipa.example.com"},
		{input: "", wantErr: true},
		{input: ".", wantErr: true},
		{input: "https://example.com", wantErr: true},
		{input: "example.com/ipa", wantErr: true},
		{input: "*.example.com", wantErr: true},
		{input: "example..com", wantErr: true},
		{input: "-bad.example.com", wantErr: true},
		{input: "a b.com", wantErr: true},
		{input: "a.com,b.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeDomain(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDomain) {
					t.Errorf("NormalizeDomain(%q) error = %v, want ErrInvalidDomain", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDomain(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"example.com", ".EXAMPLE.com", "lab.example.org"}, true, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	want := []string{".example.com", ".lab.example.org"}
	if !reflect.DeepEqual(p.Domains, want) {
		t.Errorf("Domains = %v, want %v", p.Domains, want)
	}

	if _, err := New(nil, false, false); !errors.Is(err, ErrNoDomains) {
		t.Errorf("New(nil) error = %v, want ErrNoDomains", err)
	}
}

func TestFirefoxPolicies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		delegate bool
		locked   bool
		want     map[string]any
	}{
		{
			name: "spnego only",
			want: map[string]any{"SPNEGO": []any{".example.com"}},
		},
		{
			name:     "delegated and locked",
			delegate: true,
			locked:   true,
			want: map[string]any{
				"SPNEGO":    []any{".example.com"},
				"Delegated": []any{".example.com"},
				"Locked":    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := New([]string{"example.com"}, tt.delegate, tt.locked)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			data, err := p.FirefoxPolicies()
			if err != nil {
				t.Fatalf("FirefoxPolicies() error: %v", err)
			}

			var doc struct {
				Policies struct {
					Authentication map[string]any `json:"Authentication"`
				} `json:"policies"`
			}
			if err := json.Unmarshal(data, &doc); err != nil {
				t.Fatalf("FirefoxPolicies() is not valid JSON: %v", err)
			}
			if !reflect.DeepEqual(doc.Policies.Authentication, tt.want) {
				t.Errorf("Authentication = %v, want %v", doc.Policies.Authentication, tt.want)
			}
		})
	}
}

func TestChromePolicies(t *testing.T) {
	t.Parallel()

	p, err := New([]string{"example.com", "example.org"}, true, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	data, err := p.ChromePolicies()
	if err != nil {
		t.Fatalf("ChromePolicies() error: %v", err)
	}

	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("ChromePolicies() is not valid JSON: %v", err)
	}
	want := map[string]string{
		"AuthServerAllowlist":            "*.example.com,*.example.org",
		"AuthNegotiateDelegateAllowlist": "*.example.com,*.example.org",
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("ChromePolicies() = %v, want %v", doc, want)
	}
}

func TestFirefoxPrefs(t *testing.T) {
	t.Parallel()

	p, _ := New([]string{"example.com"}, true, false)
	want := []Pref{
		{Name: PrefDelegationURIs, Value: ".example.com"},
		{Name: PrefTrustedURIs, Value: ".example.com"},
	}
	if got := p.FirefoxPrefs(); !reflect.DeepEqual(got, want) {
		t.Errorf("FirefoxPrefs() = %v, want %v", got, want)
	}

	p, _ = New([]string{"example.com"}, false, false)
	if got := p.FirefoxPrefs(); len(got) != 1 || got[0].Name != PrefTrustedURIs {
		t.Errorf("FirefoxPrefs() without delegation = %v", got)
	}
}

func TestChromeFlag(t *testing.T) {
	t.Parallel()

	p, _ := New([]string{"example.com"}, false, false)
	if got, want := p.ChromeFlag(), `--auth-server-allowlist="*.example.com"`; got != want {
		t.Errorf("ChromeFlag() = %q, want %q", got, want)
	}
}
