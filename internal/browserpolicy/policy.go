// Package browserpolicy generates the browser settings that allow Kerberos
// (SPNEGO) negotiation with the servers of a domain.
package browserpolicy

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for policy generation.
var (
	ErrNoDomains     = errors.New("at least one domain is required")
	ErrInvalidDomain = errors.New("invalid domain")
)

// Firefox about:config preferences.
const (
	PrefTrustedURIs    = "network.negotiate-auth.trusted-uris"
	PrefDelegationURIs = "network.negotiate-auth.delegation-uris"
)

// Policy describes which domains a browser may negotiate with.
type Policy struct {
	Domains  []string // e.g. ".example.com"
	Delegate bool     // also allow credential delegation
	Locked   bool     // prevent users from changing the settings
}

// New validates domains and returns a Policy. Domains are normalized to a
// leading dot and lowercase, and deduplicated.
func New(domains []string, delegate, locked bool) (*Policy, error) {
	norm, err := normalizeDomains(domains)
	if err != nil {
		return nil, err
	}
	return &Policy{Domains: norm, Delegate: delegate, Locked: locked}, nil
}

func normalizeDomains(domains []string) ([]string, error) {
	seen := make(map[string]struct{}, len(domains))
	var out []string
	for _, d := range domains {
		n, err := NormalizeDomain(d)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, ErrNoDomains
	}
	return out, nil
}

// NormalizeDomain lowercases d and gives it a leading dot.
// Schemes, paths, ports, wildcards and whitespace are rejected.
func NormalizeDomain(d string) (string, error) {
	d = strings.ToLower(strings.TrimSpace(d))
	if d == "" || d == "." {
		return "", fmt.Errorf("%w: empty", ErrInvalidDomain)
	}
	if strings.ContainsAny(d, " \t/:*@?#,") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, d)
	}
	if !strings.HasPrefix(d, ".") {
		d = "." + d
	}
	for _, label := range strings.Split(d[1:], ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "", fmt.Errorf("%w: %q", ErrInvalidDomain, d)
		}
	}
	return d, nil
}

// FirefoxPolicies returns the enterprise policies.json document.
func (p *Policy) FirefoxPolicies() ([]byte, error) {
	auth := map[string]any{
		"SPNEGO": p.Domains,
	}
	if p.Delegate {
		auth["Delegated"] = p.Domains
	}
	if p.Locked {
		auth["Locked"] = true
	}
	doc := map[string]any{
		"policies": map[string]any{
			"Authentication": auth,
		},
	}
	return marshal(doc)
}

// ChromePolicies returns a managed policy JSON document.
func (p *Policy) ChromePolicies() ([]byte, error) {
	list := p.wildcards()
	doc := map[string]any{
		"AuthServerAllowlist": strings.Join(list, ","),
	}
	if p.Delegate {
		doc["AuthNegotiateDelegateAllowlist"] = strings.Join(list, ",")
	}
	return marshal(doc)
}

// FirefoxPrefs returns about:config preferences, sorted by name.
func (p *Policy) FirefoxPrefs() []Pref {
	value := strings.Join(p.Domains, ",")
	prefs := []Pref{{Name: PrefTrustedURIs, Value: value}}
	if p.Delegate {
		prefs = append(prefs, Pref{Name: PrefDelegationURIs, Value: value})
	}
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].Name < prefs[j].Name })
	return prefs
}

// ChromeFlag returns the command line switch equivalent of the policy.
func (p *Policy) ChromeFlag() string {
	return fmt.Sprintf("--auth-server-allowlist=%q", strings.Join(p.wildcards(), ","))
}

// wildcards turns ".example.com" into "*.example.com".
func (p *Policy) wildcards() []string {
	out := make([]string, len(p.Domains))
	for i, d := range p.Domains {
		out[i] = "*" + d
	}
	return out
}

// Pref is one about:config preference.
type Pref struct {
	Name  string
	Value string
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding policy: %w", err)
	}
	return append(data, '\n'), nil
}
