package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-ssohelp"
	"github.com/alnah/go-ssohelp/internal/config"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	Setup    setupInfo  `json:"setup"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// setupInfo holds help page configuration results.
type setupInfo struct {
	Config    string   `json:"config,omitempty"`
	Realm     string   `json:"realm,omitempty"`
	Domains   []string `json:"domains,omitempty"`
	CACert    bool     `json:"ca_cert"`
	AssetPath string   `json:"asset_path,omitempty"`
	Locales   []string `json:"locales"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result, env)
	checkSetup(result, env)
	checkSystem(result)

	// Errors win over warnings
	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		// Fall back to rod's launcher lookup
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	// ROD_BROWSER_BIN may point at a missing file
	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	// Version from chrome --version; failure is only a warning
	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- path from launcher or ROD_BROWSER_BIN
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// Sandbox is off only with ROD_NO_SANDBOX=1
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	// Container (several signals)
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	// CI providers
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// Chrome's sandbox usually fails there
	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	// Explicit override first
	if getenv("SSOHELP_CONTAINER") == "1" {
		return true, "SSOHELP_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman and systemd-nspawn set container=
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSetup loads the configuration the other commands would use.
func checkSetup(result *doctorResult, env *Environment) {
	result.Setup.Locales = ssohelp.Locales()

	// Same resolution as the other commands, without flags
	envCfg := loadEnvConfig(env.Getenv)
	cfg := config.DefaultConfig()
	if envCfg.ConfigPath != "" {
		loaded, err := config.LoadConfig(envCfg.ConfigPath)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		} else {
			cfg = loaded
			result.Setup.Config = envCfg.ConfigPath
		}
	}
	applyEnvConfig(envCfg, cfg)

	if err := cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
	}

	// Realm and domains
	result.Setup.Realm = cfg.Realm.Name
	result.Setup.Domains = cfg.Realm.Domains
	if len(cfg.Realm.Domains) == 0 {
		result.Warnings = append(result.Warnings,
			"No realm domain configured. The page shows .example.com; set SSOHELP_DOMAIN")
	}

	// CA certificate: a file to serve, or an external URL
	if path := cfg.Realm.CACertPath; path != "" {
		if _, err := os.Stat(path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("CA certificate not readable: %s", path))
		} else {
			result.Setup.CACert = true
		}
	} else if cfg.Realm.CACertURL != "" {
		result.Setup.CACert = true
	}

	// Custom assets must open as a loader
	if path := cfg.Assets.BasePath; path != "" {
		result.Setup.AssetPath = path
		if _, err := ssohelp.NewAssetLoader(path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Asset path: %v", err))
		}
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	// PDF export and Chrome profiles need a writable temp directory
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "ssohelp-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "ssohelp doctor")
	fmt.Fprintln(w)

	// Chrome section
	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// Setup section
	fmt.Fprintln(w, "Help page")
	if r.Setup.Config != "" {
		fmt.Fprintf(w, "  [OK] Config: %s\n", r.Setup.Config)
	}
	if r.Setup.Realm != "" {
		fmt.Fprintf(w, "  [OK] Realm: %s\n", r.Setup.Realm)
	}
	if len(r.Setup.Domains) > 0 {
		fmt.Fprintf(w, "  [OK] Domains: %s\n", strings.Join(r.Setup.Domains, ", "))
	}
	if r.Setup.CACert {
		fmt.Fprintln(w, "  [OK] CA certificate: configured")
	}
	if r.Setup.AssetPath != "" {
		fmt.Fprintf(w, "  [OK] Asset path: %s\n", r.Setup.AssetPath)
	}
	fmt.Fprintf(w, "  [OK] Built-in locales: %s\n", strings.Join(r.Setup.Locales, ", "))
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to serve")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
