package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-ssohelp/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	realm     string
	domains   []string
	locale    string
	timeout   string
	assetPath string
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common   commonFlags
	output   string
	pdf      bool
	noStatic bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	workers int
	caCert  string
	noPDF   bool
}

// checkFlags holds flags for the check command.
type checkFlags struct {
	common commonFlags
}

// policyFlags holds flags for the policy command.
type policyFlags struct {
	common   commonFlags
	delegate bool
	locked   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logging")
	fs.StringVarP(&f.realm, "realm", "r", "", "Kerberos realm, e.g. EXAMPLE.COM")
	fs.StringSliceVarP(&f.domains, "domain", "d", nil, "realm DNS domain (repeatable)")
	fs.StringVarP(&f.locale, "locale", "l", "", "page locale (e.g. en, fr)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "browser timeout (e.g. 30s, 2m)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parse parses args, marking flag errors as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", printRenderUsage, stderr)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: ssbrowser.html or ssbrowser.pdf)")
	fs.BoolVar(&f.pdf, "pdf", false, "render to PDF with headless Chrome")
	fs.BoolVar(&f.noStatic, "no-static", false, "do not copy static files next to the HTML")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", printServeUsage, stderr)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default: "+config.DefaultAddr+")")
	fs.IntVarP(&f.workers, "workers", "w", 0, "browsers for PDF export (0 = auto)")
	fs.StringVar(&f.caCert, "ca-cert", "", "CA certificate file served at /ca.crt")
	fs.BoolVar(&f.noPDF, "no-pdf", false, "disable /ssbrowser.pdf")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseCheckFlags parses check command flags and returns positional args.
func parseCheckFlags(args []string, stderr io.Writer) (*checkFlags, []string, error) {
	f := &checkFlags{}
	fs := newFlagSet("check", printCheckUsage, stderr)
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePolicyFlags parses policy command flags and returns positional args.
func parsePolicyFlags(args []string, stderr io.Writer) (*policyFlags, []string, error) {
	f := &policyFlags{}
	fs := newFlagSet("policy", printPolicyUsage, stderr)
	fs.BoolVar(&f.delegate, "delegate", false, "allow credential delegation")
	fs.BoolVar(&f.locked, "locked", false, "prevent users from changing the settings (Firefox)")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// applyCommonFlags applies flag values to cfg. Flags win over everything.
func applyCommonFlags(f *commonFlags, cfg *config.Config) {
	if f.realm != "" {
		cfg.Realm.Name = f.realm
	}
	if len(f.domains) > 0 {
		cfg.Realm.Domains = f.domains
	}
	if f.locale != "" {
		cfg.Page.Locale = f.locale
	}
	if f.timeout != "" {
		cfg.Browser.Timeout = f.timeout
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
}
