package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-ssohelp"
	"github.com/alnah/go-ssohelp/internal/fileutil"
	"github.com/alnah/go-ssohelp/internal/hints"
)

// Default render outputs.
const (
	defaultHTMLOutput = "ssbrowser.html"
	defaultPDFOutput  = "ssbrowser.pdf"
	caCertFileName    = "ca.crt"
)

// runRenderCmd renders the help page to an HTML or PDF file.
func runRenderCmd(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		printRenderUsage(env.Stderr)
		return fmt.Errorf("%w: render takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(&f.common, env, nil)
	if err != nil {
		return err
	}
	logger, err := newLogger(&f.common, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts, err := libraryOptions(cfg, logger)
	if err != nil {
		return err
	}
	builder, err := ssohelp.NewBuilder(opts...)
	if err != nil {
		return err
	}

	output := f.output
	if output == "" {
		output = defaultHTMLOutput
		if f.pdf {
			output = defaultPDFOutput
		}
	}
	outDir := filepath.Dir(output)

	input := pageInputFor(cfg)
	input.InlineStyles = f.pdf
	// A standalone HTML page links the certificate copied next to it.
	if !f.pdf && input.CACertURL == "" && cfg.Realm.CACertPath != "" {
		if err := copyCACert(cfg.Realm.CACertPath, filepath.Join(outDir, caCertFileName)); err != nil {
			return err
		}
		input.CACertURL = caCertFileName
	}

	page, err := builder.Build(ctx, input)
	if err != nil {
		if page == nil || !errors.Is(err, ssohelp.ErrSubstitution) {
			return err
		}
		logger.Warn("page rendered without introduction text", zap.Error(err))
	}
	printInjectWarnings(env.Stderr, page.Report, f.common.quiet)

	data := page.HTML
	if f.pdf {
		data, err = renderPDF(ctx, page.HTML, opts)
		if err != nil {
			return err
		}
	}

	if err := fileutil.WriteOutput(output, data); err != nil {
		return fmt.Errorf("%w: %w%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}

	if !f.pdf && !f.noStatic {
		if err := copyStatic(builder, cfg.Bootstrap.Manifest(), outDir); err != nil {
			return err
		}
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "wrote %s\n", output)
	}
	return nil
}

// renderPDF exports html with a short-lived browser.
func renderPDF(ctx context.Context, html []byte, opts []ssohelp.Option) ([]byte, error) {
	browser, err := ssohelp.NewBrowser(opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = browser.Close() }()

	pdf, err := browser.PDF(ctx, html)
	if err != nil {
		return nil, withBrowserHint(err)
	}
	return pdf, nil
}

// copyStatic writes the manifest's local static files below dir, at the
// paths the page references them by. Absolute URLs are skipped.
func copyStatic(builder *ssohelp.Builder, m ssohelp.Manifest, dir string) error {
	seen := make(map[string]bool)
	for _, r := range m.Resources() {
		p := r.Path
		if seen[p] || fileutil.IsURL(p) || strings.HasPrefix(p, "/") {
			continue
		}
		seen[p] = true

		data, err := builder.LoadStatic(p)
		if err != nil {
			return fmt.Errorf("copying %s: %w", p, err)
		}
		if err := fileutil.WriteOutput(filepath.Join(dir, filepath.FromSlash(p)), data); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}
	return nil
}

// copyCACert copies the realm certificate to dst.
func copyCACert(src, dst string) error {
	data, err := os.ReadFile(src) // #nosec G304 -- path comes from config
	if err != nil {
		return fmt.Errorf("reading CA certificate: %w", err)
	}
	if err := fileutil.WriteOutput(dst, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// printInjectWarnings reports styles and icons that could not be placed.
func printInjectWarnings(w io.Writer, report *ssohelp.Report, quiet bool) {
	if quiet || report == nil {
		return
	}
	for _, err := range report.InjectErrors {
		var ierr *ssohelp.InjectError
		if errors.As(err, &ierr) {
			fmt.Fprintf(w, "warning: %s %s not injected: %v\n", ierr.Resource.Kind, ierr.Resource.Path, ierr.Err)
			continue
		}
		fmt.Fprintf(w, "warning: %v\n", err)
	}
}
