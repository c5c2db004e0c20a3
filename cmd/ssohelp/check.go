package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-ssohelp"
	"github.com/alnah/go-ssohelp/internal/fileutil"
	"github.com/alnah/go-ssohelp/internal/hints"
	"github.com/alnah/go-ssohelp/internal/server"
)

// runCheckCmd runs the bootstrap in headless Chrome against a page and
// reports every resource. Without a URL, the built-in page is served on a
// loopback port without bootstrap resources, so the live run places all of
// them.
func runCheckCmd(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseCheckFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		printCheckUsage(env.Stderr)
		return fmt.Errorf("%w: check takes at most one URL", ErrUsage)
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

	var pageURL string
	if len(positional) == 1 {
		pageURL = positional[0]
		if !fileutil.IsURL(pageURL) {
			return fmt.Errorf("%w: %q is not an http(s) or file URL", ErrUsage, pageURL)
		}
	} else {
		builder, err := ssohelp.NewBuilder(opts...)
		if err != nil {
			return err
		}
		srv, err := server.New(serverConfig(cfg), builder)
		if err != nil {
			return err
		}
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("starting local server: %w", err)
		}

		srvCtx, stop := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = srv.Serve(srvCtx, ln)
		}()
		defer func() {
			stop()
			<-done
		}()

		q := url.Values{}
		q.Set("bootstrap", "off")
		q.Set("lang", cfg.Page.Locale)
		pageURL = "http://" + ln.Addr().String() + server.PagePath + "?" + q.Encode()
	}

	browser, err := ssohelp.NewBrowser(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = browser.Close() }()

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Checking %s\n\n", pageURL)
	}

	res, err := browser.Bootstrap(ctx, ssohelp.BootstrapInput{URL: pageURL})
	if res != nil && !f.common.quiet {
		printCheckReport(env.Stdout, cfg.Bootstrap.Scripts, res, err)
	}

	var sle *ssohelp.ScriptLoadError
	if errors.As(err, &sle) {
		return fmt.Errorf("%w%s", err, hints.ForScriptLoad(sle.Path))
	}
	return withBrowserHint(err)
}

// printCheckReport prints one line per resource followed by the status.
func printCheckReport(w io.Writer, scripts []string, res *ssohelp.BootstrapResult, err error) {
	r := res.Report

	for _, inj := range r.Injected {
		fmt.Fprintf(w, "  [OK] %s %s\n", inj.Kind, inj.Path)
	}
	for _, e := range r.InjectErrors {
		var ierr *ssohelp.InjectError
		if errors.As(e, &ierr) {
			fmt.Fprintf(w, "  [WARN] %s %s: %v\n", ierr.Resource.Kind, ierr.Resource.Path, ierr.Err)
		}
	}

	total := len(scripts)
	for i, p := range r.Loaded {
		fmt.Fprintf(w, "  [OK] script %d/%d %s\n", i+1, total, p)
	}

	var sle *ssohelp.ScriptLoadError
	if errors.As(err, &sle) {
		fmt.Fprintf(w, "  [ERROR] script %d/%d %s: %v\n", sle.Index+1, total, sle.Path, sle.Err)
		for i := sle.Index + 1; i < total; i++ {
			fmt.Fprintf(w, "  [SKIP] script %d/%d %s\n", i+1, total, scripts[i])
		}
	}
	fmt.Fprintln(w)

	switch {
	case r.Completed && err == nil:
		fmt.Fprintf(w, "Status: complete in %s\n", r.Duration.Round(time.Millisecond))
		if res.Text != "" {
			fmt.Fprintf(w, "Text: %s\n", res.Text)
		}
	case r.Completed:
		fmt.Fprintln(w, "Status: scripts loaded, text substitution failed")
	default:
		fmt.Fprintln(w, "Status: bootstrap stopped, completion not invoked")
	}
}
