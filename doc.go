// Package ssohelp renders and bootstraps the browser Kerberos setup page: the
// help page a single sign-on portal shows to users whose browser does not yet
// send Kerberos tickets to it.
//
// # Quick Start
//
// Create a builder and render the page for a realm:
//
//	builder, err := ssohelp.NewBuilder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	page, err := builder.Build(ctx, ssohelp.PageInput{
//	    Realm:  "EXAMPLE.COM",
//	    Domain: ".example.com",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("ssbrowser.html", page.HTML, 0644)
//
// # Bootstrap
//
// The page depends on a manifest of scripts, styles and icons:
//
//  1. Styles and icons are injected independently. A path already
//     referenced by the document is not injected twice.
//  2. Scripts load one at a time, in manifest order. A script starts only
//     after the previous one has finished executing.
//  3. After the last script, a completion callback fires exactly once and
//     assigns the localized introduction into the page's message element.
//
// A script failure is terminal: later scripts are not loaded, the
// completion never fires, and the error matches ErrScriptLoad. With an
// empty script list the completion fires immediately. Style and icon
// failures are recorded in the Report and do not stop the bootstrap.
//
// Builder runs the bootstrap against the rendered document. Browser runs the
// same sequence inside a live page in headless Chrome (go-rod), where scripts
// really execute:
//
//	b, err := ssohelp.NewBrowser()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	res, err := b.Bootstrap(ctx, ssohelp.BootstrapInput{
//	    URL: "https://ipa.example.com/ipa/config/ssbrowser.html",
//	})
//
// # Configuration
//
// Use functional options to customize builders and browsers:
//
//	builder, err := ssohelp.NewBuilder(
//	    ssohelp.WithLocale("fr"),
//	    ssohelp.WithTimeout(10 * time.Second),
//	    ssohelp.WithAssetPath("/etc/ssohelp/assets"),
//	    ssohelp.WithManifest(ssohelp.Manifest{Scripts: []string{"static/js/detect.js"}}),
//	)
//
// Per-render values are passed via PageInput.
//
// # Custom Assets
//
// WithAssetPath overrides the embedded page template, prose, messages and
// static files. Missing files fall back to the embedded defaults.
//
// # Parallel Processing
//
// BrowserPool manages several Browser instances for concurrent live
// bootstraps and PDF exports. ResolvePoolSize picks a size from the
// available CPUs.
//
// # Error Handling
//
// Errors wrap sentinels that can be checked with errors.Is:
//
//	if errors.Is(err, ssohelp.ErrScriptLoad) {
//	    var sle *ssohelp.ScriptLoadError
//	    errors.As(err, &sle)
//	    log.Printf("script %d (%s) failed", sle.Index, sle.Path)
//	}
package ssohelp
