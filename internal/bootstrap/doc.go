// Package bootstrap loads the resources a help page depends on before the
// page-specific initialization runs.
//
// # Sequencing
//
// Scripts are loaded strictly front-to-back: script N+1 is not requested
// until script N has finished executing. Once the last script completes, a
// single-shot Completion resolves and its one observer runs exactly once.
// A script that fails to load ends the sequence; later scripts are never
// requested and the observer never runs.
//
// Styles and icons are fire-and-forget. They are injected once per unique
// path, in no particular order, and a failure on one of them is recorded in
// the Report without affecting anything else.
//
// # Targets
//
// The loader is independent of where resources end up. A ScriptRunner
// fetches and executes one script; an Injector inserts style and icon
// references. internal/document implements both for a static HTML page and
// the root package implements both for a live headless Chrome page.
//
//	loader := bootstrap.NewLoader(doc, doc, bootstrap.WithLogger(logger))
//	report, err := loader.Run(ctx, manifest, func() {
//	    // scripts finished; substitute localized text
//	})
package bootstrap
