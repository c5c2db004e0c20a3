package main

import (
	"errors"
	"os"

	"github.com/alnah/go-ssohelp"
	"github.com/alnah/go-ssohelp/internal/browserpolicy"
	"github.com/alnah/go-ssohelp/internal/config"
	"github.com/alnah/go-ssohelp/internal/fileutil"
)

// Exit codes for the ssohelp CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Command completed
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // File not found, permission denied
	ExitBrowser   = 4 // Browser/Chrome errors
	ExitBootstrap = 5 // A bootstrap script failed to load
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Bootstrap failures (exit 5)
	if errors.Is(err, ssohelp.ErrScriptLoad) {
		return ExitBootstrap
	}

	// Browser errors (exit 4)
	if errors.Is(err, ssohelp.ErrBrowserConnect) ||
		errors.Is(err, ssohelp.ErrPageCreate) ||
		errors.Is(err, ssohelp.ErrPageLoad) ||
		errors.Is(err, ssohelp.ErrPDFGeneration) ||
		errors.Is(err, ssohelp.ErrBrowserClosed) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, fileutil.ErrEmptyOutputPath) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, browserpolicy.ErrNoDomains) ||
		errors.Is(err, browserpolicy.ErrInvalidDomain) ||
		errors.Is(err, ssohelp.ErrInvalidAssetPath) ||
		errors.Is(err, ssohelp.ErrInvalidAssetName) ||
		errors.Is(err, ssohelp.ErrEmptyPath) ||
		errors.Is(err, ssohelp.ErrDuplicateScript) ||
		errors.Is(err, ssohelp.ErrPageNotFound) ||
		errors.Is(err, ssohelp.ErrPageTemplate) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
