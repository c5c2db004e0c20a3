package ssohelp

import (
	"errors"

	"github.com/alnah/go-ssohelp/internal/assets"
	"github.com/alnah/go-ssohelp/internal/bootstrap"
	"github.com/alnah/go-ssohelp/internal/document"
	"github.com/alnah/go-ssohelp/internal/l10n"
)

// Sentinel errors for library operations.
var (
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrPageTemplate     = errors.New("page template rendering failed")
	ErrHTMLConversion   = errors.New("HTML conversion failed")
	ErrSubstitution     = errors.New("text substitution failed")
	ErrEmptyHTML        = errors.New("HTML content cannot be empty")
	ErrEmptyURL         = errors.New("page URL cannot be empty")
	ErrPDFGeneration    = errors.New("PDF generation failed")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageCreate       = errors.New("failed to create browser page")
	ErrPageLoad         = errors.New("failed to load page")
	ErrBrowserClosed    = errors.New("browser is closed")
)

// Bootstrap errors.
var (
	ErrScriptLoad  = bootstrap.ErrScriptLoad
	ErrStyleInject = bootstrap.ErrStyleInject
	ErrIconInject  = bootstrap.ErrIconInject
	ErrEmptyPath   = bootstrap.ErrEmptyPath

	ErrDuplicateScript = bootstrap.ErrDuplicateScript
	ErrObserverPanic   = bootstrap.ErrObserverPanic
)

// Asset, message and element errors.
var (
	ErrPageNotFound     = assets.ErrPageNotFound
	ErrProseNotFound    = assets.ErrProseNotFound
	ErrStaticNotFound   = assets.ErrStaticNotFound
	ErrInvalidAssetName = assets.ErrInvalidAssetName
	ErrInvalidStatic    = assets.ErrInvalidStaticPath
	ErrPathTraversal    = assets.ErrPathTraversal
	ErrMessageNotFound  = l10n.ErrMessageNotFound
	ErrElementNotFound  = document.ErrElementNotFound
)
