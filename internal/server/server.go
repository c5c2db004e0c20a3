// Package server serves the help page, its static assets, the realm CA
// certificate and generated browser policies over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alnah/go-ssohelp"
	"github.com/alnah/go-ssohelp/internal/browserpolicy"
)

// HTTP server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// Routes.
const (
	PagePath           = "/ssbrowser.html"
	PDFPath            = "/ssbrowser.pdf"
	CACertPath         = "/ca.crt"
	FirefoxPolicyPath  = "/policies/firefox.json"
	ChromePolicyPath   = "/policies/chrome.json"
	HealthPath         = "/healthz"
	staticPrefix       = "/static/"
	bootstrapQuery     = "bootstrap"
	localeQuery        = "lang"
	bootstrapOffValue  = "off"
	caCertContentType  = "application/x-x509-ca-cert"
	pdfContentType     = "application/pdf"
	jsonContentType    = "application/json"
	htmlContentType    = "text/html; charset=utf-8"
	defaultContentType = "application/octet-stream"
)

// ErrNilBuilder is returned by New when no page builder is given.
var ErrNilBuilder = errors.New("server: builder must not be nil")

// Config describes what the server publishes.
type Config struct {
	Addr       string
	Realm      string
	Domains    []string
	CACertPath string // File served at /ca.crt (empty = 404)
	CACertURL  string // Link target on the page (empty = /ca.crt when CACertPath is set)
	Title      string
	Delegate   bool
	Locked     bool
}

// domain returns the first domain, used in the page prose.
func (c Config) domain() string {
	if len(c.Domains) == 0 {
		return ""
	}
	return c.Domains[0]
}

// certURL returns the page's CA certificate link target.
func (c Config) certURL() string {
	if c.CACertURL != "" {
		return c.CACertURL
	}
	if c.CACertPath != "" {
		return CACertPath
	}
	return ""
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for requests and failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPool enables /ssbrowser.pdf, rendered with browsers from pool.
// The server does not close the pool.
func WithPool(pool *ssohelp.BrowserPool) Option {
	return func(s *Server) { s.pool = pool }
}

// Server is the help page HTTP server.
type Server struct {
	cfg     Config
	builder *ssohelp.Builder
	pool    *ssohelp.BrowserPool
	policy  *browserpolicy.Policy // nil when no domain is configured
	logger  *zap.Logger
	router  chi.Router
}

// New creates a Server with all routes configured.
// Returns error if a configured domain is invalid.
func New(cfg Config, builder *ssohelp.Builder, opts ...Option) (*Server, error) {
	if builder == nil {
		return nil, ErrNilBuilder
	}

	s := &Server{cfg: cfg, builder: builder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if len(cfg.Domains) > 0 {
		p, err := browserpolicy.New(cfg.Domains, cfg.Delegate, cfg.Locked)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.policy = p
	}

	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get(PagePath, s.handlePage)
	r.Get(PDFPath, s.handlePDF)
	r.Get(CACertPath, s.handleCACert)
	r.Get(FirefoxPolicyPath, s.handleFirefoxPolicy)
	r.Get(ChromePolicyPath, s.handleChromePolicy)
	r.Get(HealthPath, s.handleHealth)
	r.Get(staticPrefix+"*", s.handleStatic)

	return r
}

// ListenAndServe listens on the configured address and serves until ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. Returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
