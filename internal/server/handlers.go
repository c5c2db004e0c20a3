package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alnah/go-ssohelp"
	"github.com/alnah/go-ssohelp/internal/assets"
)

// pageInput builds the render input for a request.
// ?lang= selects the locale; ?bootstrap=off renders the page without any
// bootstrap resources or substituted text, for a live bootstrap to fill in.
func (s *Server) pageInput(r *http.Request) ssohelp.PageInput {
	input := ssohelp.PageInput{
		Locale:    r.URL.Query().Get(localeQuery),
		Realm:     s.cfg.Realm,
		Domain:    s.cfg.domain(),
		CACertURL: s.cfg.certURL(),
		Title:     s.cfg.Title,
	}
	if r.URL.Query().Get(bootstrapQuery) == bootstrapOffValue {
		input.Manifest = &ssohelp.Manifest{}
		input.Substitution = &ssohelp.Substitution{}
	}
	return input
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.builder.Build(r.Context(), s.pageInput(r))
	if err != nil {
		if page == nil || !errors.Is(err, ssohelp.ErrSubstitution) {
			s.fail(w, r, err)
			return
		}
		// The page is usable without its introduction text.
		s.log(r).Warn("substitution failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", htmlContentType)
	w.Header().Set("Content-Language", page.Locale)
	_, _ = w.Write(page.HTML)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	if s.pool == nil {
		http.Error(w, "PDF export is not enabled", http.StatusServiceUnavailable)
		return
	}

	input := s.pageInput(r)
	input.InlineStyles = true
	page, err := s.builder.Build(r.Context(), input)
	if err != nil && (page == nil || !errors.Is(err, ssohelp.ErrSubstitution)) {
		s.fail(w, r, err)
		return
	}

	browser, err := s.pool.Acquire(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer s.pool.Release(browser)

	pdf, err := browser.PDF(r.Context(), page.HTML)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", `inline; filename="ssbrowser.pdf"`)
	_, _ = w.Write(pdf)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")
	data, err := s.builder.LoadStatic(p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	serveBytes(w, r, p, contentType(p), data)
}

func (s *Server) handleCACert(w http.ResponseWriter, r *http.Request) {
	if s.cfg.CACertPath == "" {
		http.Error(w, "no CA certificate configured", http.StatusNotFound)
		return
	}
	data, err := os.ReadFile(s.cfg.CACertPath) // #nosec G304 -- path comes from server config
	if err != nil {
		s.log(r).Error("reading CA certificate", zap.String("path", s.cfg.CACertPath), zap.Error(err))
		http.Error(w, "CA certificate unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="ca.crt"`)
	serveBytes(w, r, "ca.crt", caCertContentType, data)
}

func (s *Server) handleFirefoxPolicy(w http.ResponseWriter, r *http.Request) {
	if s.policy == nil {
		http.Error(w, "no realm domain configured", http.StatusNotFound)
		return
	}
	s.writePolicy(w, r, s.policy.FirefoxPolicies)
}

func (s *Server) handleChromePolicy(w http.ResponseWriter, r *http.Request) {
	if s.policy == nil {
		http.Error(w, "no realm domain configured", http.StatusNotFound)
		return
	}
	s.writePolicy(w, r, s.policy.ChromePolicies)
}

func (s *Server) writePolicy(w http.ResponseWriter, r *http.Request, render func() ([]byte, error)) {
	data, err := render()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", jsonContentType)
	_, _ = w.Write(data)
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status string `json:"status"`
	Realm  string `json:"realm,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", jsonContentType)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Realm: s.cfg.Realm})
}

// fail maps err to a status code and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log(r).Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.log(r).Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, http.StatusText(status), status)
}

func statusFor(err error) int {
	switch {
	case assets.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ssohelp.ErrInvalidAssetName),
		errors.Is(err, ssohelp.ErrInvalidStatic),
		errors.Is(err, ssohelp.ErrPathTraversal):
		return http.StatusBadRequest
	case errors.Is(err, ssohelp.ErrBrowserClosed),
		errors.Is(err, ssohelp.ErrBrowserConnect):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) log(r *http.Request) *zap.Logger {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}

func serveBytes(w http.ResponseWriter, r *http.Request, name, ctype string, data []byte) {
	w.Header().Set("Content-Type", ctype)
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
}

func contentType(p string) string {
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return defaultContentType
}
