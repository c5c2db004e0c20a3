package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-ssohelp"
)

func newTestServer(t *testing.T, cfg Config, opts ...Option) *Server {
	t.Helper()
	builder, err := ssohelp.NewBuilder()
	require.NoError(t, err)
	s, err := New(cfg, builder, opts...)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil builder", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{}, nil)
		assert.ErrorIs(t, err, ErrNilBuilder)
	})

	t.Run("invalid domain", func(t *testing.T) {
		t.Parallel()
		builder, err := ssohelp.NewBuilder()
		require.NoError(t, err)
		_, err = New(Config{Domains: []string{"https://example.com"}}, builder)
		assert.Error(t, err)
	})
}

func TestServer_Page(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{Realm: "EXAMPLE.COM", Domains: []string{".example.com"}})

	for _, target := range []string{"/", PagePath} {
		t.Run(target, func(t *testing.T) {
			t.Parallel()
			rec := get(t, s, target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, htmlContentType, rec.Header().Get("Content-Type"))

			body := rec.Body.String()
			assert.Contains(t, body, `src="static/js/detect.js"`)
			assert.Contains(t, body, `src="static/js/ssbrowser.js"`)
			assert.Contains(t, body, `href="static/css/ssbrowser.css"`)
			assert.Contains(t, body, "Configure your browser")
			assert.Contains(t, body, "EXAMPLE.COM")
			assert.Contains(t, body, ".example.com")
			assert.Less(t, strings.Index(body, "detect.js"), strings.Index(body, "ssbrowser.js"))
		})
	}
}

func TestServer_Page_Locale(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{})
	rec := get(t, s, PagePath+"?lang=fr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Body.String(), `lang="fr"`)
}

func TestServer_Page_BootstrapOff(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{})
	rec := get(t, s, PagePath+"?bootstrap=off")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "<script")
	assert.NotContains(t, body, "ssbrowser.css")
	assert.Contains(t, body, `<div id="ssbrowser-msg" class="ssbrowser-msg"></div>`)
}

func TestServer_Page_CACertLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"not configured", Config{}, ""},
		{"served file", Config{CACertPath: "/etc/ipa/ca.crt"}, `href="/ca.crt"`},
		{"explicit URL", Config{CACertURL: "https://ipa.example.com/ipa/config/ca.crt"}, `href="https://ipa.example.com/ipa/config/ca.crt"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := get(t, newTestServer(t, tt.cfg), PagePath).Body.String()
			if tt.want == "" {
				assert.NotContains(t, body, "ca-certificate")
				return
			}
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestServer_Static(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantType   string
	}{
		{"script", "/static/js/detect.js", http.StatusOK, "javascript"},
		{"stylesheet", "/static/css/ssbrowser.css", http.StatusOK, "text/css"},
		{"icon", "/static/images/favicon.svg", http.StatusOK, "image/svg+xml"},
		{"missing", "/static/js/missing.js", http.StatusNotFound, ""},
		{"traversal", "/static/js/../../pages/ssbrowser.html", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := get(t, s, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantType)
				assert.NotZero(t, rec.Body.Len())
			}
		})
	}
}

func TestServer_CACert(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		rec := get(t, newTestServer(t, Config{}), CACertPath)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("served", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "ca.crt")
		pem := "-----BEGIN CERTIFICATE-----\nMIIB\n-----END CERTIFICATE-----\n"
		require.NoError(t, os.WriteFile(path, []byte(pem), 0o600))

		rec := get(t, newTestServer(t, Config{CACertPath: path}), CACertPath)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, caCertContentType, rec.Header().Get("Content-Type"))
		assert.Equal(t, pem, rec.Body.String())
	})

	t.Run("unreadable", func(t *testing.T) {
		t.Parallel()
		missing := filepath.Join(t.TempDir(), "missing.crt")
		rec := get(t, newTestServer(t, Config{CACertPath: missing}), CACertPath)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestServer_Policies(t *testing.T) {
	t.Parallel()

	t.Run("no domain", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, Config{})
		assert.Equal(t, http.StatusNotFound, get(t, s, FirefoxPolicyPath).Code)
		assert.Equal(t, http.StatusNotFound, get(t, s, ChromePolicyPath).Code)
	})

	s := newTestServer(t, Config{Domains: []string{"Example.com"}, Delegate: true})

	t.Run("firefox", func(t *testing.T) {
		t.Parallel()
		rec := get(t, s, FirefoxPolicyPath)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, jsonContentType, rec.Header().Get("Content-Type"))

		var doc struct {
			Policies struct {
				Authentication struct {
					SPNEGO    []string
					Delegated []string
				}
			} `json:"policies"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, []string{".example.com"}, doc.Policies.Authentication.SPNEGO)
		assert.Equal(t, []string{".example.com"}, doc.Policies.Authentication.Delegated)
	})

	t.Run("chrome", func(t *testing.T) {
		t.Parallel()
		rec := get(t, s, ChromePolicyPath)
		require.Equal(t, http.StatusOK, rec.Code)

		var doc map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "*.example.com", doc["AuthServerAllowlist"])
		assert.Equal(t, "*.example.com", doc["AuthNegotiateDelegateAllowlist"])
	})
}

func TestServer_PDFDisabled(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestServer(t, Config{}), PDFPath)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestServer(t, Config{Realm: "EXAMPLE.COM"}), HealthPath)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, healthResponse{Status: "ok", Realm: "EXAMPLE.COM"}, resp)
}

func TestServer_RequestLogging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	s := newTestServer(t, Config{}, WithLogger(zap.New(core)))

	get(t, s, HealthPath)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, HealthPath, fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{ssohelp.ErrStaticNotFound, http.StatusNotFound},
		{ssohelp.ErrPathTraversal, http.StatusBadRequest},
		{ssohelp.ErrInvalidStatic, http.StatusBadRequest},
		{ssohelp.ErrBrowserClosed, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestServer_ServeShutdown(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + HealthPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
