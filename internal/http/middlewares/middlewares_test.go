package middlewares_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/parkingcontrol/internal/http/middlewares"
	"github.com/geocoder89/parkingcontrol/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantMaxAge  string
		wantReached bool
	}{
		{
			name:        "wildcard allows any origin",
			allowed:     []string{"*"},
			method:      http.MethodGet,
			origin:      "https://parking.example",
			wantStatus:  http.StatusOK,
			wantOrigin:  "*",
			wantMaxAge:  "3600",
			wantReached: true,
		},
		{
			name:       "preflight is answered directly",
			allowed:    []string{"*"},
			method:     http.MethodOptions,
			origin:     "https://parking.example",
			wantStatus: http.StatusNoContent,
			wantOrigin: "*",
			wantMaxAge: "3600",
		},
		{
			name:        "listed origin is echoed",
			allowed:     []string{"https://a.example"},
			method:      http.MethodGet,
			origin:      "https://a.example",
			wantStatus:  http.StatusOK,
			wantOrigin:  "https://a.example",
			wantMaxAge:  "3600",
			wantReached: true,
		},
		{
			name:        "unlisted origin gets no headers",
			allowed:     []string{"https://a.example"},
			method:      http.MethodGet,
			origin:      "https://b.example",
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			r := newEngine(middlewares.CORSMiddleware(tt.allowed, time.Hour))
			handler := func(ctx *gin.Context) {
				reached = true
				ctx.Status(http.StatusOK)
			}
			r.GET("/parking-spot", handler)
			r.OPTIONS("/parking-spot", handler)

			req := httptest.NewRequest(tt.method, "/parking-spot", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMaxAge, w.Header().Get("Access-Control-Max-Age"))
			assert.Equal(t, tt.wantReached, reached)
		})
	}
}

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{name: "json", method: http.MethodPost, contentType: "application/json", wantStatus: http.StatusOK},
		{name: "json with charset", method: http.MethodPut, contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "form", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
		{name: "missing", method: http.MethodPost, contentType: "", wantStatus: http.StatusUnsupportedMediaType},
		{name: "get ignores content type", method: http.MethodGet, contentType: "", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(middlewares.RequireJSON())
			r.Handle(tt.method, "/x", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/x", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnsupportedMediaType {
				assert.Contains(t, w.Body.String(), `"unsupported_media_type"`)
			}
		})
	}
}

func TestMaxBodyBytes(t *testing.T) {
	t.Run("declared length over limit", func(t *testing.T) {
		r := newEngine(middlewares.MaxBodyBytes(8))
		r.POST("/x", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(`{"a":"0123456789"}`)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), `"payload_too_large"`)
	})

	t.Run("undeclared length fails on read", func(t *testing.T) {
		var readErr error
		r := newEngine(middlewares.MaxBodyBytes(8))
		r.POST("/x", func(ctx *gin.Context) {
			_, readErr = io.ReadAll(ctx.Request.Body)
			ctx.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodPost, "/x", io.NopCloser(strings.NewReader(`{"a":"0123456789"}`)))
		req.ContentLength = -1
		r.ServeHTTP(httptest.NewRecorder(), req)

		var tooLarge *http.MaxBytesError
		assert.ErrorAs(t, readErr, &tooLarge)
	})

	t.Run("within limit", func(t *testing.T) {
		r := newEngine(middlewares.MaxBodyBytes(64))
		r.POST("/x", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(`{}`)))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("generated when absent", func(t *testing.T) {
		var fromCtx string
		r := newEngine(middlewares.RequestID())
		r.GET("/x", func(ctx *gin.Context) {
			fromCtx, _ = observability.RequestIDFrom(ctx.Request.Context())
			ctx.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		id := w.Header().Get("X-Request-Id")
		require.NotEmpty(t, id)
		assert.Equal(t, id, fromCtx)
	})

	t.Run("propagated when present", func(t *testing.T) {
		var fromGin any
		r := newEngine(middlewares.RequestID())
		r.GET("/x", func(ctx *gin.Context) {
			fromGin, _ = ctx.Get(middlewares.CtxRequestID)
			ctx.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-Id", "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "req-123", fromGin)
	})

	t.Run("replaced when unsafe", func(t *testing.T) {
		r := newEngine(middlewares.RequestID())
		r.GET("/x", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

		for _, bad := range []string{"has space", strings.Repeat("a", 129)} {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("X-Request-Id", bad)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-Id")
			assert.NotEmpty(t, got)
			assert.NotEqual(t, bad, got)
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(middlewares.SecurityHeaders("/docs"))
	r.GET("/docs", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	r.GET("/parking-spot", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	api := httptest.NewRecorder()
	r.ServeHTTP(api, httptest.NewRequest(http.MethodGet, "/parking-spot", nil))
	assert.Equal(t, "nosniff", api.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'", api.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "same-origin", api.Header().Get("Cross-Origin-Opener-Policy"))

	docs := httptest.NewRecorder()
	r.ServeHTTP(docs, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Contains(t, docs.Header().Get("Content-Security-Policy"), "https://unpkg.com")
}
