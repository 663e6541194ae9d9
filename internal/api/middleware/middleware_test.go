package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{"успешный запрос", "/documents", http.StatusOK, "level=INFO"},
		{"ошибка клиента", "/documents", http.StatusBadRequest, "level=WARN"},
		{"ошибка сервера", "/documents", http.StatusBadGateway, "level=ERROR"},
		{"health-check", "/health/live", http.StatusOK, "level=DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("ok"))
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) {
				t.Errorf("лог %q не содержит %q", out, tt.wantLevel)
			}
			if !strings.Contains(out, "bytes=2") {
				t.Errorf("лог %q не содержит размер ответа", out)
			}
		})
	}
}

func TestRoutePattern(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			got = routePattern(req)
		})
	})
	r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {})

	cases := map[string]string{
		"/static/css/app.css": "/static/*",
		"/users":              "/users",
		"/nope":               unmatchedPath,
	}
	for path, want := range cases {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		if got != want {
			t.Errorf("routePattern(%s) = %q, ожидалось %q", path, got, want)
		}
	}
}

func TestRoutePattern_NoRouter(t *testing.T) {
	if got := routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)); got != unmatchedPath {
		t.Errorf("routePattern() = %q, ожидалось %q", got, unmatchedPath)
	}
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	h := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("code = %d, ожидался 418", w.Code)
	}
}
