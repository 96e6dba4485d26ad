package pages

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/inclouds/internal/app/features/errors"
	pagestore "github.com/dalemusser/inclouds/internal/app/store/pages"
	"github.com/dalemusser/inclouds/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, dir string) *Handler {
	t.Helper()
	return NewHandler(pagestore.New(dir), errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
}

func get(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/", nil)))
	return rec
}

func TestAboutDefaultContent(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := newTestHandler(t, "")

	rec := get(h.AboutRouter())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "About Us") {
		t.Error("default about page should be rendered")
	}
}

func TestAboutFromContentDir(t *testing.T) {
	testutil.MustBootTemplates(t)
	dir := t.TempDir()
	content := `<h1>Our Story</h1><p>Hello</p><script>alert(1)</script>`
	if err := os.WriteFile(filepath.Join(dir, "about.html"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newTestHandler(t, dir)

	rec := get(h.AboutRouter())
	body := rec.Body.String()
	if !strings.Contains(body, "Our Story") || !strings.Contains(body, "<p>Hello</p>") {
		t.Error("custom about content should be rendered")
	}
	if strings.Contains(body, "alert(1)") {
		t.Error("page content should be sanitized")
	}
	if !strings.Contains(body, "<title>Our Story") {
		t.Error("title should come from the page heading")
	}
}

func TestRoutesServesPagesDir(t *testing.T) {
	testutil.MustBootTemplates(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "help.html"), []byte("<h1>Help</h1><p>Ask us.</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	routes := newTestHandler(t, dir).Routes(notFound)

	tests := []struct {
		path string
		code int
	}{
		{"/help", http.StatusOK},
		{"/missing", http.StatusNotFound},
		{"/Bad_Slug", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, tt.path, nil)))
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d", rec.Code, tt.code)
			}
			if tt.code == http.StatusOK && !strings.Contains(rec.Body.String(), "Ask us.") {
				t.Error("page content should be rendered")
			}
		})
	}
}
