package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dalemusser/inclouds/internal/app/store/favorites"
	"github.com/dalemusser/inclouds/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func healthyHandler(t *testing.T) *Handler {
	t.Helper()
	root := testutil.TempRoot(t)
	favs := favorites.New(filepath.Join(t.TempDir(), "favorites.json"), zap.NewNop())
	if err := favs.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return NewHandler(zap.NewNop(), StorageCheck(root), FavoritesCheck(favs))
}

func TestHandler_Check(t *testing.T) {
	h := healthyHandler(t)

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("response status = %q, want %q", resp.Status, "ok")
	}
	if resp.Services["storage"] != "ok" || resp.Services["favorites"] != "ok" {
		t.Errorf("services = %v", resp.Services)
	}
}

func TestHandler_CheckDegraded(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	unloaded := favorites.New(filepath.Join(t.TempDir(), "favorites.json"), zap.NewNop())
	h := NewHandler(zap.NewNop(), StorageCheck(file), FavoritesCheck(unloaded))

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "degraded" || resp.Services["storage"] != "unavailable" || resp.Services["favorites"] != "unavailable" {
		t.Errorf("response = %+v", resp)
	}
}

func TestStorageCheckLeavesNoProbeFile(t *testing.T) {
	root := testutil.TempRoot(t)
	if err := StorageCheck(root).Probe(t.Context()); err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Errorf("probe left %d entries behind", len(entries))
	}
}

func TestHandler_Live(t *testing.T) {
	h := NewHandler(zap.NewNop())

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Live() status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); body != `{"status":"alive"}` {
		t.Errorf("Live() body = %q, want %q", body, `{"status":"alive"}`)
	}
}

func TestMountRootEndpoints(t *testing.T) {
	h := healthyHandler(t)
	r := chi.NewRouter()
	MountRootEndpoints(r, h)
	r.Mount("/health", Routes(h))

	for _, path := range []string{"/ready", "/readyz", "/livez", "/health", "/health/ready", "/health/live"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
			}
		})
	}
}

func TestReadyNotReady(t *testing.T) {
	unloaded := favorites.New(filepath.Join(t.TempDir(), "favorites.json"), zap.NewNop())
	h := NewHandler(zap.NewNop(), FavoritesCheck(unloaded))

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable || rec.Body.String() != `{"status":"not ready"}` {
		t.Errorf("Ready() = %d %q", rec.Code, rec.Body.String())
	}
}
