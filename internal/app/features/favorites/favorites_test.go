package favorites

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/inclouds/internal/app/features/errors"
	favstore "github.com/dalemusser/inclouds/internal/app/store/favorites"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/auditlog"
	"github.com/dalemusser/inclouds/internal/app/system/flash"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/inclouds/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	root := testutil.TempRoot(t)
	ts, err := tree.New(root, zap.NewNop())
	if err != nil {
		t.Fatalf("tree.New() error = %v", err)
	}
	favs := favstore.New(filepath.Join(t.TempDir(), "favorites.json"), zap.NewNop())
	if err := favs.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	fm, err := flash.New("0123456789abcdef0123456789abcdef-favorites", "test-flash", false, zap.NewNop())
	if err != nil {
		t.Fatalf("flash.New() error = %v", err)
	}
	h := NewHandler(ts, favs, fm,
		errorsfeature.NewErrorLogger(zap.NewNop()),
		auditlog.New(zap.NewNop(), auditlog.Config{Mode: "off"}),
		zap.NewNop())
	return h, root
}

func star(t *testing.T, h *Handler, path string, kind models.Kind) {
	t.Helper()
	if _, err := h.favs.Toggle(path, kind); err != nil {
		t.Fatalf("Toggle(%q) error = %v", path, err)
	}
}

func TestPageHidesStaleFavorites(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, root := newTestHandler(t)
	testutil.WriteFile(t, root, "docs/report.txt", []byte("hello"))
	star(t, h, "docs", models.KindFolder)
	star(t, h, "docs/report.txt", models.KindFile)
	star(t, h, "gone.txt", models.KindFile)

	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "report.txt") || !strings.Contains(body, "Home/docs") {
		t.Error("existing favorites should be listed with their location")
	}
	if strings.Contains(body, "gone.txt") {
		t.Error("stale favorite should be hidden")
	}
	if !strings.Contains(body, "Remove stale") {
		t.Error("prune button should be offered when stale favorites exist")
	}
	// Display never prunes.
	if len(h.favs.Snapshot().Files) != 2 {
		t.Error("rendering the page should not change the stored set")
	}
}

func TestPrune(t *testing.T) {
	h, root := newTestHandler(t)
	testutil.WriteFile(t, root, "keep.txt", []byte("k"))
	star(t, h, "keep.txt", models.KindFile)
	star(t, h, "gone.txt", models.KindFile)
	star(t, h, "old", models.KindFolder)

	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/prune", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/favorites" {
		t.Fatalf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
	snap := h.favs.Snapshot()
	if len(snap.Files) != 1 || snap.Files[0] != "keep.txt" || len(snap.Folders) != 0 {
		t.Errorf("after prune = %+v", snap)
	}

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	msgs := h.flash.Pop(httptest.NewRecorder(), req)
	if len(msgs) != 1 || msgs[0].Text != "Removed 2 stale favorites." {
		t.Errorf("flashes = %v", msgs)
	}
}

func apiDo(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	APIRoutes(h, nil).ServeHTTP(rec, req)
	return rec
}

func TestAPIToggle(t *testing.T) {
	h, root := newTestHandler(t)
	testutil.Mkdir(t, root, "docs")

	tests := []struct {
		name     string
		body     string
		status   int
		favorite bool
	}{
		{"star folder", `{"path":"docs","kind":"folder"}`, http.StatusOK, true},
		{"unstar folder", `{"path":"docs","kind":"folder"}`, http.StatusOK, false},
		{"missing entry", `{"path":"nope.txt","kind":"file"}`, http.StatusNotFound, false},
		{"bad kind", `{"path":"docs","kind":"link"}`, http.StatusBadRequest, false},
		{"escape", `{"path":"../etc","kind":"folder"}`, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := apiDo(h, http.MethodPost, "/toggle", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var out toggleResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatal(err)
			}
			if out.Favorite != tt.favorite {
				t.Errorf("favorite = %v, want %v", out.Favorite, tt.favorite)
			}
		})
	}
}

func TestAPIListAndPrune(t *testing.T) {
	h, root := newTestHandler(t)
	testutil.Mkdir(t, root, "docs")
	star(t, h, "docs", models.KindFolder)
	star(t, h, "gone", models.KindFolder)

	var set models.FavoriteSet
	rec := apiDo(h, http.MethodGet, "/", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatal(err)
	}
	if len(set.Folders) != 1 || set.Folders[0] != "docs" {
		t.Errorf("existing favorites = %+v", set)
	}

	rec = apiDo(h, http.MethodGet, "/?all=true", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatal(err)
	}
	if len(set.Folders) != 2 {
		t.Errorf("all favorites = %+v", set)
	}

	rec = apiDo(h, http.MethodPost, "/prune", "{}")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"removed":1`) {
		t.Errorf("prune = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAPIRemoveClearsStaleFavorite(t *testing.T) {
	h, root := newTestHandler(t)
	testutil.Mkdir(t, root, "docs")
	star(t, h, "docs", models.KindFolder)
	star(t, h, "gone.txt", models.KindFile)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"stale file", `{"path":"gone.txt","kind":"file"}`, http.StatusOK},
		{"not starred", `{"path":"other","kind":"folder"}`, http.StatusOK},
		{"bad kind", `{"path":"docs","kind":"link"}`, http.StatusBadRequest},
		{"escape", `{"path":"../etc","kind":"folder"}`, http.StatusBadRequest},
		{"root", `{"path":"","kind":"folder"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := apiDo(h, http.MethodPost, "/remove", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	snap := h.favs.Snapshot()
	if len(snap.Files) != 0 {
		t.Errorf("stale file should be removed, files = %v", snap.Files)
	}
	if len(snap.Folders) != 1 || snap.Folders[0] != "docs" {
		t.Errorf("other favorites should be kept, folders = %v", snap.Folders)
	}
}
