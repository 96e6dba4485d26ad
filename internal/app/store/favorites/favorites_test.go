package favorites

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func readDoc(t *testing.T, path string) map[string][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string][]string
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func newLoaded(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "favorites.json")
	s := New(path, zap.NewNop())
	require.NoError(t, s.Load())
	return s, path
}

func TestLoadMissingFileCreatesEmptyDocument(t *testing.T) {
	s, path := newLoaded(t)

	doc := readDoc(t, path)
	assert.Equal(t, []string{}, doc["folders"])
	assert.Equal(t, []string{}, doc["files"])
	assert.Equal(t, 0, s.Snapshot().Len())
	assert.True(t, s.Loaded())
}

func TestLoadedFalseBeforeLoad(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "favorites.json"), zap.NewNop())
	assert.False(t, s.Loaded())
}

func TestToggleIsItsOwnInverseAndPersists(t *testing.T) {
	s, path := newLoaded(t)

	tests := []struct {
		path string
		kind models.Kind
	}{
		{"docs", models.KindFolder},
		{"docs/a.txt", models.KindFile},
	}
	for _, tt := range tests {
		on, err := s.Toggle(tt.path, tt.kind)
		require.NoError(t, err)
		assert.True(t, on)
		assert.True(t, s.IsFavorite(tt.path, tt.kind))
		assert.Contains(t, readDoc(t, path)[string(tt.kind)+"s"], tt.path)

		on, err = s.Toggle(tt.path, tt.kind)
		require.NoError(t, err)
		assert.False(t, on)
		assert.False(t, s.IsFavorite(tt.path, tt.kind))
		assert.NotContains(t, readDoc(t, path)[string(tt.kind)+"s"], tt.path)
	}
}

func TestKindsAreDisjoint(t *testing.T) {
	s, _ := newLoaded(t)

	_, err := s.Toggle("shared", models.KindFolder)
	require.NoError(t, err)
	assert.True(t, s.IsFavorite("shared", models.KindFolder))
	assert.False(t, s.IsFavorite("shared", models.KindFile))
}

func TestRoundTripThroughDisk(t *testing.T) {
	s, path := newLoaded(t)
	for _, p := range []string{"a", "b/c"} {
		_, err := s.Toggle(p, models.KindFolder)
		require.NoError(t, err)
	}
	_, err := s.Toggle("b/c/x.pdf", models.KindFile)
	require.NoError(t, err)

	reloaded := New(path, zap.NewNop())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, []string{"a", "b/c"}, reloaded.List(models.KindFolder, nil))
}

func TestLoadLegacyArrayMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path, []byte(`["photos", "docs/2024"]`), 0o644))

	s := New(path, zap.NewNop())
	require.NoError(t, s.Load())

	assert.Equal(t, models.FavoriteSet{Folders: []string{"photos", "docs/2024"}, Files: []string{}}, s.Snapshot())
	doc := readDoc(t, path)
	assert.Equal(t, []string{"photos", "docs/2024"}, doc["folders"])
	assert.Equal(t, []string{}, doc["files"])
}

func TestLoadLegacyArrayStripsStorageFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	legacy := `["uploads/docs", "uploads\\photos\\2024", "notes", "uploads", "uploadsX/a"]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s := New(path, zap.NewNop())
	s.SetLegacyRoot("uploads")
	require.NoError(t, s.Load())

	want := []string{"docs", "photos/2024", "notes", "uploads", "uploadsX/a"}
	assert.Equal(t, want, s.Snapshot().Folders)
	assert.Equal(t, want, readDoc(t, path)["folders"])

	onDisk := func(p string, kind models.Kind) bool { return p == "docs" || p == "photos/2024" }
	assert.Equal(t, []string{"docs", "photos/2024"}, s.List(models.KindFolder, onDisk))
	removed, err := s.Prune(onDisk)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, []string{"docs", "photos/2024"}, s.Snapshot().Folders)
}

func TestObjectDocumentIsNotRewrittenForLegacyRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"folders":["uploads/docs"],"files":[]}`), 0o644))

	s := New(path, zap.NewNop())
	s.SetLegacyRoot("uploads")
	require.NoError(t, s.Load())
	assert.Equal(t, []string{"uploads/docs"}, s.Snapshot().Folders)
}

func TestLoadCorruptDocumentResets(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"folders": [`},
		{"number", `42`},
		{"wrong element type", `{"folders": [1, 2]}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "favorites.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			core, logs := observer.New(zap.WarnLevel)
			s := New(path, zap.New(core))
			require.NoError(t, s.Load())

			assert.Equal(t, 0, s.Snapshot().Len())
			assert.Equal(t, 1, logs.Len())
			doc := readDoc(t, path)
			assert.Equal(t, []string{}, doc["folders"])
		})
	}
}

func TestListFiltersStalePathsWithoutPruning(t *testing.T) {
	s, path := newLoaded(t)
	for _, p := range []string{"kept", "gone"} {
		_, err := s.Toggle(p, models.KindFolder)
		require.NoError(t, err)
	}
	exists := func(p string, _ models.Kind) bool { return p == "kept" }

	assert.Equal(t, []string{"kept"}, s.List(models.KindFolder, exists))
	assert.Equal(t, []string{"kept", "gone"}, s.List(models.KindFolder, nil))
	assert.Equal(t, []string{"kept", "gone"}, readDoc(t, path)["folders"])

	n, err := s.Prune(exists)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"kept"}, readDoc(t, path)["folders"])
}

func TestRemove(t *testing.T) {
	s, path := newLoaded(t)
	_, err := s.Toggle("a.txt", models.KindFile)
	require.NoError(t, err)

	require.NoError(t, s.Remove("a.txt", models.KindFile))
	require.NoError(t, s.Remove("a.txt", models.KindFile))
	assert.Empty(t, readDoc(t, path)["files"])
}

func TestToggleRejectsBadPaths(t *testing.T) {
	s, _ := newLoaded(t)

	_, err := s.Toggle("", models.KindFolder)
	assert.ErrorIs(t, err, fserr.ErrValidation)

	_, err = s.Toggle("../etc", models.KindFolder)
	assert.ErrorIs(t, err, fserr.ErrPathEscape)

	_, err = s.Toggle("x", models.Kind("bogus"))
	assert.ErrorIs(t, err, fserr.ErrValidation)
}

func TestToggleNormalizesPaths(t *testing.T) {
	s, _ := newLoaded(t)
	_, err := s.Toggle("docs//2024/", models.KindFolder)
	require.NoError(t, err)
	assert.True(t, s.IsFavorite("docs/2024", models.KindFolder))
}

func TestToggleRollsBackWhenSaveFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// The parent of the document is a regular file, so every write fails.
	s := New(filepath.Join(blocker, "favorites.json"), zap.NewNop())
	_, err := s.Toggle("docs", models.KindFolder)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fserr.ErrIO))
	assert.False(t, s.IsFavorite("docs", models.KindFolder))
}

func TestBackupKeepsNewest(t *testing.T) {
	s, _ := newLoaded(t)
	dir := filepath.Join(t.TempDir(), "backups")

	var made []string
	for i := 0; i < 4; i++ {
		p, err := s.Backup(dir, 2)
		require.NoError(t, err)
		made = append(made, p)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.FileExists(t, made[3])
	assert.NoFileExists(t, made[0])
}

func TestSavesLeaveOnlyTheDocument(t *testing.T) {
	s, path := newLoaded(t)
	_, err := s.Toggle("docs", models.KindFolder)
	require.NoError(t, err)
	_, err = s.Toggle("docs/a.txt", models.KindFile)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.Equal(t, []string{"favorites.json"}, got)
	assert.Equal(t, []string{"docs"}, readDoc(t, path)["folders"])
}

func TestWriteAtomicFailureKeepsPreviousContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, writeAtomic(path, []byte("old")))

	// A directory at the destination makes the final rename fail.
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0o755))
	assert.Error(t, writeAtomic(blocked, []byte("new")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp file should be removed after a failed rename")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}
