// Package testutil provides utilities for testing, including temporary
// storage roots and request helpers.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TempRoot returns a fresh storage root for one test. It is removed when
// the test completes.
func TempRoot(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "uploads")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("failed to create storage root: %v", err)
	}
	return root
}

// WriteFile creates root/rel with data, creating parent folders.
func WriteFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return abs
}

// Mkdir creates root/rel and any missing parents.
func Mkdir(t *testing.T, root, rel string) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(abs, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", rel, err)
	}
	return abs
}

// Snapshot returns every relative path under root, slash separated.
// Used to assert that a rejected operation left the tree untouched.
func Snapshot(t *testing.T, root string) map[string]bool {
	t.Helper()
	out := make(map[string]bool)
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		t.Fatalf("failed to snapshot %s: %v", root, err)
	}
	return out
}

// TestContext returns a context with a reasonable timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
