package pagestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
)

func TestGetBySlug(t *testing.T) {
	dir := t.TempDir()
	html := "<h1>About <em>Us</em></h1>\n<p>We store files.</p>"
	if err := os.WriteFile(filepath.Join(dir, "about.html"), []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(dir)

	page, err := s.GetBySlug(context.Background(), "about")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if page.Title != "About Us" {
		t.Errorf("Title = %q, want %q", page.Title, "About Us")
	}
	if page.Content != html {
		t.Errorf("Content = %q", page.Content)
	}

	if _, err := s.GetBySlug(context.Background(), "contact"); !errors.Is(err, fserr.ErrNotFound) {
		t.Errorf("missing page error = %v, want NotFound", err)
	}
}

func TestGetBySlugRejectsTraversal(t *testing.T) {
	s := New(t.TempDir())
	for _, slug := range []string{"../secret", "a/b", "", "About"} {
		if _, err := s.GetBySlug(context.Background(), slug); !errors.Is(err, fserr.ErrValidation) {
			t.Errorf("GetBySlug(%q) error = %v, want validation", slug, err)
		}
	}
}

func TestEmptyDirHasNoPages(t *testing.T) {
	if _, err := New("").GetBySlug(context.Background(), "about"); !errors.Is(err, fserr.ErrNotFound) {
		t.Errorf("error = %v, want NotFound", err)
	}
}
