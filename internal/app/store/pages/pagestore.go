// Package pagestore reads editable site pages (such as About) from HTML
// files in a content directory.
package pagestore

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/domain/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Store serves pages from dir/<slug>.html.
type Store struct {
	dir string
}

// New creates a page store. An empty dir yields a store with no pages.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// GetBySlug returns the page stored for slug. The title comes from the
// first <h1> of the file, if any. A missing file is a NotFound error.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Page, error) {
	const op = "get page"
	if !slugPattern.MatchString(slug) {
		return models.Page{}, fserr.Validation(op, slug, "Invalid page name.")
	}
	if s.dir == "" {
		return models.Page{}, fserr.NotFound(op, slug)
	}
	if err := ctx.Err(); err != nil {
		return models.Page{}, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, slug+".html"))
	if err != nil {
		return models.Page{}, fserr.FromOS(op, slug, err)
	}
	content := string(data)
	return models.Page{
		Slug:    slug,
		Title:   headingOf(content),
		Content: content,
	}, nil
}

var (
	h1Pattern  = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	tagPattern = regexp.MustCompile(`<[^>]*>`)
)

func headingOf(html string) string {
	m := h1Pattern.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(tagPattern.ReplaceAllString(m[1], ""))
}
