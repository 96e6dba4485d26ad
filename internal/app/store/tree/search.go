package tree

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/domain/models"
)

// MaxSearchResults caps the number of matches returned by Search.
const MaxSearchResults = 500

// Search walks the whole tree and returns entries whose relative path
// matches a doublestar glob such as "**/*.pdf" or "docs/*/report-*.txt".
// A pattern without a slash is matched against entry names alone, so
// "*.txt" finds text files at any depth. Matching ignores case.
func (s *Store) Search(ctx context.Context, pattern string) ([]models.Entry, error) {
	const op = "search"
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fserr.Validation(op, "", "A search pattern is required.")
	}
	byName := !strings.Contains(pattern, "/")
	pattern = strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fserr.Validation(op, "", "That search pattern is not valid.")
	}
	for _, seg := range strings.Split(pattern, "/") {
		if seg == ".." {
			return nil, fserr.PathEscape(op, pattern)
		}
	}

	var (
		mu      sync.Mutex
		results []models.Entry
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil || p == s.root {
			return nil
		}
		name := d.Name()
		if s.isHidden(p, name) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		relOS, err := filepath.Rel(s.root, p)
		if err != nil {
			return nil
		}
		rel := filepath.ToSlash(relOS)
		subject := rel
		if byName {
			subject = name
		}
		ok, _ := doublestar.Match(pattern, strings.ToLower(subject))
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		if len(results) >= MaxSearchResults {
			return nil
		}
		results = append(results, entryFrom(rel, info))
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fserr.IO(op, "", err)
	}
	if results == nil {
		results = []models.Entry{}
	}
	return results, nil
}
