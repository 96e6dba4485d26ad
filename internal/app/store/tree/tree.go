// Package tree manages the folder and file hierarchy under a single storage
// root on the local filesystem.
//
// Every path argument is relative to the root and slash separated. A path
// that resolves outside the root fails with fserr.ErrPathEscape before any
// filesystem call is made.
package tree

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"go.uber.org/zap"
)

// TempPrefix marks in-flight uploads. Such files are never listed.
const TempPrefix = ".inclouds-upload-"

// Store provides access to the storage tree.
type Store struct {
	root     string
	realRoot string // root with symlinks resolved
	logger   *zap.Logger
	hidden   map[string]bool // absolute paths excluded from listings and totals
	onChange func()
}

// New creates a tree store rooted at root. The root is made absolute and
// created if it does not exist.
func New(root string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fserr.Validation("open root", "", "Storage root is required.")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fserr.IO("open root", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fserr.IO("open root", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fserr.IO("open root", root, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		root:     abs,
		realRoot: resolved,
		logger: logger,
		hidden: make(map[string]bool),
	}, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string {
	return s.root
}

// Hide excludes an absolute path from listings, searches and totals.
// Used for the favorites document when it lives inside the root.
func (s *Store) Hide(abs string) {
	if a, err := filepath.Abs(abs); err == nil {
		s.hidden[a] = true
	}
}

// OnChange installs fn to run after every successful mutation. It must be
// set before the store is shared and must not block.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Store) isHidden(abs, name string) bool {
	return strings.HasPrefix(name, TempPrefix) || s.hidden[abs]
}

// resolve cleans a relative path and returns it with its absolute location.
func (s *Store) resolve(op, rel string) (string, string, error) {
	c, err := navstate.Clean(rel)
	if err != nil {
		return "", "", fserr.PathEscape(op, rel)
	}
	abs, err := navstate.Abs(s.root, c)
	if err != nil {
		return "", "", fserr.PathEscape(op, rel)
	}
	if !s.confined(abs) {
		return "", "", fserr.PathEscape(op, rel)
	}
	return c, abs, nil
}

// confined reports whether abs stays under the root once symlinks are
// followed. The deepest existing ancestor is resolved; the missing tail
// is plain names and cannot leave it.
func (s *Store) confined(abs string) bool {
	p := abs
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return resolved == s.realRoot || strings.HasPrefix(resolved, s.realRoot+string(filepath.Separator))
		}
		parent := filepath.Dir(p)
		if parent == p || len(p) < len(s.root) {
			return false
		}
		p = parent
	}
}

// checkName validates a single path segment used to create an entry.
func checkName(op, parent, name string) error {
	if strings.TrimSpace(name) == "" {
		return fserr.Validation(op, parent, "A name is required.")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fserr.Validation(op, parent, "Names cannot contain slashes or be \".\" or \"..\".")
	}
	if strings.HasPrefix(name, TempPrefix) || strings.ContainsRune(name, 0) {
		return fserr.Validation(op, parent, "That name is reserved.")
	}
	return nil
}

func entryFrom(rel string, info os.FileInfo) models.Entry {
	e := models.Entry{
		Path:    rel,
		Name:    info.Name(),
		Kind:    models.KindFile,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if info.IsDir() {
		e.Kind = models.KindFolder
		e.Size = 0
	}
	if rel == navstate.RootToken {
		e.Name = ""
	}
	return e
}

// Stat returns the entry at path. Folder sizes are not aggregated; use
// FolderSize for that.
func (s *Store) Stat(ctx context.Context, path string) (models.Entry, error) {
	rel, abs, err := s.resolve("stat", path)
	if err != nil {
		return models.Entry{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return models.Entry{}, fserr.FromOS("stat", rel, err)
	}
	return entryFrom(rel, info), nil
}

// Exists reports whether path exists with the given kind.
func (s *Store) Exists(path string, kind models.Kind) bool {
	_, abs, err := s.resolve("stat", path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	if err != nil {
		return false
	}
	if kind == models.KindFolder {
		return info.IsDir()
	}
	return info.Mode().IsRegular()
}

// Open opens a file for reading. The caller closes it.
func (s *Store) Open(ctx context.Context, path string) (*os.File, models.Entry, error) {
	rel, abs, err := s.resolve("open", path)
	if err != nil {
		return nil, models.Entry{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, models.Entry{}, fserr.FromOS("open", rel, err)
	}
	if info.IsDir() {
		return nil, models.Entry{}, fserr.Validation("open", rel, "Folders cannot be opened as files.")
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, models.Entry{}, fserr.FromOS("open", rel, err)
	}
	return f, entryFrom(rel, info), nil
}
