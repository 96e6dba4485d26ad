// Package favorites persists the set of starred folders and files in a
// single JSON document.
//
// The document has the shape {"folders": [...], "files": [...]}. An older
// flat-array form is read as a list of folders and rewritten in the object
// shape. Unreadable documents are reset to empty rather than failing.
package favorites

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"go.uber.org/zap"
)

// Checker reports whether a path currently exists with the given kind.
type Checker func(path string, kind models.Kind) bool

// Store holds the favorites in memory and writes the whole document to
// disk after every mutation. Mutations are serialized by a mutex and the
// document is replaced atomically. Separate processes sharing one file
// still race; the last writer wins.
type Store struct {
	mu     sync.RWMutex
	path   string
	set    models.FavoriteSet
	loaded bool
	logger *zap.Logger

	legacyRoot string // storage folder name prefixed to legacy entries
}

// New creates a store backed by the document at path. Call Load before use.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   path,
		set:    emptySet(),
		logger: logger,
	}
}

func emptySet() models.FavoriteSet {
	return models.FavoriteSet{Folders: []string{}, Files: []string{}}
}

// SetLegacyRoot names the storage folder that legacy array documents
// prefix their entries with ("uploads/docs"). Migration strips that
// segment. Call before Load.
func (s *Store) SetLegacyRoot(name string) {
	s.mu.Lock()
	s.legacyRoot = strings.Trim(filepath.ToSlash(name), "/")
	s.mu.Unlock()
}

// Path returns the location of the backing document.
func (s *Store) Path() string {
	return s.path
}

// Loaded reports whether the last Load succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Load reads the document. A missing file starts empty and is created.
// A legacy array is migrated and rewritten. A malformed document is reset
// to empty, logged, and rewritten; it is never returned as an error.
func (s *Store) Load() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loaded = err == nil }()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.set = emptySet()
		return s.saveLocked()
	}
	if err != nil {
		return fserr.IO("load favorites", s.path, err)
	}

	set, migrated, err := decode(data, s.legacyRoot)
	if err != nil {
		s.logger.Warn("favorites document unreadable, resetting",
			zap.String("path", s.path),
			zap.Error(fserr.CorruptState("load favorites", s.path, err)))
		s.set = emptySet()
		return s.saveLocked()
	}
	s.set = set
	if migrated {
		s.logger.Info("migrated legacy favorites document",
			zap.String("path", s.path),
			zap.Int("folders", len(set.Folders)))
		return s.saveLocked()
	}
	return nil
}

// decode parses either document shape. migrated is true for the legacy
// array form, whose entries lose a leading legacyRoot segment.
func decode(data []byte, legacyRoot string) (models.FavoriteSet, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return models.FavoriteSet{}, false, errors.New("empty document")
	}
	switch trimmed[0] {
	case '[':
		var legacy []string
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return models.FavoriteSet{}, false, err
		}
		for i, p := range legacy {
			legacy[i] = stripRoot(p, legacyRoot)
		}
		return models.FavoriteSet{Folders: dedupe(legacy), Files: []string{}}, true, nil
	case '{':
		var doc models.FavoriteSet
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return models.FavoriteSet{}, false, err
		}
		return models.FavoriteSet{Folders: dedupe(doc.Folders), Files: dedupe(doc.Files)}, false, nil
	}
	return models.FavoriteSet{}, false, errors.New("document is neither an object nor an array")
}

// stripRoot turns "uploads/docs" or a backslashed Windows form into "docs". Entries
// without the prefix are returned unchanged.
func stripRoot(p, root string) string {
	if root == "" {
		return p
	}
	slashed := strings.ReplaceAll(p, `\`, "/")
	if rest, ok := strings.CutPrefix(slashed, root+"/"); ok && rest != "" {
		return rest
	}
	return p
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// Save writes the current document.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.set, "", "  ")
	if err != nil {
		return fserr.IO("save favorites", s.path, err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fserr.IO("save favorites", s.path, err)
	}
	return nil
}

// writeAtomic replaces path with data via a temp file in the same folder.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func key(op, path string) (string, error) {
	c, err := navstate.Clean(path)
	if err != nil {
		return "", err
	}
	if c == navstate.RootToken {
		return "", fserr.Validation(op, "", "The root folder cannot be a favorite.")
	}
	return c, nil
}

func (s *Store) slot(kind models.Kind) *[]string {
	if kind == models.KindFolder {
		return &s.set.Folders
	}
	return &s.set.Files
}

// IsFavorite reports whether path is starred as kind.
func (s *Store) IsFavorite(path string, kind models.Kind) bool {
	k, err := key("check favorite", path)
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(*s.slot(kind), k)
}

// Toggle adds path if absent or removes it if present, then persists the
// document before returning. It returns the new membership. If the write
// fails the in-memory change is rolled back.
func (s *Store) Toggle(path string, kind models.Kind) (bool, error) {
	const op = "toggle favorite"
	if !kind.Valid() {
		return false, fserr.Validation(op, path, "Unknown entry kind.")
	}
	k, err := key(op, path)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.slot(kind)
	prev := slices.Clone(*list)
	var now bool
	if i := slices.Index(*list, k); i >= 0 {
		*list = slices.Delete(*list, i, i+1)
	} else {
		*list = append(*list, k)
		now = true
	}
	if err := s.saveLocked(); err != nil {
		*list = prev
		return !now, err
	}
	return now, nil
}

// Remove deletes path from the set if present and persists the change.
func (s *Store) Remove(path string, kind models.Kind) error {
	const op = "remove favorite"
	k, err := key(op, path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.slot(kind)
	i := slices.Index(*list, k)
	if i < 0 {
		return nil
	}
	prev := slices.Clone(*list)
	*list = slices.Delete(*list, i, i+1)
	if err := s.saveLocked(); err != nil {
		*list = prev
		return err
	}
	return nil
}

// List returns the starred paths of kind in the order they were added.
// When exists is non-nil, paths that no longer exist are left out of the
// result; the stored set is not changed.
func (s *Store) List(kind models.Kind, exists Checker) []string {
	s.mu.RLock()
	stored := slices.Clone(*s.slot(kind))
	s.mu.RUnlock()

	if exists == nil {
		return stored
	}
	out := make([]string, 0, len(stored))
	for _, p := range stored {
		if exists(p, kind) {
			out = append(out, p)
		}
	}
	return out
}

// Prune drops every stored path for which exists reports false and
// persists the result. It returns the number of paths removed.
func (s *Store) Prune(exists Checker) (int, error) {
	if exists == nil {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := models.FavoriteSet{Folders: slices.Clone(s.set.Folders), Files: slices.Clone(s.set.Files)}
	removed := 0
	for _, kind := range []models.Kind{models.KindFolder, models.KindFile} {
		list := s.slot(kind)
		kept := (*list)[:0]
		for _, p := range *list {
			if exists(p, kind) {
				kept = append(kept, p)
			} else {
				removed++
			}
		}
		*list = kept
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.saveLocked(); err != nil {
		s.set = prev
		return 0, err
	}
	return removed, nil
}

// Snapshot returns a copy of the stored document.
func (s *Store) Snapshot() models.FavoriteSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.FavoriteSet{
		Folders: slices.Clone(s.set.Folders),
		Files:   slices.Clone(s.set.Files),
	}
}
