package tree

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

// Listing is the direct contents of one folder, split by kind.
type Listing struct {
	Path    string         `json:"path"`
	Folders []models.Entry `json:"folders"`
	Files   []models.Entry `json:"files"`
}

// Len returns the number of entries in the listing.
func (l Listing) Len() int {
	return len(l.Folders) + len(l.Files)
}

// List returns the folders and files directly inside path whose names
// contain query, compared case-insensitively. An empty query matches all.
// Entries keep directory iteration order. Folder sizes are recursive.
func (s *Store) List(ctx context.Context, path, query string) (Listing, error) {
	const op = "list"
	rel, abs, err := s.resolve(op, path)
	if err != nil {
		return Listing{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Listing{}, fserr.FromOS(op, rel, err)
	}
	if !info.IsDir() {
		return Listing{}, fserr.Validation(op, rel, "That entry is a file, not a folder.")
	}

	dir, err := os.Open(abs)
	if err != nil {
		return Listing{}, fserr.FromOS(op, rel, err)
	}
	defer dir.Close()
	dirents, err := dir.ReadDir(-1)
	if err != nil {
		return Listing{}, fserr.IO(op, rel, err)
	}

	q := text.Fold(strings.TrimSpace(query))
	out := Listing{Path: rel, Folders: []models.Entry{}, Files: []models.Entry{}}
	for _, d := range dirents {
		if err := ctx.Err(); err != nil {
			return Listing{}, err
		}
		name := d.Name()
		childAbs := filepath.Join(abs, name)
		if s.isHidden(childAbs, name) {
			continue
		}
		if q != "" && !strings.Contains(text.Fold(name), q) {
			continue
		}
		fi, err := d.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		childRel := navstate.Join(rel, name)
		e := entryFrom(childRel, fi)
		switch {
		case fi.IsDir():
			size, err := s.walkSize(ctx, childAbs)
			if err != nil {
				s.logger.Warn("folder size failed", zap.String("path", childRel), zap.Error(err))
			}
			e.Size = size
			out.Folders = append(out.Folders, e)
		case fi.Mode().IsRegular():
			out.Files = append(out.Files, e)
		}
	}
	return out, nil
}
