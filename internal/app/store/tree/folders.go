package tree

import (
	"context"
	"os"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/domain/models"
)

// CreateFolder creates parent/name, including any missing intermediate
// folders. It is a no-op if the folder already exists.
func (s *Store) CreateFolder(ctx context.Context, parent, name string) (models.Entry, error) {
	const op = "create folder"
	p, _, err := s.resolve(op, parent)
	if err != nil {
		return models.Entry{}, err
	}
	if err := checkName(op, p, name); err != nil {
		return models.Entry{}, err
	}
	rel, abs, err := s.resolve(op, navstate.Join(p, name))
	if err != nil {
		return models.Entry{}, err
	}

	if info, err := os.Stat(abs); err == nil {
		if !info.IsDir() {
			return models.Entry{}, fserr.Conflict(op, rel)
		}
		return entryFrom(rel, info), nil
	}
	if err := ctx.Err(); err != nil {
		return models.Entry{}, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return models.Entry{}, fserr.IO(op, rel, err)
	}
	s.changed()
	info, err := os.Stat(abs)
	if err != nil {
		return models.Entry{}, fserr.FromOS(op, rel, err)
	}
	return entryFrom(rel, info), nil
}

// DeleteFolder removes a folder and everything beneath it.
func (s *Store) DeleteFolder(ctx context.Context, path string) error {
	const op = "delete folder"
	rel, abs, err := s.resolve(op, path)
	if err != nil {
		return err
	}
	if rel == navstate.RootToken {
		return fserr.Validation(op, rel, "The root folder cannot be deleted.")
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return fserr.FromOS(op, rel, err)
	}
	if !info.IsDir() {
		return fserr.Validation(op, rel, "That entry is a file, not a folder.")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(abs); err != nil {
		// Part of the folder may already be gone.
		s.changed()
		return fserr.IO(op, rel, err)
	}
	s.changed()
	return nil
}
