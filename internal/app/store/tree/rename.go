package tree

import (
	"context"
	"os"
	"strings"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/domain/models"
)

// Rename gives the entry at path a new name within the same folder.
//
// A new name containing a separator or "." / ".." is rejected as a path
// escape. If a sibling with the new name already exists the rename fails
// with fserr.ErrConflict; nothing is overwritten.
func (s *Store) Rename(ctx context.Context, path, newName string) (models.Entry, error) {
	const op = "rename"
	rel, abs, err := s.resolve(op, path)
	if err != nil {
		return models.Entry{}, err
	}
	if rel == navstate.RootToken {
		return models.Entry{}, fserr.Validation(op, rel, "The root folder cannot be renamed.")
	}
	if newName == "." || newName == ".." || strings.ContainsAny(newName, `/\`) {
		return models.Entry{}, fserr.PathEscape(op, newName)
	}
	if err := checkName(op, rel, newName); err != nil {
		return models.Entry{}, err
	}

	srcInfo, err := os.Lstat(abs)
	if err != nil {
		return models.Entry{}, fserr.FromOS(op, rel, err)
	}

	target, targetAbs, err := s.resolve(op, navstate.Join(navstate.Parent(rel), newName))
	if err != nil {
		return models.Entry{}, err
	}
	if target == rel {
		return entryFrom(rel, srcInfo), nil
	}
	if dstInfo, err := os.Lstat(targetAbs); err == nil {
		// A case-only rename on a case-insensitive filesystem sees itself.
		if !os.SameFile(srcInfo, dstInfo) {
			return models.Entry{}, fserr.Conflict(op, target)
		}
	}

	if err := ctx.Err(); err != nil {
		return models.Entry{}, err
	}
	if err := os.Rename(abs, targetAbs); err != nil {
		return models.Entry{}, fserr.FromOS(op, rel, err)
	}
	s.changed()
	info, err := os.Stat(targetAbs)
	if err != nil {
		return models.Entry{}, fserr.FromOS(op, target, err)
	}
	return entryFrom(target, info), nil
}
