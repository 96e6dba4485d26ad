package library

import (
	"github.com/dalemusser/inclouds/internal/app/store/favorites"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/domain/models"
)

// ToggleFavorite flips the favorite flag of path. Switching a flag on
// requires the entry to exist with that kind; switching off does not.
func ToggleFavorite(ts *tree.Store, favs *favorites.Store, path, kind string) (bool, error) {
	k, ok := models.ParseKind(kind)
	if !ok {
		return false, fserr.Validation("favorite", path, "Kind must be folder or file.")
	}
	clean, err := navstate.Clean(path)
	if err != nil {
		return false, err
	}
	if !favs.IsFavorite(clean, k) && !ts.Exists(clean, k) {
		return false, fserr.NotFound("favorite", clean)
	}
	return favs.Toggle(clean, k)
}

// Checker adapts the tree store to the favorites existence check.
func Checker(ts *tree.Store) favorites.Checker {
	return ts.Exists
}
