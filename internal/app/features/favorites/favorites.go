// Package favorites provides the favorites page and the favorites JSON API.
package favorites

import (
	"fmt"
	"net/http"

	errorsfeature "github.com/dalemusser/inclouds/internal/app/features/errors"
	"github.com/dalemusser/inclouds/internal/app/features/library"
	favstore "github.com/dalemusser/inclouds/internal/app/store/favorites"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/auditlog"
	"github.com/dalemusser/inclouds/internal/app/system/flash"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/metrics"
	"github.com/dalemusser/inclouds/internal/app/system/timeouts"
	"github.com/dalemusser/inclouds/internal/app/system/viewdata"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const pageURL = "/favorites"

// Handler serves the favorites page and API.
type Handler struct {
	tree   *tree.Store
	favs   *favstore.Store
	flash  *flash.Manager
	errLog *errorsfeature.ErrorLogger
	audit  *auditlog.Logger
	logger *zap.Logger
}

func NewHandler(ts *tree.Store, favs *favstore.Store, fm *flash.Manager, errLog *errorsfeature.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		tree:   ts,
		favs:   favs,
		flash:  fm,
		errLog: errLog,
		audit:  audit,
		logger: logger,
	}
}

// Routes mounts the HTML page.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.page)
	r.Post("/prune", h.prune)
	return r
}

// PageVM is the view model for the favorites page.
type PageVM struct {
	viewdata.BaseVM
	Folders []library.EntryRow
	Files   []library.EntryRow
	Stale   int
}

// entries returns the existing favorites of kind as entries. Paths that
// vanished between the existence check and the stat are skipped.
func (h *Handler) entries(r *http.Request, kind models.Kind) []models.Entry {
	paths := h.favs.List(kind, library.Checker(h.tree))
	out := make([]models.Entry, 0, len(paths))
	for _, p := range paths {
		e, err := h.tree.Stat(r.Context(), p)
		if err != nil {
			h.logger.Debug("favorite not readable", zap.String("path", p), zap.Error(err))
			continue
		}
		if e.IsFolder() {
			ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Walk(), h.logger, "favorites.folder_size")
			if size, err := h.tree.FolderSize(ctx, p); err == nil {
				e.Size = size
			}
			cancel()
		}
		out = append(out, e)
	}
	return out
}

func (h *Handler) rows(entries []models.Entry, csrfToken string) []library.EntryRow {
	out := make([]library.EntryRow, 0, len(entries))
	for _, e := range entries {
		row := library.Row(e, true)
		row.Location = library.LocationLabel(e.Parent())
		row.ReturnURL = pageURL
		row.CSRFToken = csrfToken
		out = append(out, row)
	}
	return out
}

// page lists favorite folders and files that still exist.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(w, r, "Favorites", "/library")

	folders := h.entries(r, models.KindFolder)
	files := h.entries(r, models.KindFile)
	snap := h.favs.Snapshot()

	templates.Render(w, r, "favorites/list", PageVM{
		BaseVM:  base,
		Folders: h.rows(folders, base.CSRFToken),
		Files:   h.rows(files, base.CSRFToken),
		Stale:   len(snap.Folders) + len(snap.Files) - len(folders) - len(files),
	})
}

// prune drops favorites whose entries no longer exist.
func (h *Handler) prune(w http.ResponseWriter, r *http.Request) {
	removed, err := h.favs.Prune(library.Checker(h.tree))
	metrics.RecordOperation("prune_favorites", err)
	if err != nil {
		h.errLog.Log(r, "failed to prune favorites", err)
		h.flash.Error(w, r, fserr.Message(err))
		http.Redirect(w, r, pageURL, http.StatusSeeOther)
		return
	}
	h.audit.FavoritesPruned(r, removed)

	switch removed {
	case 0:
		h.flash.Add(w, r, flash.LevelInfo, "No stale favorites to remove.")
	case 1:
		h.flash.Success(w, r, "Removed 1 stale favorite.")
	default:
		h.flash.Success(w, r, fmt.Sprintf("Removed %d stale favorites.", removed))
	}
	http.Redirect(w, r, pageURL, http.StatusSeeOther)
}
