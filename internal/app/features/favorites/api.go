package favorites

import (
	"net/http"

	"github.com/dalemusser/inclouds/internal/app/features/library"
	"github.com/dalemusser/inclouds/internal/app/system/apicors"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/jsonutil"
	"github.com/dalemusser/inclouds/internal/app/system/metrics"
	"github.com/dalemusser/inclouds/internal/app/system/normalize"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// APIRoutes returns the favorites JSON API.
//
// When mounted at /api/favorites:
//   - GET  /api/favorites         - Favorite paths by kind; ?all=true includes stale ones
//   - POST /api/favorites/toggle  - Flip one flag {"path","kind"}
//   - POST /api/favorites/remove  - Clear one flag {"path","kind"}, stale or not
//   - POST /api/favorites/prune   - Remove stale favorites
func APIRoutes(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.Middleware(allowedOrigins...))
	r.Use(apicors.RequireJSON)

	r.Get("/", h.apiList)
	r.Post("/toggle", h.apiToggle)
	r.Post("/remove", h.apiRemove)
	r.Post("/prune", h.apiPrune)
	return r
}

func (h *Handler) apiList(w http.ResponseWriter, r *http.Request) {
	if query.Get(r, "all") == "true" {
		jsonutil.OK(w, h.favs.Snapshot())
		return
	}
	exists := library.Checker(h.tree)
	jsonutil.OK(w, models.FavoriteSet{
		Folders: h.favs.List(models.KindFolder, exists),
		Files:   h.favs.List(models.KindFile, exists),
	})
}

type toggleRequest struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

type toggleResponse struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Favorite bool   `json:"favorite"`
}

func (h *Handler) apiToggle(w http.ResponseWriter, r *http.Request) {
	var in toggleRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON body")
		return
	}
	p := normalize.PathToken(in.Path)
	kind := normalize.Kind(in.Kind)

	on, err := library.ToggleFavorite(h.tree, h.favs, p, kind)
	metrics.RecordOperation("toggle_favorite", err)
	if err != nil {
		if fserr.HTTPStatus(err) == http.StatusInternalServerError {
			h.errLog.Log(r, "failed to toggle favorite", err)
		}
		jsonutil.FromError(w, err)
		return
	}
	h.audit.FavoriteToggled(r, p, kind, on)
	jsonutil.OK(w, toggleResponse{Path: p, Kind: kind, Favorite: on})
}

// apiRemove unstars one entry without consulting the tree, so a favorite
// whose target is gone can be dropped on its own.
func (h *Handler) apiRemove(w http.ResponseWriter, r *http.Request) {
	var in toggleRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON body")
		return
	}
	p := normalize.PathToken(in.Path)
	kind, ok := models.ParseKind(normalize.Kind(in.Kind))
	if !ok {
		jsonutil.BadRequest(w, "kind must be folder or file")
		return
	}

	err := h.favs.Remove(p, kind)
	metrics.RecordOperation("remove_favorite", err)
	if err != nil {
		if fserr.HTTPStatus(err) == http.StatusInternalServerError {
			h.errLog.Log(r, "failed to remove favorite", err)
		}
		jsonutil.FromError(w, err)
		return
	}
	h.audit.FavoriteToggled(r, p, string(kind), false)
	jsonutil.OK(w, toggleResponse{Path: p, Kind: string(kind), Favorite: false})
}

func (h *Handler) apiPrune(w http.ResponseWriter, r *http.Request) {
	removed, err := h.favs.Prune(library.Checker(h.tree))
	metrics.RecordOperation("prune_favorites", err)
	if err != nil {
		h.errLog.Log(r, "failed to prune favorites", err)
		jsonutil.FromError(w, err)
		return
	}
	h.audit.FavoritesPruned(r, removed)
	jsonutil.OK(w, map[string]int{"removed": removed})
}
