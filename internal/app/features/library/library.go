package library

import (
	"net/http"
	"net/url"

	errorsfeature "github.com/dalemusser/inclouds/internal/app/features/errors"
	"github.com/dalemusser/inclouds/internal/app/store/favorites"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/auditlog"
	"github.com/dalemusser/inclouds/internal/app/system/flash"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/app/system/remote"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides library handlers.
type Handler struct {
	tree      *tree.Store
	favs      *favorites.Store
	remote    remote.Uploader
	flash     *flash.Manager
	errLog    *errorsfeature.ErrorLogger
	audit     *auditlog.Logger
	maxUpload int64
	logger    *zap.Logger
}

// NewHandler creates a new library Handler.
func NewHandler(
	ts *tree.Store,
	favs *favorites.Store,
	uploader remote.Uploader,
	fm *flash.Manager,
	errLog *errorsfeature.ErrorLogger,
	audit *auditlog.Logger,
	maxUpload int64,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		tree:      ts,
		favs:      favs,
		remote:    uploader,
		flash:     fm,
		errLog:    errLog,
		audit:     audit,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Routes returns a chi.Router with library routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.browse)
	r.Get("/search", h.search)
	r.Get("/preview", h.preview)
	r.Get("/view", h.view)
	r.Get("/download", h.download)

	r.Post("/folders", h.createFolder)
	r.Post("/upload", h.upload)
	r.Post("/rename", h.rename)
	r.Post("/delete", h.delete)
	r.Post("/favorite", h.toggleFavorite)

	return r
}

// BrowseURL returns the library URL for a folder token, with an optional
// name filter.
func BrowseURL(token, q string) string {
	v := url.Values{}
	if token != navstate.RootToken {
		v.Set("path", token)
	}
	if q != "" {
		v.Set("q", q)
	}
	if len(v) == 0 {
		return "/library"
	}
	return "/library?" + v.Encode()
}

// PreviewURL returns the preview page URL for a file token.
func PreviewURL(token string) string {
	return "/library/preview?" + url.Values{"path": {token}}.Encode()
}

// fileURL returns the raw view or download URL for a file token.
func fileURL(action, token string) string {
	return "/library/" + action + "?" + url.Values{"path": {token}}.Encode()
}

// fail reports err to the user on the next page and redirects to. Errors
// that are not user mistakes are also logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, to, msg string, err error) {
	if fserr.HTTPStatus(err) == http.StatusInternalServerError {
		h.errLog.Log(r, msg, err)
	}
	h.flash.Error(w, r, fserr.Message(err))
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// done reports success on the next page and redirects to.
func (h *Handler) done(w http.ResponseWriter, r *http.Request, to, msg string) {
	h.flash.Success(w, r, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
