// Package libraryapi exposes the storage tree as a JSON API. Every core
// operation of the browser library is available here with the same
// semantics; errors come back as {"error": message} with a status derived
// from the error kind.
package libraryapi

import (
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/inclouds/internal/app/features/errors"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/auditlog"
	"github.com/dalemusser/inclouds/internal/app/system/diskstat"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/humanize"
	"github.com/dalemusser/inclouds/internal/app/system/jsonutil"
	"github.com/dalemusser/inclouds/internal/app/system/metrics"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/app/system/normalize"
	"github.com/dalemusser/inclouds/internal/app/system/timeouts"
	"github.com/dalemusser/inclouds/internal/app/system/uploadlimit"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Handler handles library API requests.
type Handler struct {
	tree      *tree.Store
	errLog    *errorsfeature.ErrorLogger
	audit     *auditlog.Logger
	maxUpload int64
	logger    *zap.Logger
}

// NewHandler creates a new libraryapi handler.
func NewHandler(ts *tree.Store, errLog *errorsfeature.ErrorLogger, audit *auditlog.Logger, maxUpload int64, logger *zap.Logger) *Handler {
	return &Handler{
		tree:      ts,
		errLog:    errLog,
		audit:     audit,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// writeErr maps err to a JSON error response, logging server faults.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if fserr.HTTPStatus(err) == http.StatusInternalServerError {
		h.errLog.Log(r, msg, err)
	}
	jsonutil.FromError(w, err)
}

func pathParam(r *http.Request) string {
	return normalize.PathToken(query.Get(r, "path"))
}

// List handles GET /api/library.
//
// Response (200 OK):
//
//	{
//	    "path": "docs",
//	    "folders": [{"path": "docs/2024", "name": "2024", "kind": "folder", "size": 5, ...}],
//	    "files":   [{"path": "docs/a.txt", "name": "a.txt", "kind": "file", "size": 5, ...}]
//	}
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Listing(), h.logger, "api.list")
	defer cancel()

	listing, err := h.tree.List(ctx, pathParam(r), normalize.QueryParam(query.Get(r, "q")))
	if err != nil {
		h.writeErr(w, r, "failed to list folder", err)
		return
	}
	jsonutil.OK(w, listing)
}

// Stat handles GET /api/library/entry. Folder sizes are aggregated.
func (h *Handler) Stat(w http.ResponseWriter, r *http.Request) {
	e, err := h.tree.Stat(r.Context(), pathParam(r))
	if err != nil {
		h.writeErr(w, r, "failed to stat entry", err)
		return
	}
	if e.IsFolder() {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Walk(), h.logger, "api.folder_size")
		defer cancel()
		size, err := h.tree.FolderSize(ctx, e.Path)
		if err != nil {
			h.writeErr(w, r, "failed to size folder", err)
			return
		}
		e.Size = size
	}
	jsonutil.OK(w, e)
}

// Search handles GET /api/library/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Walk(), h.logger, "api.search")
	defer cancel()

	entries, err := h.tree.Search(ctx, query.Get(r, "pattern"))
	if err != nil {
		h.writeErr(w, r, "search failed", err)
		return
	}
	jsonutil.OK(w, map[string]any{
		"results":   entries,
		"truncated": len(entries) >= tree.MaxSearchResults,
	})
}

// usageResponse is the body of GET /api/library/usage.
type usageResponse struct {
	UsedBytes   int64   `json:"used_bytes"`
	UsedMB      string  `json:"used_mb"`
	VolumeTotal uint64  `json:"volume_total_bytes,omitempty"`
	VolumeFree  uint64  `json:"volume_free_bytes,omitempty"`
	VolumeUsed  float64 `json:"volume_used_percent,omitempty"`
}

// Usage handles GET /api/library/usage.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Walk(), h.logger, "api.total_size")
	defer cancel()

	total, err := h.tree.TotalSize(ctx)
	if err != nil {
		h.writeErr(w, r, "failed to compute storage usage", err)
		return
	}
	resp := usageResponse{UsedBytes: total, UsedMB: humanize.Megabytes(total)}
	if vol, err := diskstat.Of(h.tree.Root()); err == nil {
		resp.VolumeTotal = vol.Total
		resp.VolumeFree = vol.Free
		resp.VolumeUsed = vol.UsedPercent
	}
	jsonutil.OK(w, resp)
}

type folderRequest struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
}

// CreateFolder handles POST /api/library/folders.
// Creating a folder that already exists succeeds and returns it.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var in folderRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON body")
		return
	}
	parent := normalize.PathToken(in.Parent)
	name := normalize.Name(in.Name)

	e, err := h.tree.CreateFolder(r.Context(), parent, name)
	metrics.RecordOperation("create_folder", err)
	h.audit.FolderCreated(r, navstate.Join(parent, name), err)
	if err != nil {
		h.writeErr(w, r, "failed to create folder", err)
		return
	}
	jsonutil.Created(w, e)
}

// DeleteFolder handles DELETE /api/library/folders.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	p := pathParam(r)
	err := h.tree.DeleteFolder(r.Context(), p)
	metrics.RecordOperation("delete_folder", err)
	h.audit.FolderDeleted(r, p, err)
	if err != nil {
		h.writeErr(w, r, "failed to delete folder", err)
		return
	}
	jsonutil.NoContent(w)
}

// Upload handles PUT /api/library/files?path=docs/a.txt with the file as
// the raw request body. An existing file is replaced.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	p := pathParam(r)
	if err := uploadlimit.CheckRequest(r, h.maxUpload); err != nil {
		jsonutil.Error(w, http.StatusRequestEntityTooLarge, fserr.Message(err))
		return
	}
	clean, err := navstate.Clean(p)
	if err != nil {
		h.writeErr(w, r, "invalid upload path", err)
		return
	}
	if clean == navstate.RootToken {
		jsonutil.BadRequest(w, "path must name a file")
		return
	}
	parent, name := navstate.Parent(clean), navstate.Base(clean)

	body := uploadlimit.NewReader(r.Body, name, h.maxUpload)
	e, err := h.tree.AddFile(r.Context(), parent, name, body)
	metrics.RecordOperation("upload", err)
	h.audit.FileUploaded(r, clean, body.N(), err)
	if err != nil {
		h.writeErr(w, r, "upload failed", err)
		return
	}
	metrics.RecordUpload(e.Size)
	jsonutil.Created(w, e)
}

// Download handles GET /api/library/files.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	f, e, err := h.tree.Open(r.Context(), pathParam(r))
	if err != nil {
		h.writeErr(w, r, "failed to open file", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(e.Size, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, e.Name, e.ModTime, f)
	metrics.RecordDownload(e.Size)
}

// DeleteFile handles DELETE /api/library/files.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	p := pathParam(r)
	err := h.tree.DeleteFile(r.Context(), p)
	metrics.RecordOperation("delete_file", err)
	h.audit.FileDeleted(r, p, err)
	if err != nil {
		h.writeErr(w, r, "failed to delete file", err)
		return
	}
	jsonutil.NoContent(w)
}

type renameRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Rename handles POST /api/library/rename. Renaming onto an existing
// sibling is a 409.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var in renameRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON body")
		return
	}
	p := normalize.PathToken(in.Path)
	name := normalize.Name(in.Name)

	e, err := h.tree.Rename(r.Context(), p, name)
	metrics.RecordOperation("rename", err)
	h.audit.EntryRenamed(r, p, navstate.Join(navstate.Parent(p), name), err)
	if err != nil {
		h.writeErr(w, r, "failed to rename", err)
		return
	}
	jsonutil.OK(w, e)
}
