package library

import (
	"html/template"
	"io"
	"mime"
	"net/http"
	"unicode/utf8"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/htmlsanitize"
	"github.com/dalemusser/inclouds/internal/app/system/humanize"
	"github.com/dalemusser/inclouds/internal/app/system/metrics"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/app/system/normalize"
	"github.com/dalemusser/inclouds/internal/app/system/preview"
	"github.com/dalemusser/inclouds/internal/app/system/timezones"
	"github.com/dalemusser/inclouds/internal/app/system/viewdata"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Limits for content embedded in the preview page.
const (
	maxTextPreview = 256 << 10
	maxHTMLPreview = 1 << 20
)

// view serves a file for inline display. Markup is served as plain text
// and the response is sandboxed so uploaded content never runs as the app.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "inline")
}

// download serves a file as an attachment.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "attachment")
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, disposition string) {
	token := normalize.PathToken(query.Get(r, "path"))
	f, e, err := h.tree.Open(r.Context(), token)
	if err != nil {
		if fserr.HTTPStatus(err) == http.StatusInternalServerError {
			h.errLog.Log(r, "failed to open file", err)
		}
		http.Error(w, fserr.Message(err), fserr.HTTPStatus(err))
		return
	}
	defer f.Close()

	ct := preview.ContentType(f.Name(), e.Name)
	if disposition == "inline" {
		ct = preview.InlineContentType(f.Name(), e.Name)
		w.Header().Set("Content-Security-Policy", "sandbox")
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": e.Name}))

	// ServeContent handles Range requests, which video and audio seeking need.
	http.ServeContent(w, r, e.Name, e.ModTime, f)
	if disposition == "attachment" {
		metrics.RecordDownload(e.Size)
	}
}

// PreviewVM is the view model for the preview page.
type PreviewVM struct {
	viewdata.BaseVM
	Path        string
	Name        string
	Kind        string
	MIME        string
	Size        string
	Modified    string
	IsFavorite  bool
	FolderURL   string
	ViewURL     string
	DownloadURL string
	ReturnURL   string
	Text        string
	HTML        template.HTML
	Truncated   bool
	RemoteURL   string
	RemoteError string
}

// preview shows one file with the presentation its type calls for.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	token := normalize.PathToken(query.Get(r, "path"))
	f, e, err := h.tree.Open(r.Context(), token)
	if err != nil {
		h.fail(w, r, BrowseURL(navstate.Parent(token), ""), "failed to open preview", err)
		return
	}
	defer f.Close()

	info := preview.For(e.Name)
	vm := PreviewVM{
		BaseVM:      viewdata.NewBaseVM(w, r, e.Name, BrowseURL(e.Parent(), "")),
		Path:        e.Path,
		Name:        e.Name,
		Kind:        string(info.Kind),
		MIME:        preview.ContentType(f.Name(), e.Name),
		Size:        humanize.Bytes(e.Size),
		Modified:    timezones.Format(e.ModTime),
		IsFavorite:  h.favs.IsFavorite(e.Path, models.KindFile),
		FolderURL:   BrowseURL(e.Parent(), ""),
		ViewURL:     fileURL("view", e.Path),
		DownloadURL: fileURL("download", e.Path),
		ReturnURL:   PreviewURL(e.Path),
	}

	switch info.Kind {
	case preview.KindText:
		text, truncated, err := readCapped(f, maxTextPreview)
		if err != nil {
			h.logger.Warn("text preview failed", zap.String("path", e.Path), zap.Error(err))
		}
		if !utf8.ValidString(text) {
			// Binary content behind a text extension gets the download link only.
			vm.Kind = string(preview.KindOther)
			text = ""
		}
		vm.Text, vm.Truncated = text, truncated
	case preview.KindHTML:
		doc, truncated, err := readCapped(f, maxHTMLPreview)
		if err != nil {
			h.logger.Warn("html preview failed", zap.String("path", e.Path), zap.Error(err))
		}
		vm.HTML, vm.Truncated = htmlsanitize.Document(doc), truncated
	}

	if info.RemoteLink() && h.remote != nil {
		ref, err := h.remote.Upload(r.Context(), e.Path, vm.MIME)
		if err != nil {
			h.logger.Warn("remote viewer link failed", zap.String("path", e.Path), zap.Error(err))
			vm.RemoteError = "The cloud viewer is not available right now."
		} else {
			vm.RemoteURL = ref.URL
		}
	}

	templates.Render(w, r, "library/preview", vm)
}

// readCapped reads at most limit bytes and reports whether more remained.
func readCapped(r io.Reader, limit int64) (string, bool, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", false, err
	}
	if int64(len(b)) > limit {
		b = b[:limit]
		// Drop a rune split by the cut.
		for i := 0; i < utf8.UTFMax && len(b) > 0 && !utf8.Valid(b); i++ {
			b = b[:len(b)-1]
		}
		return string(b), true, nil
	}
	return string(b), false, nil
}
