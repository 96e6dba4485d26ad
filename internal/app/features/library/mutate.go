package library

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/inputval"
	"github.com/dalemusser/inclouds/internal/app/system/jsonutil"
	"github.com/dalemusser/inclouds/internal/app/system/metrics"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/app/system/normalize"
	"github.com/dalemusser/inclouds/internal/app/system/uploadlimit"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// FolderInput is the new folder form.
type FolderInput struct {
	Parent string `validate:"relpath" label:"Folder"`
	Name   string `validate:"required,max=255,entryname" label:"Folder name"`
}

// RenameInput is the rename form.
type RenameInput struct {
	Path string `validate:"required,relpath" label:"Path"`
	Name string `validate:"required,max=255,entryname" label:"New name"`
}

// EntryInput identifies one entry for delete and favorite toggles.
type EntryInput struct {
	Path string `validate:"required,relpath" label:"Path"`
	Kind string `validate:"required,kind" label:"Kind"`
}

// returnTo picks the redirect target after a form post: the posted return
// URL when it is local, otherwise the given folder.
func returnTo(r *http.Request, folder string) string {
	return urlutil.SafeReturn(r.FormValue("return"), "", BrowseURL(folder, ""))
}

// createFolder creates a subfolder of the active folder.
func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := FolderInput{
		Parent: normalize.PathToken(r.FormValue("parent")),
		Name:   normalize.Name(r.FormValue("name")),
	}
	back := returnTo(r, in.Parent)
	if res := inputval.Validate(in); res.HasErrors() {
		h.flash.Error(w, r, res.First())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	e, err := h.tree.CreateFolder(r.Context(), in.Parent, in.Name)
	metrics.RecordOperation("create_folder", err)
	h.audit.FolderCreated(r, navstate.Join(in.Parent, in.Name), err)
	if err != nil {
		h.fail(w, r, back, "failed to create folder", err)
		return
	}
	h.done(w, r, back, fmt.Sprintf("Folder '%s' successfully created.", e.Name))
}

// upload stores one or more files in a folder. The body is streamed part by
// part; the "parent" field must precede the file parts. When the body was
// already parsed (a form post whose CSRF token travelled in the body) the
// parsed form is used instead.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	var (
		parent string
		saved  []models.Entry
		err    error
	)
	if r.MultipartForm != nil {
		parent = normalize.PathToken(r.FormValue("parent"))
		saved, err = h.uploadParsed(r, parent)
	} else {
		parent, saved, err = h.uploadStreamed(r)
	}
	back := returnTo(r, parent)

	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			err = uploadlimit.TooLarge("", h.maxUpload)
		}
		if fserr.HTTPStatus(err) == http.StatusInternalServerError {
			h.errLog.Log(r, "upload failed", err)
		}
		h.flash.Error(w, r, uploadFailure(parent, saved, err))
		finishUpload(w, r, back)
		return
	}
	switch len(saved) {
	case 0:
		h.flash.Error(w, r, "Please select a file to upload.")
	case 1:
		h.flash.Success(w, r, fmt.Sprintf("File '%s' successfully uploaded to folder '%s'.", saved[0].Name, folderLabel(parent)))
	default:
		h.flash.Success(w, r, fmt.Sprintf("%d files successfully uploaded to folder '%s'.", len(saved), folderLabel(parent)))
	}
	finishUpload(w, r, back)
}

// finishUpload redirects a form post. Script-driven uploads get the target
// as JSON instead, so the flash survives until the browser navigates.
// uploadFailure reports the files stored before err stopped a multi-file
// upload, so the user knows which ones need sending again.
func uploadFailure(parent string, saved []models.Entry, err error) string {
	msg := fserr.Message(err)
	switch len(saved) {
	case 0:
		return msg
	case 1:
		return fmt.Sprintf("File '%s' was uploaded to folder '%s' before the upload stopped: %s", saved[0].Name, folderLabel(parent), msg)
	}
	return fmt.Sprintf("%d files were uploaded to folder '%s' before the upload stopped: %s", len(saved), folderLabel(parent), msg)
}

func finishUpload(w http.ResponseWriter, r *http.Request, back string) {
	if r.Header.Get("X-Requested-With") == "fetch" {
		jsonutil.OK(w, map[string]string{"redirect": back})
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// The streamed form is read in order, so the destination must be known
// before the first file part.
var errFolderFieldOrder = fserr.Validation("upload", "", "The folder field must come before the files.")

func (h *Handler) uploadStreamed(r *http.Request) (string, []models.Entry, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, fserr.Validation("upload", "", "The upload form was not valid.")
	}
	var (
		parent    string
		sawParent bool
		saved     []models.Entry
	)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return parent, saved, nil
		}
		if err != nil {
			return parent, saved, err
		}
		switch part.FormName() {
		case "parent":
			if len(saved) > 0 {
				return parent, saved, errFolderFieldOrder
			}
			sawParent = true
			b, err := io.ReadAll(io.LimitReader(part, 4096))
			if err != nil {
				return parent, saved, err
			}
			parent = normalize.PathToken(string(b))
		case "file":
			if part.FileName() == "" {
				continue
			}
			if !sawParent {
				return parent, saved, errFolderFieldOrder
			}
			e, err := h.store(r, parent, part.FileName(), part)
			if err != nil {
				return parent, saved, err
			}
			saved = append(saved, e)
		}
		part.Close()
	}
}

func (h *Handler) uploadParsed(r *http.Request, parent string) ([]models.Entry, error) {
	var saved []models.Entry
	for _, fh := range r.MultipartForm.File["file"] {
		e, err := h.storeHeader(r, parent, fh)
		if err != nil {
			return saved, err
		}
		saved = append(saved, e)
	}
	return saved, nil
}

func (h *Handler) storeHeader(r *http.Request, parent string, fh *multipart.FileHeader) (models.Entry, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Entry{}, fserr.IO("upload", fh.Filename, err)
	}
	defer f.Close()
	return h.store(r, parent, fh.Filename, f)
}

// store writes one uploaded file under the size limit.
func (h *Handler) store(r *http.Request, parent, filename string, body io.Reader) (models.Entry, error) {
	name := uploadName(filename)
	if !inputval.IsValidEntryName(name) {
		return models.Entry{}, fserr.Validation("upload", filename, "That file name cannot be used.")
	}
	e, err := h.tree.AddFile(r.Context(), parent, name, uploadlimit.NewReader(body, name, h.maxUpload))
	metrics.RecordOperation("upload", err)
	h.audit.FileUploaded(r, navstate.Join(parent, name), e.Size, err)
	if err == nil {
		metrics.RecordUpload(e.Size)
	}
	return e, err
}

// uploadName strips any client-side directory from a submitted file name.
func uploadName(filename string) string {
	return normalize.Name(path.Base(strings.ReplaceAll(filename, `\`, "/")))
}

// leadsInto reports whether the library URL back shows path or something
// below it, which no longer exists after a delete or rename.
func leadsInto(back, path string) bool {
	u, err := url.Parse(back)
	if err != nil {
		return false
	}
	p := normalize.PathToken(u.Query().Get("path"))
	return p == path || strings.HasPrefix(p, path+"/")
}

func folderLabel(token string) string {
	if token == navstate.RootToken {
		return "Home"
	}
	return token
}

// rename renames a folder or file within its folder.
func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := RenameInput{
		Path: normalize.PathToken(r.FormValue("path")),
		Name: normalize.Name(r.FormValue("name")),
	}
	back := returnTo(r, navstate.Parent(in.Path))
	if res := inputval.Validate(in); res.HasErrors() {
		h.flash.Error(w, r, res.First())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if leadsInto(back, in.Path) {
		back = BrowseURL(navstate.Parent(in.Path), "")
	}

	e, err := h.tree.Rename(r.Context(), in.Path, in.Name)
	metrics.RecordOperation("rename", err)
	h.audit.EntryRenamed(r, in.Path, navstate.Join(navstate.Parent(in.Path), in.Name), err)
	if err != nil {
		h.fail(w, r, back, "failed to rename", err)
		return
	}
	label := "File"
	if e.IsFolder() {
		label = "Folder"
	}
	h.done(w, r, back, fmt.Sprintf("%s '%s' successfully renamed to '%s'.", label, navstate.Base(in.Path), e.Name))
}

// delete removes a file, or a folder with all its contents.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := EntryInput{
		Path: normalize.PathToken(r.FormValue("path")),
		Kind: normalize.Kind(r.FormValue("kind")),
	}
	parent := navstate.Parent(in.Path)
	back := returnTo(r, parent)
	if res := inputval.Validate(in); res.HasErrors() {
		h.flash.Error(w, r, res.First())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if leadsInto(back, in.Path) {
		back = BrowseURL(parent, "")
	}

	kind, _ := models.ParseKind(in.Kind)
	var err error
	if kind == models.KindFolder {
		err = h.tree.DeleteFolder(r.Context(), in.Path)
		metrics.RecordOperation("delete_folder", err)
		h.audit.FolderDeleted(r, in.Path, err)
	} else {
		err = h.tree.DeleteFile(r.Context(), in.Path)
		metrics.RecordOperation("delete_file", err)
		h.audit.FileDeleted(r, in.Path, err)
	}
	if err != nil {
		h.fail(w, r, back, "failed to delete", err)
		return
	}
	if kind == models.KindFolder {
		h.done(w, r, back, fmt.Sprintf("Folder '%s' successfully deleted along with its contents.", navstate.Base(in.Path)))
		return
	}
	h.done(w, r, back, fmt.Sprintf("File '%s' successfully deleted.", navstate.Base(in.Path)))
}

// toggleFavorite flips the favorite flag of an entry. A missing entry can
// only be switched off, which is how stale favorites are cleared one by one.
func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := EntryInput{
		Path: normalize.PathToken(r.FormValue("path")),
		Kind: normalize.Kind(r.FormValue("kind")),
	}
	back := returnTo(r, navstate.Parent(in.Path))
	if res := inputval.Validate(in); res.HasErrors() {
		h.flash.Error(w, r, res.First())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	on, err := ToggleFavorite(h.tree, h.favs, in.Path, in.Kind)
	metrics.RecordOperation("toggle_favorite", err)
	if err != nil {
		h.fail(w, r, back, "failed to toggle favorite", err)
		return
	}
	h.audit.FavoriteToggled(r, in.Path, in.Kind, on)
	if on {
		h.done(w, r, back, fmt.Sprintf("'%s' added to favorites.", navstate.Base(in.Path)))
		return
	}
	h.done(w, r, back, fmt.Sprintf("'%s' removed from favorites.", navstate.Base(in.Path)))
}
