package library

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/diskstat"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/humanize"
	"github.com/dalemusser/inclouds/internal/app/system/inputval"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/app/system/normalize"
	"github.com/dalemusser/inclouds/internal/app/system/preview"
	"github.com/dalemusser/inclouds/internal/app/system/timeouts"
	"github.com/dalemusser/inclouds/internal/app/system/timezones"
	"github.com/dalemusser/inclouds/internal/app/system/viewdata"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Crumb is one breadcrumb link.
type Crumb struct {
	Name string
	URL  string
}

// EntryRow is a folder or file in a listing.
type EntryRow struct {
	Path       string
	Name       string
	Kind       string
	Size       string
	SizeBytes  int64
	Modified   string
	Icon       string
	IsFavorite bool
	URL        string // browse URL for folders, preview URL for files
	Location   string // containing folder, shown in search and favorites
	ReturnURL  string
	CSRFToken  string
}

// UsageVM is the storage usage panel.
type UsageVM struct {
	UsedMB      string
	Used        string
	Available   bool
	VolumeFree  string
	VolumeTotal string
	VolumePct   string
	HasVolume   bool
}

// BrowseVM is the view model for the browse page.
type BrowseVM struct {
	viewdata.BaseVM
	Path       string
	FolderName string
	IsRoot     bool
	ParentURL  string
	Crumbs     []Crumb
	Query      string
	Folders    []EntryRow
	Files      []EntryRow
	Usage      UsageVM
	MaxUpload  string
	ReturnURL  string
	ClearURL   string
}

// Row converts an entry into a listing row.
func Row(e models.Entry, favorite bool) EntryRow {
	row := EntryRow{
		Path:       e.Path,
		Name:       e.Name,
		Kind:       string(e.Kind),
		Size:       humanize.Bytes(e.Size),
		SizeBytes:  e.Size,
		Modified:   timezones.Format(e.ModTime),
		IsFavorite: favorite,
	}
	if e.IsFolder() {
		row.Icon = "folder"
		row.URL = BrowseURL(e.Path, "")
	} else {
		row.Icon = preview.Icon(e.Name)
		row.URL = PreviewURL(e.Path)
	}
	return row
}

// rows builds listing rows whose forms post back to returnURL.
func (h *Handler) rows(entries []models.Entry, returnURL, csrfToken string, withLocation bool) []EntryRow {
	out := make([]EntryRow, 0, len(entries))
	for _, e := range entries {
		row := Row(e, h.favs.IsFavorite(e.Path, e.Kind))
		row.ReturnURL = returnURL
		row.CSRFToken = csrfToken
		if withLocation {
			row.Location = LocationLabel(e.Parent())
		}
		out = append(out, row)
	}
	return out
}

// LocationLabel names a containing folder for display.
func LocationLabel(parent string) string {
	if parent == navstate.RootToken {
		return "Home"
	}
	return "Home/" + parent
}

func crumbs(loc navstate.Location) []Crumb {
	out := make([]Crumb, 0, len(loc.Crumbs))
	for _, c := range loc.Crumbs {
		out = append(out, Crumb{Name: c.Name, URL: BrowseURL(c.Token, "")})
	}
	return out
}

// browse lists the active folder.
func (h *Handler) browse(w http.ResponseWriter, r *http.Request) {
	token := normalize.PathToken(query.Get(r, "path"))
	q := normalize.QueryParam(query.Get(r, "q"))

	loc, err := navstate.Resolve(h.tree.Root(), token)
	if err != nil {
		h.fail(w, r, BrowseURL(navstate.RootToken, ""), "invalid folder path", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Listing(), h.logger, "library.list")
	defer cancel()
	listing, err := h.tree.List(ctx, loc.Token, q)
	if err != nil {
		if loc.IsRoot {
			h.errLog.Log(r, "failed to list storage root", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		// A stale or mistyped path falls back to its parent.
		h.fail(w, r, BrowseURL(loc.Parent, ""), "failed to list folder", err)
		return
	}

	base := viewdata.NewBaseVM(w, r, "Library", "/library")
	back := BrowseURL(loc.Token, q)
	vm := BrowseVM{
		BaseVM:     base,
		Path:       loc.Token,
		FolderName: navstate.Base(loc.Token),
		IsRoot:     loc.IsRoot,
		Crumbs:     crumbs(loc),
		Query:      q,
		Folders:    h.rows(listing.Folders, back, base.CSRFToken, false),
		Files:      h.rows(listing.Files, back, base.CSRFToken, false),
		Usage:      h.usage(r),
		MaxUpload:  humanize.Bytes(h.maxUpload),
		ReturnURL:  back,
		ClearURL:   BrowseURL(loc.Token, ""),
	}
	if !loc.IsRoot {
		vm.ParentURL = BrowseURL(loc.Parent, "")
		vm.Title = vm.FolderName
	}

	templates.Render(w, r, "library/browse", vm)
}

// usage computes the storage panel. Failures degrade the panel rather
// than the page.
func (h *Handler) usage(r *http.Request) UsageVM {
	var u UsageVM

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Walk(), h.logger, "library.total_size")
	defer cancel()
	total, err := h.tree.TotalSize(ctx)
	if err != nil {
		h.logger.Warn("storage total unavailable", zap.Error(err))
	} else {
		u.Available = true
		u.UsedMB = humanize.Megabytes(total)
		u.Used = humanize.Bytes(total)
	}

	if vol, err := diskstat.Of(h.tree.Root()); err == nil {
		u.HasVolume = true
		u.VolumeFree = humanize.Bytes(int64(vol.Free))
		u.VolumeTotal = humanize.Bytes(int64(vol.Total))
		u.VolumePct = humanize.Percent(vol.UsedPercent)
	}
	return u
}

// SearchInput is the search form.
type SearchInput struct {
	Pattern string `validate:"required,max=512,glob" label:"Search pattern"`
}

// SearchVM is the view model for the search page.
type SearchVM struct {
	viewdata.BaseVM
	Pattern  string
	Searched bool
	Error    string
	Results  []EntryRow
	Capped   bool
}

// search finds entries anywhere in the tree by glob pattern.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	vm := SearchVM{
		BaseVM:  viewdata.NewBaseVM(w, r, "Search", "/library"),
		Pattern: normalize.QueryParam(query.Get(r, "pattern")),
	}
	back := "/library/search?" + url.Values{"pattern": {vm.Pattern}}.Encode()

	if vm.Pattern != "" {
		vm.Searched = true
		if res := inputval.Validate(SearchInput{Pattern: vm.Pattern}); res.HasErrors() {
			vm.Error = res.First()
		} else {
			ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Walk(), h.logger, "library.search")
			defer cancel()
			entries, err := h.tree.Search(ctx, vm.Pattern)
			switch {
			case err == nil:
				vm.Results = h.rows(entries, back, vm.CSRFToken, true)
				vm.Capped = len(entries) >= tree.MaxSearchResults
			case errors.Is(err, fserr.ErrValidation), errors.Is(err, fserr.ErrPathEscape):
				vm.Error = fserr.Message(err)
			default:
				h.errLog.Log(r, "search failed", err)
				vm.Error = "Search failed. Please try again."
			}
		}
	}

	templates.Render(w, r, "library/search", vm)
}
