// Package pages serves the about page and any extra pages placed in the
// configured pages directory.
package pages

import (
	"errors"
	"html/template"
	"net/http"

	errorsfeature "github.com/dalemusser/inclouds/internal/app/features/errors"
	pagestore "github.com/dalemusser/inclouds/internal/app/store/pages"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/htmlsanitize"
	"github.com/dalemusser/inclouds/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides page content handlers.
type Handler struct {
	pageStore *pagestore.Store
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
}

// NewHandler creates a new pages Handler.
func NewHandler(ps *pagestore.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		pageStore: ps,
		errLog:    errLog,
		logger:    logger,
	}
}

// PageVM is the view model for page content. An empty Content renders the
// built-in text for the slug.
type PageVM struct {
	viewdata.BaseVM
	Slug    string
	Content template.HTML
}

// AboutRouter returns a router for the about page.
func (h *Handler) AboutRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showPage("about", "About Us"))
	return r
}

// Routes serves pages_dir/<slug>.html at /<slug>. Unknown or malformed
// slugs go to notFound.
func (h *Handler) Routes(notFound http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Get("/{slug}", func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		page, err := h.pageStore.GetBySlug(r.Context(), slug)
		switch {
		case err == nil:
		case errors.Is(err, fserr.ErrNotFound), errors.Is(err, fserr.ErrValidation):
			notFound(w, r)
			return
		default:
			h.errLog.Log(r, "failed to get page", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		title := page.Title
		if title == "" {
			title = slug
		}
		templates.Render(w, r, "pages/show", PageVM{
			BaseVM:  viewdata.NewBaseVM(w, r, title, "/library"),
			Slug:    slug,
			Content: htmlsanitize.SanitizeToHTML(page.Content),
		})
	})
	return r
}

// showPage returns a handler for a page with built-in fallback text.
func (h *Handler) showPage(slug, defaultTitle string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pageStore.GetBySlug(r.Context(), slug)
		if err != nil && !errors.Is(err, fserr.ErrNotFound) {
			h.errLog.Log(r, "failed to get page", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		vm := PageVM{
			BaseVM: viewdata.NewBaseVM(w, r, defaultTitle, "/library"),
			Slug:   slug,
		}
		if err == nil {
			if page.Title != "" {
				vm.Title = page.Title
			}
			vm.Content = htmlsanitize.SanitizeToHTML(page.Content)
		}

		templates.Render(w, r, "pages/show", vm)
	}
}
