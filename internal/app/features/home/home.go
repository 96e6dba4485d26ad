// internal/app/features/home/home.go
package home

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// LandingPath is where the site root sends visitors.
const LandingPath = "/library"

// Routes returns a chi.Router with home routes mounted.
func Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", Index)
	return r
}

// Index redirects to the library root, preserving a query string so old
// bookmarks like /?path=docs keep working.
func Index(w http.ResponseWriter, r *http.Request) {
	target := LandingPath
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}
