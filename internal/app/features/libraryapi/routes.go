package libraryapi

import (
	"net/http"

	"github.com/dalemusser/inclouds/internal/app/system/apicors"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the library API endpoints.
//
// When mounted at /api/library:
//   - GET    /api/library?path=&q=         - List a folder
//   - GET    /api/library/entry?path=      - Stat one entry
//   - GET    /api/library/search?pattern=  - Glob search across the tree
//   - GET    /api/library/usage            - Storage usage
//   - POST   /api/library/folders          - Create a folder {"parent","name"}
//   - DELETE /api/library/folders?path=    - Delete a folder recursively
//   - PUT    /api/library/files?path=      - Upload a file (raw body)
//   - GET    /api/library/files?path=      - Download a file
//   - DELETE /api/library/files?path=      - Delete a file
//   - POST   /api/library/rename           - Rename an entry {"path","name"}
func Routes(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.Middleware(allowedOrigins...))
	r.Use(apicors.RequireJSON)

	r.Get("/", h.List)
	r.Get("/entry", h.Stat)
	r.Get("/search", h.Search)
	r.Get("/usage", h.Usage)

	r.Post("/folders", h.CreateFolder)
	r.Delete("/folders", h.DeleteFolder)

	r.Put("/files", h.Upload)
	r.Get("/files", h.Download)
	r.Delete("/files", h.DeleteFile)

	r.Post("/rename", h.Rename)

	return r
}
