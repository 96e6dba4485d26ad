// Package apicors provides CORS middleware for the JSON API.
//
// The API has no credentials of its own, so cross-origin access is opt-in:
// with no configured origins no CORS headers are sent and browsers keep
// other sites out. Mutating requests must also carry a JSON body or use a
// method that forces a preflight, which stands in for CSRF tokens on /api.
package apicors

import (
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Middleware returns CORS middleware that only allows specific origins.
// An empty list allows none.
//
// Usage:
//
//	r.Use(apicors.Middleware(appCfg.APIAllowedOrigins...))
func Middleware(allowedOrigins ...string) func(http.Handler) http.Handler {
	var origins []string
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	// cors treats an empty list as "*".
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
		MaxAge:         86400, // 24 hours
	})
}

// RequireJSON rejects POST requests whose body is not JSON. HTML forms
// cannot send application/json cross-site without a preflight.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":"Content-Type must be application/json"}` + "\n"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
