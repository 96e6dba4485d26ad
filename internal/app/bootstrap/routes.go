// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/inclouds/internal/app/features/errors"
	favoritesfeature "github.com/dalemusser/inclouds/internal/app/features/favorites"
	healthfeature "github.com/dalemusser/inclouds/internal/app/features/health"
	homefeature "github.com/dalemusser/inclouds/internal/app/features/home"
	libraryfeature "github.com/dalemusser/inclouds/internal/app/features/library"
	libraryapifeature "github.com/dalemusser/inclouds/internal/app/features/libraryapi"
	pagesfeature "github.com/dalemusser/inclouds/internal/app/features/pages"
	appresources "github.com/dalemusser/inclouds/internal/app/resources"
	"github.com/dalemusser/inclouds/internal/app/system/metrics"
	"github.com/dalemusser/inclouds/internal/app/system/uploadlimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// requestTimeout bounds every request except streamed uploads, which are
// limited by size instead.
const requestTimeout = 30 * time.Second

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, backend setup and Startup have
// completed.
//
// Two kinds of routes share the router:
//   - Browser routes: CSRF tokens + flash messages + WAFFLE CORS
//   - /api routes: JSON only, no CSRF, CORS limited to api_allowed_origins
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(recoverer(errorsHandler, logger))
	r.Use(timeoutExceptUploads(requestTimeout))

	if appCfg.MetricsEnabled {
		r.Use(metrics.Middleware)
	}

	// CORS middleware: must be early in the chain to handle preflight requests.
	// /api carries its own origin list, so the site-wide policy skips it.
	siteCORS := middleware.CORSFromConfig(coreCfg)
	r.Use(func(next http.Handler) http.Handler {
		withCORS := siteCORS(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if isAPI(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}
			withCORS.ServeHTTP(w, req)
		})
	})

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Upload size is enforced before CSRF validation parses the form.
	r.Use(uploadlimit.Middleware(appCfg.MaxUploadSize))

	// CSRF protection middleware with path-based exemption for API routes.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("inclouds_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)

	// Wrap CSRF middleware to skip for API routes. They accept only JSON
	// or preflighted methods, which cross-site forms cannot send.
	r.Use(func(next http.Handler) http.Handler {
		csrfHandler := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if isAPI(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}
			csrfHandler.ServeHTTP(w, req)
		})
	})

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(logger,
		healthfeature.StorageCheck(deps.Tree.Root()),
		healthfeature.FavoritesCheck(deps.Favorites),
	)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	// /assets/* serves embedded assets (bundled into the binary)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	r.Mount("/", homefeature.Routes())

	pagesHandler := pagesfeature.NewHandler(deps.Pages, errLog, logger)
	r.Mount("/about", pagesHandler.AboutRouter())
	r.Mount("/pages", pagesHandler.Routes(errorsHandler.NotFound))

	// Library: browse, upload, rename, delete, favorites, preview
	libraryHandler := libraryfeature.NewHandler(
		deps.Tree,
		deps.Favorites,
		deps.Remote,
		deps.Flash,
		errLog,
		deps.Audit,
		appCfg.MaxUploadSize,
		logger,
	)
	r.Mount("/library", libraryfeature.Routes(libraryHandler))

	favoritesHandler := favoritesfeature.NewHandler(deps.Tree, deps.Favorites, deps.Flash, errLog, deps.Audit, logger)
	r.Mount("/favorites", favoritesfeature.Routes(favoritesHandler))

	// ─────────────────────────────────────────────────────────────────────────────
	// JSON API
	// ─────────────────────────────────────────────────────────────────────────────
	libraryAPIHandler := libraryapifeature.NewHandler(deps.Tree, errLog, deps.Audit, appCfg.MaxUploadSize, logger)
	r.Mount("/api/library", libraryapifeature.Routes(libraryAPIHandler, appCfg.APIAllowedOrigins))
	r.Mount("/api/favorites", favoritesfeature.APIRoutes(favoritesHandler, appCfg.APIAllowedOrigins))

	// 404 catch-all for unmatched routes
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

func isAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// isUpload reports whether req streams a file body.
func isUpload(req *http.Request) bool {
	return (req.Method == http.MethodPost && req.URL.Path == "/library/upload") ||
		(req.Method == http.MethodPut && req.URL.Path == "/api/library/files")
}

// timeoutExceptUploads applies chi's request timeout to everything but uploads.
func timeoutExceptUploads(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		withTimeout := chimw.Timeout(d)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if isUpload(req) {
				next.ServeHTTP(w, req)
				return
			}
			withTimeout.ServeHTTP(w, req)
		})
	}
}

// recoverer turns a handler panic into a logged 500. Browser routes get the
// error page; API routes get a JSON body.
func recoverer(errorsHandler *errorsfeature.Handler, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic serving request",
					zap.Any("panic", rec),
					zap.String("path", req.URL.Path),
					zap.String("method", req.Method),
					zap.String("request_id", chimw.GetReqID(req.Context())),
					zap.Stack("stack"),
				)
				if isAPI(req.URL.Path) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"internal error"}`))
					return
				}
				errorsHandler.InternalError(w, req)
			}()
			next.ServeHTTP(w, req)
		})
	}
}
