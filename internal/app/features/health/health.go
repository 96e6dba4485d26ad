// internal/app/features/health/health.go
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dalemusser/inclouds/internal/app/store/favorites"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Check is one named dependency probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Handler provides health check endpoints.
type Handler struct {
	checks []Check
	logger *zap.Logger
}

// NewHandler creates a new health check Handler.
func NewHandler(logger *zap.Logger, checks ...Check) *Handler {
	return &Handler{
		checks: checks,
		logger: logger,
	}
}

// StorageCheck verifies that root is a directory the process can write to.
func StorageCheck(root string) Check {
	return Check{
		Name: "storage",
		Probe: func(ctx context.Context) error {
			info, err := os.Stat(root)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("storage root %s is not a directory", root)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			probe := filepath.Join(root, tree.TempPrefix+"health-"+uuid.NewString())
			if err := os.WriteFile(probe, nil, 0o600); err != nil {
				return fmt.Errorf("storage root not writable: %w", err)
			}
			return os.Remove(probe)
		},
	}
}

// FavoritesCheck verifies that the favorites document has been loaded.
func FavoritesCheck(favs *favorites.Store) Check {
	return Check{
		Name: "favorites",
		Probe: func(ctx context.Context) error {
			if !favs.Loaded() {
				return fmt.Errorf("favorites document %s not loaded", favs.Path())
			}
			return nil
		},
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds /ready, /readyz and /livez directly on the root router.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// run probes every dependency and reports the status of each.
func (h *Handler) run(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()

	services := make(map[string]string, len(h.checks))
	healthy := true
	for _, c := range h.checks {
		if err := c.Probe(ctx); err != nil {
			healthy = false
			services[c.Name] = "unavailable"
			h.logger.Warn("health check failed", zap.String("service", c.Name), zap.Error(err))
			continue
		}
		services[c.Name] = "ok"
	}
	return services, healthy
}

// Check performs a full health check of every dependency.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	services, healthy := h.run(r.Context())
	resp := Response{Status: "ok", Services: services}
	if !healthy {
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}

// Ready checks if the service is ready to accept requests.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, healthy := h.run(r.Context()); !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.Write([]byte(`{"status":"ready"}`))
}

// Live checks if the service is alive.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"alive"}`))
}
