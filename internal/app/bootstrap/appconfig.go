// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings: ports and TLS, logging, CORS for the HTML
// site, request body limits and timeouts.
type AppConfig struct {
	// Storage tree
	StorageRoot   string // Folder holding every managed folder and file (default: ./uploads)
	MaxUploadSize int64  // Largest accepted upload in bytes (default: 1 GiB)

	// Favorites document
	FavoritesFile           string        // JSON document of starred paths (default: favorites.json)
	FavoritesBackupDir      string        // Where timestamped backups go; empty disables backups
	FavoritesBackupKeep     int           // Number of backups kept (default: 7)
	FavoritesBackupInterval time.Duration // Time between backups (default: 24h)

	// Background storage usage refresh for the metrics gauges
	UsageRefreshInterval time.Duration // default: 5m

	// Operation timeouts
	ListingTimeout time.Duration // Listing a single folder (default: 10s)
	WalkTimeout    time.Duration // Whole-tree walks: usage, search (default: 60s)

	// Session management (flash messages only; there are no logins)
	SessionKey  string // Secret key for signing session cookies (must be strong in production)
	SessionName string // Cookie name (default: inclouds-session)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// JSON API
	APIAllowedOrigins []string // Origins allowed to call /api cross-site; empty allows none

	// Site display
	SiteName   string // Shown in the title bar and menu (default: InClouds)
	FooterHTML string // Sanitized footer HTML
	PagesDir   string // Directory of page overrides such as about.html; empty uses built-in text
	Timezone   string // IANA zone for displayed modification times (default: Local)

	// Remote viewer provider: "stub"
	RemoteProvider string

	// Observability
	MetricsEnabled bool   // Expose Prometheus metrics at /metrics
	AuditLog       string // Mutation audit events: "log" (zap) or "off"
}
