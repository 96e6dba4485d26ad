// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/inclouds/internal/app/system/remote"
	"github.com/dalemusser/inclouds/internal/app/system/timezones"
	"github.com/dalemusser/inclouds/internal/app/system/uploadlimit"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "INCLOUDS"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: storage_root, favorites_file, etc.
//   - Environment variables: INCLOUDS_STORAGE_ROOT, INCLOUDS_FAVORITES_FILE, etc.
//   - Command-line flags: --storage_root, --favorites_file, etc.
var appConfigKeys = []config.AppKey{
	{Name: "storage_root", Default: "./uploads", Desc: "Folder holding all managed folders and files"},
	{Name: "max_upload_size", Default: int(uploadlimit.DefaultMaxBytes), Desc: "Maximum upload size in bytes (default: 1 GiB)"},

	// Favorites
	{Name: "favorites_file", Default: "favorites.json", Desc: "Favorites JSON document"},
	{Name: "favorites_backup_dir", Default: "", Desc: "Favorites backup directory (blank disables backups)"},
	{Name: "favorites_backup_keep", Default: 7, Desc: "Number of favorites backups to keep"},
	{Name: "favorites_backup_interval", Default: "24h", Desc: "Time between favorites backups"},

	{Name: "usage_refresh_interval", Default: "5m", Desc: "How often the storage usage gauges are refreshed"},

	// Timeouts
	{Name: "listing_timeout", Default: "10s", Desc: "Timeout for listing one folder"},
	{Name: "walk_timeout", Default: "60s", Desc: "Timeout for whole-tree walks (usage, search)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "inclouds-session", Desc: "Session cookie name"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	{Name: "api_allowed_origins", Default: "", Desc: "Comma-separated origins allowed to call /api cross-site"},

	// Site display
	{Name: "site_name", Default: "InClouds", Desc: "Site name shown in the header"},
	{Name: "footer_html", Default: "", Desc: "Footer HTML (sanitized)"},
	{Name: "pages_dir", Default: "", Desc: "Directory of page overrides such as about.html"},
	{Name: "display_timezone", Default: "Local", Desc: "IANA time zone for modification times, e.g. America/Chicago"},

	{Name: "remote_provider", Default: "stub", Desc: "Remote viewer provider: 'stub'"},

	{Name: "metrics_enabled", Default: false, Desc: "Expose Prometheus metrics at /metrics"},
	{Name: "audit_log", Default: "log", Desc: "Audit event logging: 'log' or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, INCLOUDS_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StorageRoot:   appValues.String("storage_root"),
		MaxUploadSize: int64(appValues.Int("max_upload_size")),

		FavoritesFile:           appValues.String("favorites_file"),
		FavoritesBackupDir:      appValues.String("favorites_backup_dir"),
		FavoritesBackupKeep:     appValues.Int("favorites_backup_keep"),
		FavoritesBackupInterval: appValues.Duration("favorites_backup_interval", 24*time.Hour),

		UsageRefreshInterval: appValues.Duration("usage_refresh_interval", 5*time.Minute),

		ListingTimeout: appValues.Duration("listing_timeout", 10*time.Second),
		WalkTimeout:    appValues.Duration("walk_timeout", 60*time.Second),

		SessionKey:  appValues.String("session_key"),
		SessionName: appValues.String("session_name"),
		CSRFKey:     appValues.String("csrf_key"),

		APIAllowedOrigins: splitList(appValues.String("api_allowed_origins")),

		SiteName:   appValues.String("site_name"),
		FooterHTML: appValues.String("footer_html"),
		PagesDir:   appValues.String("pages_dir"),
		Timezone:   appValues.String("display_timezone"),

		RemoteProvider: appValues.String("remote_provider"),

		MetricsEnabled: appValues.Bool("metrics_enabled"),
		AuditLog:       appValues.String("audit_log"),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if strings.TrimSpace(appCfg.StorageRoot) == "" {
		return errors.New("storage_root must not be empty")
	}
	if strings.TrimSpace(appCfg.FavoritesFile) == "" {
		return errors.New("favorites_file must not be empty")
	}
	if appCfg.MaxUploadSize <= 0 {
		return fmt.Errorf("max_upload_size must be positive, got %d", appCfg.MaxUploadSize)
	}
	if _, err := remote.New(appCfg.RemoteProvider); err != nil {
		logger.Error("invalid remote provider", zap.Error(err))
		return err
	}
	switch appCfg.AuditLog {
	case "log", "off":
	default:
		return fmt.Errorf("audit_log must be 'log' or 'off', got %q", appCfg.AuditLog)
	}
	if !timezones.Valid(appCfg.Timezone) {
		return fmt.Errorf("display_timezone %q is not a known time zone", appCfg.Timezone)
	}
	if appCfg.FavoritesBackupDir != "" && appCfg.FavoritesBackupKeep < 1 {
		return fmt.Errorf("favorites_backup_keep must be at least 1, got %d", appCfg.FavoritesBackupKeep)
	}
	return nil
}
