// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dalemusser/inclouds/internal/app/store/favorites"
	pagestore "github.com/dalemusser/inclouds/internal/app/store/pages"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/auditlog"
	"github.com/dalemusser/inclouds/internal/app/system/flash"
	"github.com/dalemusser/inclouds/internal/app/system/remote"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB builds the storage backends.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. Nothing here touches the network: the tree store creates the
// storage root if needed and the favorites store is only constructed; its
// document is read in EnsureSchema.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	ts, err := tree.New(appCfg.StorageRoot, logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("failed to open storage root: %w", err)
	}
	logger.Info("opened storage root", zap.String("root", ts.Root()))

	favs := favorites.New(appCfg.FavoritesFile, logger)
	favs.SetLegacyRoot(filepath.Base(ts.Root()))

	uploader, err := remote.New(appCfg.RemoteProvider)
	if err != nil {
		return DBDeps{}, err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	fm, err := flash.New(appCfg.SessionKey, appCfg.SessionName, secure, logger)
	if err != nil {
		logger.Error("flash session store init failed", zap.Error(err))
		return DBDeps{}, err
	}

	return DBDeps{
		Tree:      ts,
		Favorites: favs,
		Pages:     pagestore.New(appCfg.PagesDir),
		Remote:    uploader,
		Flash:     fm,
		Audit:     auditlog.New(logger, auditlog.Config{Mode: appCfg.AuditLog}),
	}, nil
}

// EnsureSchema loads the favorites document and keeps it out of listings
// when it lives inside the storage root.
//
// A missing document is created empty, a legacy array is migrated, and a
// corrupt one is reset; only I/O failures abort startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	deps.Tree.Hide(deps.Favorites.Path())
	if appCfg.FavoritesBackupDir != "" {
		deps.Tree.Hide(appCfg.FavoritesBackupDir)
	}

	logger.Info("loading favorites", zap.String("path", deps.Favorites.Path()))
	if err := deps.Favorites.Load(); err != nil {
		logger.Error("failed to load favorites", zap.Error(err))
		return err
	}

	snap := deps.Favorites.Snapshot()
	logger.Info("favorites loaded",
		zap.Int("folders", len(snap.Folders)),
		zap.Int("files", len(snap.Files)))
	return nil
}
