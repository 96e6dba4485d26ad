// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"html/template"

	"github.com/dalemusser/inclouds/internal/app/resources"
	"github.com/dalemusser/inclouds/internal/app/system/metrics"
	"github.com/dalemusser/inclouds/internal/app/system/tasks"
	"github.com/dalemusser/inclouds/internal/app/system/timeouts"
	"github.com/dalemusser/inclouds/internal/app/system/timezones"
	"github.com/dalemusser/inclouds/internal/app/system/viewdata"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after the storage backends are ready, but before the
// HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{
		Listing: appCfg.ListingTimeout,
		Walk:    appCfg.WalkTimeout,
	})

	if err := timezones.SetDisplay(appCfg.Timezone); err != nil {
		return err
	}

	viewdata.Init(models.SiteSettings{
		SiteName:   appCfg.SiteName,
		FooterHTML: template.HTML(appCfg.FooterHTML),
	}, deps.Flash)

	startTaskRunner(appCfg, deps, logger)

	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)
	taskRunner.OnResult(metrics.RecordJob)

	taskRunner.Register(tasks.StorageUsageJob(deps.Tree, deps.Favorites, appCfg.UsageRefreshInterval, logger))

	if appCfg.FavoritesBackupDir != "" {
		taskRunner.Register(tasks.FavoritesBackupJob(
			deps.Favorites,
			appCfg.FavoritesBackupDir,
			appCfg.FavoritesBackupKeep,
			appCfg.FavoritesBackupInterval,
			logger,
		))
	}

	runner := taskRunner
	deps.Tree.OnChange(func() { runner.Trigger(tasks.StorageUsage) })

	taskRunner.Start()
}
