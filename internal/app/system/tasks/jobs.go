package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/inclouds/internal/app/store/favorites"
	"github.com/dalemusser/inclouds/internal/app/store/tree"
	"github.com/dalemusser/inclouds/internal/app/system/diskstat"
	"github.com/dalemusser/inclouds/internal/app/system/metrics"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"go.uber.org/zap"
)

// Job names.
const (
	StorageUsage    = "storage-usage"
	FavoritesBackup = "favorites-backup"
)

// StorageUsageJob creates a job that walks the storage tree and refreshes
// the storage, volume and favorites gauges.
func StorageUsageJob(store *tree.Store, favs *favorites.Store, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     StorageUsage,
		Interval: interval,
		Run: func(ctx context.Context) error {
			total, err := store.TotalSize(ctx)
			if err != nil {
				return err
			}
			metrics.SetStorageUsed(total)

			if u, err := diskstat.Of(store.Root()); err != nil {
				logger.Warn("volume usage unavailable", zap.Error(err))
			} else {
				metrics.SetVolumeFree(u.Free)
			}

			if favs != nil {
				snap := favs.Snapshot()
				metrics.SetFavorites(string(models.KindFolder), len(snap.Folders))
				metrics.SetFavorites(string(models.KindFile), len(snap.Files))
			}

			logger.Debug("storage usage refreshed", zap.Int64("bytes", total))
			return nil
		},
	}
}

// FavoritesBackupJob creates a job that copies the favorites document into
// dir, keeping the newest keep copies.
func FavoritesBackupJob(favs *favorites.Store, dir string, keep int, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     FavoritesBackup,
		Interval: interval,
		Run: func(ctx context.Context) error {
			path, err := favs.Backup(dir, keep)
			if err != nil {
				return err
			}
			logger.Info("favorites backed up", zap.String("backup", path))
			return nil
		},
	}
}
