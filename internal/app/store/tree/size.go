package tree

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"go.uber.org/zap"
)

// TotalSize returns the sum of the sizes of all files under the root.
// It walks the tree on every call; nothing is cached.
func (s *Store) TotalSize(ctx context.Context) (int64, error) {
	n, err := s.walkSize(ctx, s.root)
	if err != nil {
		return 0, fserr.IO("total size", "", err)
	}
	return n, nil
}

// FolderSize returns the recursive size of the folder at path.
func (s *Store) FolderSize(ctx context.Context, path string) (int64, error) {
	const op = "folder size"
	rel, abs, err := s.resolve(op, path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return 0, fserr.FromOS(op, rel, err)
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	n, err := s.walkSize(ctx, abs)
	if err != nil {
		return 0, fserr.IO(op, rel, err)
	}
	return n, nil
}

// walkSize sums regular file sizes under dir. fastwalk invokes the callback
// from several goroutines, so the total is accumulated atomically.
// Unreadable entries are skipped.
func (s *Store) walkSize(ctx context.Context, dir string) (int64, error) {
	var total atomic.Int64
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			s.logger.Debug("skipping unreadable entry", zap.String("path", p), zap.Error(err))
			return nil
		}
		hidden := s.isHidden(p, filepath.Base(p))
		if d.IsDir() {
			if hidden && p != dir {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || hidden {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total.Add(info.Size())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total.Load(), nil
}
