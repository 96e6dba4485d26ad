package favorites

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"go.uber.org/zap"
)

const backupPrefix = "favorites-"

// Backup writes a timestamped copy of the current document into dir and
// removes older copies beyond the newest keep. keep <= 0 keeps everything.
func (s *Store) Backup(dir string, keep int) (string, error) {
	const op = "backup favorites"
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if err != nil {
		return "", fserr.FromOS(op, s.path, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fserr.IO(op, dir, err)
	}
	stamp := time.Now().UTC().Format("20060102-150405.000000000")
	name := fmt.Sprintf("%s%s.json", backupPrefix, stamp)
	dst := filepath.Join(dir, name)
	if err := writeAtomic(dst, data); err != nil {
		return "", fserr.IO(op, dst, err)
	}

	if keep > 0 {
		if err := s.cleanupBackups(dir, keep); err != nil {
			s.logger.Warn("failed to remove old favorites backups", zap.String("dir", dir), zap.Error(err))
		}
	}
	return dst, nil
}

// cleanupBackups keeps only the newest keep backups. Names sort
// chronologically because of the timestamp format.
func (s *Store) cleanupBackups(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, backupPrefix) && filepath.Ext(n) == ".json" {
			names = append(names, n)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for i := keep; i < len(names); i++ {
		if err := os.Remove(filepath.Join(dir, names[i])); err != nil {
			return fmt.Errorf("remove old backup %s: %w", names[i], err)
		}
	}
	return nil
}
