package tree

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddFile writes the contents of r to parent/name, creating parent if it
// is missing. An existing file with the same name is replaced.
//
// The data is streamed into a temporary file beside the target and renamed
// into place once complete, so a failed or oversized upload never leaves a
// partial file behind. Errors returned by r that already carry an fserr
// kind (such as an exceeded upload limit) are passed through unchanged.
func (s *Store) AddFile(ctx context.Context, parent, name string, r io.Reader) (models.Entry, error) {
	const op = "upload"
	p, dirAbs, err := s.resolve(op, parent)
	if err != nil {
		return models.Entry{}, err
	}
	if err := checkName(op, p, name); err != nil {
		return models.Entry{}, err
	}
	rel, abs, err := s.resolve(op, navstate.Join(p, name))
	if err != nil {
		return models.Entry{}, err
	}

	if err := os.MkdirAll(dirAbs, 0o755); err != nil {
		return models.Entry{}, fserr.IO(op, p, err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return models.Entry{}, fserr.Conflict(op, rel)
	}

	tmpPath := filepath.Join(dirAbs, TempPrefix+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return models.Entry{}, fserr.IO(op, rel, err)
	}

	cleanup := func() {
		tmp.Close()
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("failed to remove partial upload", zap.String("path", tmpPath), zap.Error(rmErr))
		}
	}

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		cleanup()
		var fe *fserr.Error
		if errors.As(err, &fe) {
			return models.Entry{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Entry{}, ctxErr
		}
		return models.Entry{}, fserr.IO(op, rel, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return models.Entry{}, fserr.IO(op, rel, err)
	}
	if err := os.Rename(tmpPath, abs); err != nil {
		cleanup()
		return models.Entry{}, fserr.IO(op, rel, err)
	}
	s.changed()

	info, err := os.Stat(abs)
	if err != nil {
		return models.Entry{}, fserr.FromOS(op, rel, err)
	}
	return entryFrom(rel, info), nil
}

// DeleteFile removes a single file.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	const op = "delete file"
	rel, abs, err := s.resolve(op, path)
	if err != nil {
		return err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return fserr.FromOS(op, rel, err)
	}
	if info.IsDir() {
		return fserr.Validation(op, rel, "That entry is a folder, not a file.")
	}
	if err := os.Remove(abs); err != nil {
		return fserr.FromOS(op, rel, err)
	}
	s.changed()
	return nil
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
