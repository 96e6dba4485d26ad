// Package remote is the extension point for handing a file to an external
// cloud viewer. Only a stub provider exists; it performs no network I/O.
package remote

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Ref identifies a file held by a remote provider.
type Ref struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Uploader hands a local file to a remote provider.
type Uploader interface {
	Upload(ctx context.Context, path, mimeType string) (Ref, error)
}

// Stub fabricates a Drive-style reference from the file name.
type Stub struct{}

// Upload returns a reference derived from the file's stem.
func (Stub) Upload(ctx context.Context, path, mimeType string) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	base := filepath.Base(filepath.FromSlash(path))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	id := "dummy_google_file_id_" + stem
	return Ref{
		ID:  id,
		URL: fmt.Sprintf("https://drive.google.com/file/d/%s/view", id),
	}, nil
}

// New returns the uploader for a configured provider name.
func New(provider string) (Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "stub":
		return Stub{}, nil
	}
	return nil, fmt.Errorf("unknown remote provider %q", provider)
}
