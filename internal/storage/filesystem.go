package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// FilesystemStore implements IconStore on the local filesystem.
// Icons land under DataDir and are served by the HTTP layer from BaseURL.
type FilesystemStore struct {
	dataDir string
	baseURL string
	logger  zerolog.Logger
}

// NewFilesystemStore creates a filesystem icon store rooted at dataDir.
func NewFilesystemStore(dataDir, baseURL string, logger zerolog.Logger) (*FilesystemStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create icon directory: %w", err)
	}
	return &FilesystemStore{
		dataDir: dataDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("component", "icon_store").Logger(),
	}, nil
}

// Put stores the icon content and returns its public URL.
func (s *FilesystemStore) Put(ctx context.Context, name, contentType string, content io.Reader) (string, error) {
	clean := sanitizeName(name)
	dst := filepath.Join(s.dataDir, clean)

	// Write through a temp file so a failed upload never leaves a
	// truncated icon behind.
	tmp, err := os.CreateTemp(s.dataDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write icon: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close icon file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("failed to move icon into place: %w", err)
	}

	s.logger.Debug().Str("icon", clean).Msg("icon stored")
	return s.baseURL + "/" + clean, nil
}

// Delete removes a stored icon. Missing icons are not an error.
func (s *FilesystemStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dataDir, sanitizeName(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete icon: %w", err)
	}
	return nil
}

// sanitizeName strips any path components from an icon name.
func sanitizeName(name string) string {
	return path.Base(path.Clean("/" + name))
}

// Ensure FilesystemStore implements IconStore.
var _ IconStore = (*FilesystemStore)(nil)
