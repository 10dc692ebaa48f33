// Package storage provides backends for badge icon artwork.
package storage

import (
	"context"
	"io"
)

// IconStore persists badge icon artwork and returns the public URL the
// icon will be served from. Implementations: filesystem and S3.
type IconStore interface {
	// Put stores the icon content under the given name and returns its
	// public URL. An existing icon with the same name is replaced.
	Put(ctx context.Context, name string, contentType string, content io.Reader) (string, error)

	// Delete removes a stored icon. Missing icons are not an error.
	Delete(ctx context.Context, name string) error
}
