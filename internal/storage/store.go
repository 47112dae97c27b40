// Package storage keeps voice journal recordings in object storage or on disk.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for empty keys or keys escaping the store root.
var ErrInvalidKey = errors.New("storage: invalid key")

// ObjectStore stores recordings by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Name() string
}
