package service

import (
	"context"
	"io"

	"onboard/internal/files/models"
)

// BlobStore persists file bytes by key. Implementations return
// sentinel.ErrTooLarge when r holds more than limit bytes, ErrAlreadyUsed for
// an existing key and ErrNotFound for a missing one.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, limit int64) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (models.BlobInfo, error)
	Delete(ctx context.Context, key string) error
}
