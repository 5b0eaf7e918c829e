package storage

import (
	"context"
	"io"
)

// ObjectStorage holds attachment bytes outside the database. A nil
// value means attachments are disabled for this deployment.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
