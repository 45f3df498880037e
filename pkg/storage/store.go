package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when a key has no stored object.
var ErrObjectNotFound = errors.New("storage: object not found")

// Store is the blob backend used for application resumes.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// DownloadURL returns a time-limited link for key. owner is embedded in
	// signed tokens so a leaked link cannot be replayed against another record.
	DownloadURL(ctx context.Context, owner, key string) (string, time.Time, error)
}
