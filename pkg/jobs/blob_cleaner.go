package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BlobDeleter removes a stored object.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

// BlobCleaner deletes stored objects in the background so that removing a
// user or a job does not wait on object storage.
type BlobCleaner struct {
	queue *Queue[string]
}

// NewBlobCleaner builds a cleaner on top of store. Call Start before use.
func NewBlobCleaner(store BlobDeleter, logger *zap.Logger) *BlobCleaner {
	handler := func(ctx context.Context, key string) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return store.Delete(ctx, key)
	}
	return &BlobCleaner{queue: NewQueue[string]("blob-cleanup", handler, QueueConfig{
		Workers:    2,
		BufferSize: 256,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Logger:     logger,
	})}
}

// Start launches the cleanup workers.
func (c *BlobCleaner) Start(ctx context.Context) { c.queue.Start(ctx) }

// Stop waits up to timeout for queued deletions, then stops the workers.
func (c *BlobCleaner) Stop(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = c.queue.Drain(ctx)
	c.queue.Stop()
}

// Delete schedules key for removal. The request context only bounds the
// enqueue, not the deletion itself.
func (c *BlobCleaner) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	return c.queue.Enqueue(key, key)
}
