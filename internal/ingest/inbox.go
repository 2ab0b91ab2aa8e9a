package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/internal/core/async"
)

// Inbox ingests watched paths and queues new content for processing.
type Inbox struct {
	ingestor Ingestor
	queue    async.Queue
	logger   *slog.Logger
}

func NewInbox(ing Ingestor, q async.Queue, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{ingestor: ing, queue: q, logger: logger}
}

// Handle ingests one path. Content seen before is not queued again.
func (in *Inbox) Handle(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// renamed away before the debounce fired
		return nil
	}
	res, err := in.ingestor.IngestPath(ctx, path)
	if err != nil {
		in.logger.Warn("inbox.ingest.failed", "path", path, "error", err)
		return err
	}
	if res.Duplicate {
		in.logger.Info("inbox.duplicate", "path", path, "file_id", res.FileID)
		return nil
	}
	id, err := uuid.Parse(res.FileID)
	if err != nil {
		return err
	}
	return in.queue.Enqueue(ctx, async.Job{FileID: id, Path: res.Path, ContentHash: res.ContentHash, QueuedAt: time.Now().UTC()})
}

// Run handles paths until the channel closes or ctx is done.
func (in *Inbox) Run(ctx context.Context, paths <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-paths:
			if !ok {
				return
			}
			_ = in.Handle(ctx, p)
		}
	}
}
