// Package async processes ingested files on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Enqueue after Shutdown started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one stored invoice file to be extracted and registered.
// Path and ContentHash only label log lines; FileID drives the work.
type Job struct {
	FileID      uuid.UUID
	Path        string
	ContentHash string
	QueuedAt    time.Time
}

// Queue accepts invoice files for background registration.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
