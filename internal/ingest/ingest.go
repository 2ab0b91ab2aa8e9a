package ingest

import (
	"context"
	"time"
)

// Document is one invoice file after ingestion. A duplicate reuses the
// FileID of the first file with the same content. Err is set, and FileID
// empty, when the file never reached the store.
type Document struct {
	Path        string
	FileID      string
	Duplicate   bool
	ContentHash string // sha256, hex
	Ext         string
	ReceivedAt  time.Time
	Err         string
}

// WalkStats counts one directory walk. Invoices are files on the extension
// allow-list; Registered includes duplicates.
type WalkStats struct {
	Visited    uint32
	Invoices   uint32
	Registered uint32
	Duplicates uint32
	Failed     uint32
}

// Ingestor registers invoice documents as source files.
type Ingestor interface {
	IngestPath(ctx context.Context, path string) (Document, error)
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, WalkStats, error)
}
