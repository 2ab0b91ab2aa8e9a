package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/entity"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	FilesRepo repository.SourceFileRepository
	logger    *slog.Logger
}

func NewFSIngestor(f repository.SourceFileRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{FilesRepo: f, logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (Document, error) {
	var out Document

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !IsInvoiceExt(ext) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "ext", ext)
		return out, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		i.logger.Error("open error", "path", abs, "error", err)
		return out, err
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			i.logger.Warn("close file error", "path", abs, "error", err)
		}
	}(f)

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		i.logger.Error("hash error", "path", abs, "error", err)
		return out, err
	}
	sum := h.Sum(nil)

	row, dedup, err := i.FilesRepo.UpsertByHash(ctx, &entity.SourceFile{
		SourcePath:  abs,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    size,
		ContentHash: sum,
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		return out, err
	}

	out = Document{
		Path:        row.SourcePath,
		FileID:      row.ID.String(),
		Duplicate:   dedup,
		ContentHash: hex.EncodeToString(sum),
		Ext:         row.FileExt,
		ReceivedAt:  row.UploadedAt,
	}
	i.logger.Info("ingest.file.ok", "path", abs, "file_id", out.FileID, "duplicate", dedup)
	return out, nil
}

// IngestDirectory ingests every invoice file under root. Per-file failures
// are recorded in the returned documents and do not stop the walk.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, WalkStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, WalkStats{}, errors.New("root_path is required")
	}

	var results []Document
	var stats WalkStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Visited++
		if walkErr != nil {
			results = append(results, Document{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !IsInvoiceExt(filepath.Ext(path)) {
			return nil
		}
		stats.Invoices++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			results = append(results, Document{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Registered++
		if r.Duplicate {
			stats.Duplicates++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Info("ingest.dir.done", "root", root, "visited", stats.Visited, "invoices", stats.Invoices, "duplicates", stats.Duplicates, "failed", stats.Failed)
	return results, stats, nil
}
