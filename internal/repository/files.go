package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/internal/entity"
)

const sourceFilesTable = "source_files"

var sourceFileColumns = []string{"id", "source_path", "filename", "file_ext", "file_size", "content_hash", "uploaded_at"}

type SourceFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SourceFile, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.SourceFile, error)
	Create(ctx context.Context, f *entity.SourceFile) (*entity.SourceFile, error)
	// UpsertByHash returns the stored row for f's content hash, creating it
	// when absent. existed reports whether the content was already known.
	UpsertByHash(ctx context.Context, f *entity.SourceFile) (row *entity.SourceFile, existed bool, err error)
}

type sourceFileRepo struct {
	conn   Conn
	logger *slog.Logger
}

func NewSourceFileRepository(conn Conn, logger *slog.Logger) SourceFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sourceFileRepo{conn: conn, logger: logger}
}

func scanSourceFile(r *entsql.Rows) (*entity.SourceFile, error) {
	var f entity.SourceFile
	err := r.Scan(&f.ID, &f.SourcePath, &f.Filename, &f.FileExt, &f.FileSize, &f.ContentHash, &f.UploadedAt)
	return &f, err
}

func (r *sourceFileRepo) get(ctx context.Context, p *entsql.Predicate) (*entity.SourceFile, error) {
	b := entsql.Dialect(r.conn.Dialect())
	q := b.Select(sourceFileColumns...).From(b.Table(sourceFilesTable)).Where(p)
	var out *entity.SourceFile
	err := queryOne(ctx, r.conn, q, func(rows *entsql.Rows) error {
		f, err := scanSourceFile(rows)
		out = f
		return err
	})
	return out, err
}

func (r *sourceFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.SourceFile, error) {
	f, err := r.get(ctx, entsql.EQ("id", id.String()))
	if err != nil && !isNotFound(err) {
		r.logger.Error("failed to get source file", "file_id", id, "error", err)
	}
	return f, err
}

func (r *sourceFileRepo) GetByHash(ctx context.Context, hash []byte) (*entity.SourceFile, error) {
	return r.get(ctx, entsql.EQ("content_hash", hash))
}

func (r *sourceFileRepo) Create(ctx context.Context, f *entity.SourceFile) (*entity.SourceFile, error) {
	row := *f
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.UploadedAt.IsZero() {
		row.UploadedAt = time.Now().UTC()
	}
	q := entsql.Dialect(r.conn.Dialect()).
		Insert(sourceFilesTable).
		Columns(sourceFileColumns...).
		Values(row.ID.String(), row.SourcePath, row.Filename, row.FileExt, row.FileSize, row.ContentHash, row.UploadedAt)
	if _, err := execStmt(ctx, r.conn, q); err != nil {
		r.logger.Error("failed to create source file", "source_path", row.SourcePath, "filename", row.Filename, "error", err)
		return nil, err
	}
	return &row, nil
}

func (r *sourceFileRepo) UpsertByHash(ctx context.Context, f *entity.SourceFile) (*entity.SourceFile, bool, error) {
	if existing, err := r.GetByHash(ctx, f.ContentHash); err == nil {
		return existing, true, nil
	} else if !isNotFound(err) {
		return nil, false, err
	}

	row := *f
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.UploadedAt.IsZero() {
		row.UploadedAt = time.Now().UTC()
	}
	// A concurrent ingest of the same bytes may win the insert; the unique
	// hash then turns ours into a no-op and the re-read returns the winner.
	q := entsql.Dialect(r.conn.Dialect()).
		Insert(sourceFilesTable).
		Columns(sourceFileColumns...).
		Values(row.ID.String(), row.SourcePath, row.Filename, row.FileExt, row.FileSize, row.ContentHash, row.UploadedAt).
		OnConflict(entsql.ConflictColumns("content_hash"), entsql.DoNothing())
	if _, err := execStmt(ctx, r.conn, q); err != nil {
		r.logger.Error("failed to upsert source file by hash", "source_path", row.SourcePath, "filename", row.Filename, "error", err)
		return nil, false, err
	}
	stored, err := r.GetByHash(ctx, row.ContentHash)
	if err != nil {
		return nil, false, err
	}
	return stored, stored.ID != row.ID, nil
}
