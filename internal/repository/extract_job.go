package repository

import (
	"context"
	stdsql "database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/entity"
)

const extractJobsTable = "extract_jobs"

var extractJobColumns = []string{
	"id", "file_id", "bill_id", "format", "status", "method", "source",
	"confidence", "error_message", "started_at", "finished_at", "duration_ms",
}

// TextOutcome records how a job's text was obtained.
type TextOutcome struct {
	Method     string
	Source     string
	Confidence float32
}

type ExtractJobRepository interface {
	Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error)
	SetStatus(ctx context.Context, jobID uuid.UUID, status constants.JobStatus) error
	RecordText(ctx context.Context, jobID uuid.UUID, out TextOutcome) error
	FinishSuccess(ctx context.Context, jobID uuid.UUID, billID uuid.UUID) error
	FinishRejected(ctx context.Context, jobID uuid.UUID, reason string) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]*entity.ExtractJob, error)
}

type extractJobRepo struct {
	conn Conn
	log  *slog.Logger
}

func NewExtractJobRepository(conn Conn, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{conn: conn, log: log}
}

func (r *extractJobRepo) Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Format:    format,
		Status:    string(constants.JobStatusRunning),
		StartedAt: time.Now().UTC(),
	}
	q := entsql.Dialect(r.conn.Dialect()).
		Insert(extractJobsTable).
		Columns("id", "file_id", "format", "status", "started_at").
		Values(job.ID.String(), fileID.String(), format, job.Status, job.StartedAt)
	if _, err := execStmt(ctx, r.conn, q); err != nil {
		r.log.Error("extract_job start failed", "file_id", fileID, "err", err)
		return nil, err
	}
	r.log.Info("extract_job started", "job_id", job.ID, "file_id", fileID, "format", format)
	return job, nil
}

func (r *extractJobRepo) update(ctx context.Context, jobID uuid.UUID, set func(*entsql.UpdateBuilder) *entsql.UpdateBuilder) error {
	u := entsql.Dialect(r.conn.Dialect()).Update(extractJobsTable)
	u = set(u).Where(entsql.EQ("id", jobID.String()))
	n, err := execStmt(ctx, r.conn, u)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *extractJobRepo) SetStatus(ctx context.Context, jobID uuid.UUID, status constants.JobStatus) error {
	err := r.update(ctx, jobID, func(u *entsql.UpdateBuilder) *entsql.UpdateBuilder {
		return u.Set("status", string(status))
	})
	if err != nil {
		r.log.Error("extract_job status update failed", "job_id", jobID, "status", status, "err", err)
	}
	return err
}

func (r *extractJobRepo) RecordText(ctx context.Context, jobID uuid.UUID, out TextOutcome) error {
	err := r.update(ctx, jobID, func(u *entsql.UpdateBuilder) *entsql.UpdateBuilder {
		return u.Set("status", string(constants.JobStatusTextOK)).
			Set("method", out.Method).
			Set("source", out.Source).
			Set("confidence", float64(out.Confidence))
	})
	if err != nil {
		r.log.Error("extract_job text update failed", "job_id", jobID, "err", err)
	}
	return err
}

// finish stamps finished_at and the duration since started_at.
func (r *extractJobRepo) finish(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, extra func(*entsql.UpdateBuilder) *entsql.UpdateBuilder) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return r.update(ctx, jobID, func(u *entsql.UpdateBuilder) *entsql.UpdateBuilder {
		u = u.Set("status", string(status)).
			Set("finished_at", now).
			Set("duration_ms", now.Sub(job.StartedAt).Milliseconds())
		if extra != nil {
			u = extra(u)
		}
		return u
	})
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, billID uuid.UUID) error {
	err := r.finish(ctx, jobID, constants.JobStatusSucceeded, func(u *entsql.UpdateBuilder) *entsql.UpdateBuilder {
		return u.Set("bill_id", billID.String())
	})
	if err != nil {
		r.log.Error("extract_job finish(SUCCEEDED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (SUCCEEDED)", "job_id", jobID, "bill_id", billID)
	return nil
}

func (r *extractJobRepo) FinishRejected(ctx context.Context, jobID uuid.UUID, reason string) error {
	err := r.finish(ctx, jobID, constants.JobStatusRejected, func(u *entsql.UpdateBuilder) *entsql.UpdateBuilder {
		return u.Set("error_message", reason)
	})
	if err != nil {
		r.log.Error("extract_job finish(REJECTED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (REJECTED)", "job_id", jobID, "reason", reason)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	err := r.finish(ctx, jobID, constants.JobStatusFailed, func(u *entsql.UpdateBuilder) *entsql.UpdateBuilder {
		return u.Set("error_message", message)
	})
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func scanExtractJob(rows *entsql.Rows) (*entity.ExtractJob, error) {
	var (
		j          entity.ExtractJob
		billID     uuid.NullUUID
		method     stdsql.NullString
		source     stdsql.NullString
		confidence stdsql.NullFloat64
		errMsg     stdsql.NullString
		finishedAt stdsql.NullTime
		durationMS stdsql.NullInt64
	)
	err := rows.Scan(&j.ID, &j.FileID, &billID, &j.Format, &j.Status, &method, &source,
		&confidence, &errMsg, &j.StartedAt, &finishedAt, &durationMS)
	if err != nil {
		return nil, err
	}
	j.BillID = nullUUID(billID)
	j.Method = nullString(method)
	j.Source = nullString(source)
	j.Confidence = nullFloat32(confidence)
	j.ErrorMessage = nullString(errMsg)
	j.FinishedAt = nullTime(finishedAt)
	j.DurationMS = nullInt64(durationMS)
	return &j, nil
}

func (r *extractJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	b := entsql.Dialect(r.conn.Dialect())
	q := b.Select(extractJobColumns...).From(b.Table(extractJobsTable)).Where(entsql.EQ("id", jobID.String()))
	var out *entity.ExtractJob
	err := queryOne(ctx, r.conn, q, func(rows *entsql.Rows) error {
		j, err := scanExtractJob(rows)
		out = j
		return err
	})
	return out, err
}

func (r *extractJobRepo) ListByFile(ctx context.Context, fileID uuid.UUID) ([]*entity.ExtractJob, error) {
	b := entsql.Dialect(r.conn.Dialect())
	q := b.Select(extractJobColumns...).
		From(b.Table(extractJobsTable)).
		Where(entsql.EQ("file_id", fileID.String())).
		OrderBy("started_at")
	out := make([]*entity.ExtractJob, 0)
	err := queryRows(ctx, r.conn, q, func(rows *entsql.Rows) error {
		j, err := scanExtractJob(rows)
		if err == nil {
			out = append(out, j)
		}
		return err
	})
	if err != nil {
		r.log.Error("failed to list extract jobs", "file_id", fileID, "err", err)
		return nil, err
	}
	return out, nil
}
