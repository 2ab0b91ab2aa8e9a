// Package pipeline runs stored files through text acquisition, invoice
// parsing and asset registration, recording each step on an extract job.
package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/assets"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/extract"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

// Registrar stores an accepted bill.
type Registrar interface {
	Register(ctx context.Context, bill invoice.BillInfo, raw string, opts ...assets.RegisterOption) assets.Outcome
}

// ScanResult is a parsed document that has not been stored.
type ScanResult struct {
	Text   extract.Result
	Bill   invoice.BillInfo
	Hash   string
	Cached bool
}

// Result summarizes ProcessFile.
type Result struct {
	JobID  uuid.UUID
	BillID uuid.UUID
	Bill   invoice.BillInfo
	Assets int
	Cached bool
}

// Processor coordinates text acquisition, parsing and registration.
type Processor struct {
	logger    *slog.Logger
	source    extract.TextSource
	filesRepo repository.SourceFileRepository
	jobsRepo  repository.ExtractJobRepository
	registrar Registrar
	cache     *ResultCache
}

type Option func(*Processor)

// WithCache enables the content-hash result cache.
func WithCache(c *ResultCache) Option {
	return func(p *Processor) { p.cache = c }
}

func NewProcessor(
	logger *slog.Logger,
	source extract.TextSource,
	filesRepo repository.SourceFileRepository,
	jobsRepo repository.ExtractJobRepository,
	registrar Registrar,
	opts ...Option,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:    logger,
		source:    source,
		filesRepo: filesRepo,
		jobsRepo:  jobsRepo,
		registrar: registrar,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Scan parses the document at path without storing anything.
func (p *Processor) Scan(ctx context.Context, path string) (ScanResult, error) {
	hash, err := HashFile(path)
	if err != nil {
		return ScanResult{}, err
	}
	s, cached, err := p.scan(ctx, path, hash)
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{Text: s.Text, Bill: s.Bill, Hash: hash, Cached: cached}, nil
}

func (p *Processor) scan(ctx context.Context, path, hash string) (scanned, bool, error) {
	if s, ok := p.cache.get(hash); ok {
		p.logger.Debug("pipeline.cache.hit", "path", path, "hash", hash)
		return s, true, nil
	}

	p.logger.Debug("pipeline.text.start", "path", path)
	text, err := p.source.ExtractText(ctx, path)
	if err != nil {
		return scanned{}, false, err
	}
	p.logger.Debug("pipeline.text.ok", "path", path, "method", text.Method, "source", text.Source, "chars", len(text.Text))

	s := scanned{Text: text, Bill: invoice.ExtractWithTables(text.Text, text.Tables)}
	p.cache.put(hash, s)
	return s, false, nil
}

// ProcessFile takes a stored source file through every stage. The job row
// ends SUCCEEDED, REJECTED (degraded bill) or FAILED.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) (Result, error) {
	start := time.Now()
	row, err := p.filesRepo.GetByID(ctx, fileID)
	if err != nil {
		return Result{}, fmt.Errorf("get file: %w", err)
	}

	job, err := p.jobsRepo.Start(ctx, row.ID, constants.MapExtToFormat(row.FileExt))
	if err != nil {
		return Result{}, err
	}
	res := Result{JobID: job.ID}
	log := p.logger.With("job_id", job.ID, "file_id", fileID)

	s, cached, err := p.scan(ctx, row.SourcePath, hex.EncodeToString(row.ContentHash))
	if err != nil {
		log.Error("pipeline.text.failed", "path", row.SourcePath, "err", err)
		p.fail(ctx, job.ID, err)
		return res, err
	}
	res.Cached = cached
	res.Bill = s.Bill

	if err := p.jobsRepo.RecordText(ctx, job.ID, repository.TextOutcome{
		Method:     s.Text.Method,
		Source:     s.Text.Source,
		Confidence: s.Text.Confidence,
	}); err != nil {
		return res, err
	}
	if constants.MapExtToFormat(row.FileExt) == constants.FormatImage &&
		s.Text.Confidence > 0 && s.Text.Confidence < constants.ImageConfidenceThreshold {
		log.Warn("pipeline.text.low_confidence", "confidence", s.Text.Confidence)
	}
	if err := p.jobsRepo.SetStatus(ctx, job.ID, constants.JobStatusParsed); err != nil {
		return res, err
	}

	if s.Bill.Degraded() {
		log.Warn("pipeline.parse.rejected", "reason", common.ErrDegradedBill.Error())
		if err := p.jobsRepo.FinishRejected(ctx, job.ID, common.ErrDegradedBill.Error()); err != nil {
			return res, err
		}
		return res, common.ErrDegradedBill
	}

	switch out := p.registrar.Register(ctx, s.Bill, s.Text.Text, assets.WithFileID(row.ID)).(type) {
	case assets.Persisted:
		res.BillID = out.BillID
		res.Assets = len(out.Assets)
	case assets.Unpersisted:
		err := fmt.Errorf("register assets: %w", out.Err)
		log.Error("pipeline.register.failed", "err", err, "preview_units", len(out.Preview))
		p.fail(ctx, job.ID, err)
		return res, err
	}

	if err := p.jobsRepo.FinishSuccess(ctx, job.ID, res.BillID); err != nil {
		return res, err
	}
	log.Info("pipeline.done",
		"bill_id", res.BillID,
		"bill_number", s.Bill.BillNumber,
		"assets", res.Assets,
		"cached", cached,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// fail records err on the job. The job update uses a fresh context so a
// cancelled request still leaves a FAILED row behind.
func (p *Processor) fail(ctx context.Context, jobID uuid.UUID, err error) {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
	}
	if ferr := p.jobsRepo.FinishFailure(ctx, jobID, err.Error()); ferr != nil {
		p.logger.Error("pipeline.job.finish_failed", "job_id", jobID, "err", ferr)
	}
}
