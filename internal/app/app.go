// Package app wires configuration into the database, text sources and
// processor shared by the daemon and the batch CLI.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-assets/internal/assets"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/docapi"
	"github.com/joseph-ayodele/invoice-assets/internal/export"
	"github.com/joseph-ayodele/invoice-assets/internal/extract"
	"github.com/joseph-ayodele/invoice-assets/internal/ingest"
	"github.com/joseph-ayodele/invoice-assets/internal/ocr"
	"github.com/joseph-ayodele/invoice-assets/internal/pipeline"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

// OpenDatabase opens Postgres when a DSN is configured and SQLite otherwise,
// then applies migrations.
func OpenDatabase(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	var (
		db  *repository.DB
		err error
	)
	if cfg.UsePostgres() {
		db, err = repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
	} else {
		db, err = repository.OpenSQLite(ctx, cfg.Database.SQLitePath, logger)
	}
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		db.Close()
		return nil, err
	}
	if err := repository.Migrate(db, cfg.Database.MigrationsDir, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// TextSource builds the extraction chain: the document API first when
// configured, local OCR always.
func TextSource(cfg *common.Config, logger *slog.Logger) extract.TextSource {
	if logger == nil {
		logger = slog.Default()
	}
	local := extract.NewOCRSource(ocr.NewExtractor(ocr.Config{
		Languages:           cfg.OCR.Languages,
		DPI:                 cfg.OCR.DPI,
		TessdataDir:         cfg.OCR.TessdataDir,
		EnableTSVConfidence: true,
	}, logger))

	if cfg.DocAPI.BaseURL == "" {
		return extract.NewChain(logger, local)
	}
	client := docapi.NewClient(docapi.Config{
		BaseURL:      cfg.DocAPI.BaseURL,
		APIKey:       cfg.DocAPI.APIKey,
		Timeout:      cfg.DocAPI.Timeout,
		PollInterval: cfg.DocAPI.PollInterval,
		MaxWait:      cfg.DocAPI.MaxWait,
		RateEvery:    cfg.DocAPI.RateEvery,
		RateBurst:    cfg.DocAPI.RateBurst,
	}, logger)
	logger.Info("docapi source enabled", "base_url", cfg.DocAPI.BaseURL)
	return extract.NewChain(logger, extract.NewDocAPISource(client), local)
}

// Services is everything built on top of an open database.
type Services struct {
	Files     repository.SourceFileRepository
	Jobs      repository.ExtractJobRepository
	Bills     repository.BillRepository
	Assets    repository.AssetRepository
	Registrar *assets.Registrar
	Processor *pipeline.Processor
	Ingestor  *ingest.FSIngestor
	Exporter  *export.Service
}

func NewServices(db *repository.DB, source extract.TextSource, cfg *common.Config, logger *slog.Logger) *Services {
	s := &Services{
		Files:     repository.NewSourceFileRepository(db, logger),
		Jobs:      repository.NewExtractJobRepository(db, logger),
		Bills:     repository.NewBillRepository(db, logger),
		Assets:    repository.NewAssetRepository(db, logger),
		Registrar: assets.NewRegistrar(db, logger),
	}
	var opts []pipeline.Option
	if cfg.Pipeline.CacheTTL > 0 {
		opts = append(opts, pipeline.WithCache(pipeline.NewResultCache(cfg.Pipeline.CacheTTL)))
	}
	s.Processor = pipeline.NewProcessor(logger, source, s.Files, s.Jobs, s.Registrar, opts...)
	s.Ingestor = ingest.NewFSIngestor(s.Files, logger)
	s.Exporter = export.NewService(s.Assets, s.Bills, logger)
	return s
}
