package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/invoice-assets/internal/app"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/core/async"
	"github.com/joseph-ayodele/invoice-assets/internal/ingest"
	"github.com/joseph-ayodele/invoice-assets/internal/pipeline"
	"github.com/joseph-ayodele/invoice-assets/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time attribute, keep level, message and other variables
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "postgres", cfg.UsePostgres())
		os.Exit(1)
	}
	defer db.Close()

	svcs := app.NewServices(db, app.TextSource(cfg, logger), cfg, logger)

	queue := async.NewProcessorQueue(svcs.Processor, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.JobTimeout),
		async.WithResultHook(func(job async.Job, res pipeline.Result, err error) {
			if err != nil {
				return
			}
			logger.Info("bill registered", "file_id", job.FileID, "path", job.Path, "bill_id", res.BillID, "assets", res.Assets)
		}),
	)

	if cfg.Pipeline.InboxDir != "" {
		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{cfg.Pipeline.InboxDir},
			InitialScan: true,
			Debounce:    cfg.Pipeline.Debounce,
			SkipHidden:  true,
		}, logger)
		if err != nil {
			logger.Error("failed to start inbox watcher", "dir", cfg.Pipeline.InboxDir, "error", err)
			os.Exit(1)
		}
		go ingest.NewInbox(svcs.Ingestor, queue, logger).Run(ctx, paths)
		go func() {
			for err := range errs {
				logger.Warn("inbox watcher error", "error", err)
			}
		}()
		logger.Info("watching inbox", "dir", cfg.Pipeline.InboxDir)
	}

	var grpcLis net.Listener
	grpcServer, healthServer := server.NewGRPCServer(server.NewExtractionService(svcs.Processor, logger), logger)
	if cfg.Server.GRPCAddr != "" {
		grpcLis, err = net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		go func() {
			logger.Info("gRPC listening", "addr", cfg.Server.GRPCAddr)
			if err := grpcServer.Serve(grpcLis); err != nil {
				logger.Error("gRPC serve error", "error", err)
				stop()
			}
		}()
	}

	var httpServer *http.Server
	if cfg.Server.HTTPAddr != "" {
		api := server.NewAPI(server.HTTPConfig{
			RateEvery:      cfg.Server.RateEvery,
			RateBurst:      cfg.Server.RateBurst,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
		}, server.Deps{
			Scanner:   svcs.Processor,
			Registrar: svcs.Registrar,
			Bills:     svcs.Bills,
			Assets:    svcs.Assets,
			Exporter:  svcs.Exporter,
			Health:    db,
		}, logger)
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           api.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP listening", "addr", cfg.Server.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP serve error", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", "error", err)
		}
	}
	grpcServer.GracefulStop()
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
