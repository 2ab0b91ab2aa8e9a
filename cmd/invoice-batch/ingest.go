package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-assets/internal/app"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
)

var (
	ingestOut        string
	ingestNoExport   bool
	ingestSkipHidden bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Ingest and process every invoice under a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestOut, "out", "o", "", "output XLSX path (defaults to asset-register.xlsx beside the directory)")
	ingestCmd.Flags().BoolVar(&ingestNoExport, "no-export", false, "skip the workbook export")
	ingestCmd.Flags().BoolVar(&ingestSkipHidden, "skip-hidden", true, "skip dot files and directories")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	db, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	svcs := app.NewServices(db, app.TextSource(cfg, logger), cfg, logger)

	logger.Info("starting ingestion", "dir", dir)
	results, stats, err := svcs.Ingestor.IngestDirectory(ctx, dir, ingestSkipHidden)
	if err != nil {
		return fmt.Errorf("ingest directory: %w", err)
	}

	var ingested []uuid.UUID
	for _, r := range results {
		if r.Err != "" || r.Duplicate {
			continue
		}
		fileID, err := uuid.Parse(r.FileID)
		if err != nil {
			logger.Error("failed to parse file ID", "file_id", r.FileID, "error", err)
			continue
		}
		ingested = append(ingested, fileID)
	}
	logger.Info("ingestion complete",
		"files_ingested", len(ingested),
		"visited", stats.Visited,
		"invoices", stats.Invoices,
		"registered", stats.Registered,
		"failed", stats.Failed,
		"duplicates", stats.Duplicates)

	processed, rejected, failures, units := 0, 0, 0, 0
	for _, fileID := range ingested {
		res, err := svcs.Processor.ProcessFile(ctx, fileID)
		switch {
		case err == nil:
			processed++
			units += res.Assets
		case errors.Is(err, common.ErrDegradedBill):
			rejected++
		default:
			logger.Error("failed to process file", "file_id", fileID, "error", err)
			failures++
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Batch processing complete!\n")
	fmt.Fprintf(w, "- Files ingested: %d\n", len(ingested))
	fmt.Fprintf(w, "- Bills registered: %d (%d assets)\n", processed, units)
	fmt.Fprintf(w, "- Rejected: %d\n", rejected)
	fmt.Fprintf(w, "- Failures: %d\n", failures)

	if ingestNoExport {
		return nil
	}
	if ingestOut == "" {
		ingestOut = filepath.Join(filepath.Dir(filepath.Clean(dir)), "asset-register.xlsx")
	}
	b, err := svcs.Exporter.ExportAssetsXLSX(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(ingestOut, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", ingestOut, err)
	}
	fmt.Fprintf(w, "- Output: %s\n", ingestOut)
	return nil
}
