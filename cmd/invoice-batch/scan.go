package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-assets/internal/app"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/pipeline"
)

var scanWithText bool

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Print the bill info extracted from one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanWithText, "text", false, "include the extracted raw text")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	// Scanning stores nothing, so the processor runs without repositories.
	proc := pipeline.NewProcessor(logger, app.TextSource(cfg, logger), nil, nil, nil)
	res, err := proc.Scan(ctx, args[0])
	if err != nil {
		return fmt.Errorf("scan %s: %w", args[0], err)
	}

	var out any = res.Bill
	if scanWithText {
		out = struct {
			RawText string `json:"raw_text"`
			Method  string `json:"method"`
			Bill    any    `json:"bill"`
		}{res.Text.Text, res.Text.Method, res.Bill}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))

	if res.Bill.Degraded() {
		return common.ErrDegradedBill
	}
	return nil
}
