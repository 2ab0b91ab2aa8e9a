package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
)

var (
	verbose bool
	sqlite  string

	logger *slog.Logger
	cfg    *common.Config
)

var rootCmd = &cobra.Command{
	Use:   "invoice-batch",
	Short: "Scan invoices and register their assets from the command line",
	Long: `invoice-batch extracts bill information from invoice documents, registers
one asset per purchased unit and exports the asset register as a workbook.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		cfg = common.LoadConfig()
		if sqlite != "" {
			cfg.Database.DSN = ""
			cfg.Database.SQLitePath = sqlite
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&sqlite, "sqlite", "", "use this SQLite file instead of DB_URL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, werr := fmt.Fprintf(os.Stderr, "Error: %v\n", err); werr != nil {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}
