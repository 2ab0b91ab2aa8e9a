package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-assets/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.OpenDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		db.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.Database.MigrationsDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
