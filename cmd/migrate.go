package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nekoden/nekoden/nekoden/logger"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "create the postgres tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Storage.Driver != "postgres" {
			return fmt.Errorf("migrate needs the postgres storage driver, configured %q", cfg.Storage.Driver)
		}

		ctx := cmd.Context()

		db, err := openDatabase(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		if err = db.InitializeSchema(ctx); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}

		logger.LogSystem("Migration completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCMD)
}
