package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rasyon-backend/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "PostgreSQL tablolarını oluşturur/günceller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if cfg.StoreBackend != "postgres" {
				return fmt.Errorf("migrate sadece postgres için geçerli (STORE_BACKEND=%s)", cfg.StoreBackend)
			}

			db, err := database.Open(cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := database.Migrate(db, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration tamamlandı")
			return nil
		},
	}
}
