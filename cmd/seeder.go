package cmd

import (
	"fmt"

	"github.com/frahmantamala/personnel-records/internal/seed"
	"github.com/frahmantamala/personnel-records/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed catalogs, system configuration and the bootstrap administrator",
	Long:  `Load the reference catalogs, the system configuration row and a bootstrap administrator. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := logger.LoggerWrapper()

		sqlDB, gormDB, err := openDatabase(cfg.Database, log)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		report, err := seed.NewSeeder(gormDB, cfg.Bootstrap, cfg.Security.BCryptCost, log).Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}

		fmt.Printf("catalog rows inserted: %d\n", report.Catalogs)
		if report.SystemConfig {
			fmt.Println("system configuration created")
		}
		if report.Administrator {
			fmt.Println("bootstrap administrator created:", cfg.Bootstrap.AdminUsername)
		}
		return nil
	},
}
