package cmd

import (
	"fmt"

	"github.com/frahmantamala/personnel-records/internal/account/postgres"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/pkg/logger"
	"github.com/spf13/cobra"
)

var migrateRolesCmd = &cobra.Command{
	Use:   "migrate-roles",
	Short: "Rename legacy account roles",
	Long:  `Rewrite accounts still holding a retired role name to the current role.`,
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

		moved, err := postgres.NewAccountRepository(gormDB).MigrateLegacyRoles(cmd.Context())
		if err != nil {
			return fmt.Errorf("migrate roles: %w", err)
		}
		for legacy, count := range moved {
			fmt.Printf("%s -> %s: %d account(s)\n", legacy, auth.LegacyRoleNames[legacy], count)
		}
		return nil
	},
}
