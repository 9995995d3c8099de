package cmd

import (
	"fmt"

	accountPostgres "github.com/frahmantamala/personnel-records/internal/account/postgres"
	"github.com/frahmantamala/personnel-records/internal/provisioning"
	provisioningPostgres "github.com/frahmantamala/personnel-records/internal/provisioning/postgres"
	"github.com/frahmantamala/personnel-records/pkg/logger"
	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Account provisioning commands",
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Create accounts for personnel that have an institutional email but no account",
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

		provisioner := provisioning.NewProvisioner(accountPostgres.NewAccountRepository(gormDB), provisioning.Config{
			LegacyCredentials: cfg.Provisioning.LegacyCredentials,
			BcryptCost:        cfg.Security.BCryptCost,
		}, log)
		pool := provisioning.NewPool(provisioner, provisioning.PoolConfig{
			Workers:   cfg.Provisioning.Workers,
			QueueSize: cfg.Provisioning.QueueSize,
		}, log)
		defer pool.Shutdown()

		source := provisioningPostgres.NewCandidateRepository(gormDB)
		report, err := provisioning.Backfill(cmd.Context(), source, pool, log, func(c provisioning.Candidate, r provisioning.Result) {
			fmt.Printf("personnel %d: account %s, one-time password %s\n", c.PersonnelID, r.Username, r.Credential)
		})
		if err != nil {
			return fmt.Errorf("backfill: %w", err)
		}
		fmt.Printf("created=%d skipped=%d failed=%d\n", report.Created, report.Skipped, report.Failed)
		return nil
	},
}

func init() {
	provisionCmd.AddCommand(backfillCmd)
}
