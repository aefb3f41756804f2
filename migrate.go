package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/config"
	"github.com/ekaya-inc/proposal-relay/pkg/database"
	"github.com/ekaya-inc/proposal-relay/pkg/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the store schema (Postgres migrations or DynamoDB tables)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		switch cfg.Store.Backend {
		case config.StorePostgres:
			logger.Info("Running migrations",
				zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
				zap.String("path", cfg.Database.MigrationsPath))
			return database.MigrateURL(cfg.Database.ConnectionString(), cfg.Database.MigrationsPath, logger)

		case config.StoreDynamoDB:
			client, err := database.NewDynamoClient(cmd.Context(), &cfg.DynamoDB)
			if err != nil {
				return err
			}
			return database.EnsureDynamoTables(cmd.Context(), client, &cfg.DynamoDB, logger)

		default:
			logger.Info("Store backend needs no schema", zap.String("store", cfg.Store.Backend))
			return nil
		}
	},
}
