// Package migrate implements the CLI command that applies the database
// schema.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"pharos/internal/infrastructure/config"
	"pharos/internal/infrastructure/database"
	"pharos/internal/infrastructure/migration"
	"pharos/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  `Apply pending schema changes with gorm AutoMigrate. Columns and indexes are only ever added, never dropped.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	gormDB, err := database.Connect(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(gormDB); err != nil {
			log.Errorw("failed to close database", "error", err)
		}
	}()

	log.Infow("running migrations", "environment", env)

	if err := migration.Run(gormDB); err != nil {
		log.Errorw("migration failed", "error", err)
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}
