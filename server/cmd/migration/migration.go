package migration

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goto/pulse/config"
	"github.com/goto/pulse/internal/store/postgres"
)

type migrateCommand struct {
	configFilePath string
}

// NewMigrationCommand initializes command to migrate the database schema
func NewMigrationCommand() *cobra.Command {
	migrate := &migrateCommand{}

	cmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Apply pending database schema migrations",
		Example: "pulse migrate",
		RunE:    migrate.RunE,
	}
	cmd.Flags().StringVarP(&migrate.configFilePath, "config", "c", migrate.configFilePath, "File path for server configuration")
	return cmd
}

func (m *migrateCommand) RunE(_ *cobra.Command, _ []string) error {
	conf, err := config.LoadServerConfig(m.configFilePath)
	if err != nil {
		return err
	}
	if conf.Serve.DB.DSN == "" {
		return errors.New("serve.db.dsn is not configured")
	}

	if err := postgres.Migrate(conf.Serve.DB.DSN); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	return nil
}
