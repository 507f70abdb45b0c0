package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rpattn/liftdesk/internal/auth"
	"github.com/rpattn/liftdesk/internal/config"
	"github.com/rpattn/liftdesk/internal/logging"
	"github.com/rpattn/liftdesk/internal/server"
)

type cli struct {
	configPath string
	sqlitePath string

	cfg    config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:           "liftdesk",
		Short:         "Elevator service records and bulk imports",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if c.sqlitePath != "" {
				cfg.SQLitePath = c.sqlitePath
			}
			c.cfg = cfg
			c.logger = logging.New(cfg.Log)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&c.configPath, "config", ".", "Directory holding config.yaml and .env files")
	cmd.PersistentFlags().StringVar(&c.sqlitePath, "sqlite", "", "Use the SQLite database at this path instead of PostgreSQL")

	cmd.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newImportCmd(c),
		newTemplateCmd(c),
		newTenantCmd(c),
		newLookupCmd(c),
		newRunsCmd(c),
	)
	return cmd
}

// openApp connects the configured backend and wires the import service.
func (c *cli) openApp(ctx context.Context) (*server.App, error) {
	stores, err := server.OpenStores(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	app, err := server.NewApp(ctx, c.cfg, stores, c.logger)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	return app, nil
}

// ownerContext acts as the tenant owner, which is what an operator at the
// console is.
func ownerContext(ctx context.Context, tenantID uuid.UUID) context.Context {
	return auth.ContextWithActor(ctx, auth.Actor{ID: "cli", TenantID: tenantID, Role: auth.RoleOwner})
}

func parseTenant(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --tenant: %w", err)
	}
	return id, nil
}
