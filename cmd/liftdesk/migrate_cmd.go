package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpattn/liftdesk/internal/db"
)

var errSQLiteMigrations = errors.New("the SQLite schema is created on open, migrations apply to PostgreSQL only")

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if c.cfg.SQLitePath != "" {
				return errSQLiteMigrations
			}
			return nil
		},
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.RunMigrations(c.cfg.Database); err != nil {
				return err
			}
			c.logger.Info("migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.RollbackMigrations(c.cfg.Database, steps); err != nil {
				return err
			}
			c.logger.WithField("steps", steps).Info("migrations rolled back")
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, err := db.MigrationVersion(c.cfg.Database)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
			return err
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}
