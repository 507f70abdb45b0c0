package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpattn/liftdesk/internal/domain"
)

func newTenantCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "Manage tenants",
	}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			tenant, err := app.Stores.Tenants.Create(cmd.Context(), domain.NewTenant(strings.TrimSpace(name)))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tenant)
		},
	}
	create.Flags().StringVar(&name, "name", "", "Tenant name (required)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			tenants, err := app.Stores.Tenants.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tenants)
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func newLookupCmd(c *cli) *cobra.Command {
	var (
		tenant string
		kind   string
		name   string
		parent string
	)

	cmd := &cobra.Command{
		Use:   "lookups",
		Short: "Manage the names that imports resolve",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a company, building, unit, person or status",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseTenant(tenant)
			if err != nil {
				return err
			}
			lookupKind := domain.LookupKind(kind)
			if !lookupKind.Valid() {
				return fmt.Errorf("unknown lookup kind %q", kind)
			}
			var parentID *uuid.UUID
			if parent != "" {
				id, err := uuid.Parse(parent)
				if err != nil {
					return fmt.Errorf("invalid --parent: %w", err)
				}
				parentID = &id
			}

			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			lookup, err := app.Stores.Lookups.Create(cmd.Context(), domain.NewLookup(tenantID, lookupKind, strings.TrimSpace(name), parentID))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), lookup)
		},
	}
	add.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	add.Flags().StringVar(&kind, "kind", "", "Lookup kind, e.g. management_company or building (required)")
	add.Flags().StringVar(&name, "name", "", "Display name (required)")
	add.Flags().StringVar(&parent, "parent", "", "Parent id: the company of a building or the building of a unit")
	_ = add.MarkFlagRequired("tenant")
	_ = add.MarkFlagRequired("kind")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}

func newRunsCmd(c *cli) *cobra.Command {
	var (
		tenant string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent import runs of a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseTenant(tenant)
			if err != nil {
				return err
			}
			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			runs, err := app.Service.ListImportRuns(ownerContext(cmd.Context(), tenantID), tenantID, limit, 0)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
