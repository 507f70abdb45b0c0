package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpattn/liftdesk/internal/domain"
)

func newTemplateCmd(c *cli) *cobra.Command {
	var (
		tenant string
		kind   string
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an import template prefilled with the tenant's names",
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

			file, err := app.Service.Template(ownerContext(cmd.Context(), tenantID), tenantID, domain.ImportKind(kind), format)
			if err != nil {
				return err
			}
			if outDir == "" {
				_, err = cmd.OutOrStdout().Write(file.Body)
				return err
			}
			path := filepath.Join(outDir, file.FileName)
			if err := os.WriteFile(path, file.Body, 0o644); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}
			c.logger.WithField("path", path).Info("template written")
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "Import kind (required)")
	cmd.Flags().StringVar(&format, "format", "csv", "Template format: csv or xlsx")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write the template to (default stdout)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
