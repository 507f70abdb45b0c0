package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpattn/liftdesk/internal/domain"
	"github.com/rpattn/liftdesk/internal/ingestion"
)

type rowReport struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

type dryRunOutput struct {
	Kind     domain.ImportKind `json:"kind"`
	Valid    int               `json:"valid"`
	Invalid  int               `json:"invalid"`
	Warnings []string          `json:"warnings,omitempty"`
	NextCode string            `json:"next_code,omitempty"`
	Rows     []rowReport       `json:"rows,omitempty"`
}

func newImportCmd(c *cli) *cobra.Command {
	var (
		tenant string
		kind   string
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV or XLSX file for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseTenant(tenant)
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := ownerContext(cmd.Context(), tenantID)
			fileName := filepath.Base(file)
			out := cmd.OutOrStdout()

			if dryRun {
				validation, err := app.Service.ValidateRows(ctx, tenantID, domain.ImportKind(kind), fileName, payload)
				if err != nil {
					return err
				}
				next, err := app.Service.NextCode(ctx, tenantID, validation.Kind)
				if err != nil {
					return err
				}
				report := dryRunOutput{
					Kind:     validation.Kind,
					Valid:    validation.ValidCount(),
					Invalid:  validation.InvalidCount(),
					Warnings: validation.Warnings,
					NextCode: next,
				}
				for _, row := range validation.Rows {
					if !row.IsValid() {
						report.Rows = append(report.Rows, rowReport{Row: row.Row.Number, Errors: row.Errors()})
					}
				}
				return writeJSON(out, report)
			}

			result, err := app.Service.Import(ctx, ingestion.Request{
				TenantID: tenantID,
				Kind:     domain.ImportKind(kind),
				FileName: fileName,
				Data:     bytes.NewReader(payload),
			})
			if err != nil {
				_ = writeJSON(out, map[string]string{"error": err.Error()})
				return err
			}
			return writeJSON(out, result)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "Import kind: jobs, emergency-calls, inspections, maintenance or units (required)")
	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file to import (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only and report row errors")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
