package main

import (
	"github.com/spf13/cobra"

	"github.com/rpattn/liftdesk/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP import API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()
			return server.Serve(cmd.Context(), app, c.cfg.HTTP)
		},
	}
}
