package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-odoo/internal/app"
	"github.com/giantswarm/mcp-odoo/internal/config"
)

// newCheckCmd creates the command that verifies connectivity and shows
// which models the server would expose.
func newCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the Odoo connection and list enabled models",
		Long: `Authenticates against the configured Odoo instance, prints its version and
shows a table of every model enabled for MCP access with the operations
allowed on it.

Exit codes:
  0  connection and authentication succeeded
  1  the backend could not be reached or returned an error
  2  credentials are missing or were rejected
  3  the configuration is invalid`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			// Bounds the whole check; each backend call has its own timeout.
			ctx, cancel := context.WithTimeout(ctx, 4*cfg.Timeout+time.Second)
			defer cancel()

			return app.Check(ctx, cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	return cmd
}
