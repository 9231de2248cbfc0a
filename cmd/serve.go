package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-odoo/internal/app"
)

type serveOptions struct {
	configPath string
	transport  string
	debug      bool
}

// newServeCmd defines the serve command, the main command of mcp-odoo.
func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Starts the MCP server and serves tool calls and resource reads until
interrupted.

Transports:
  stdio            (default) JSON-RPC over standard input and output, for
                   assistants that launch mcp-odoo as a subprocess.
  streamable-http  HTTP endpoint on ODOO_MCP_HOST:ODOO_MCP_PORT.

Configuration:
  Settings come from compiled defaults, then the optional --config YAML file,
  then environment variables (ODOO_URL, ODOO_API_KEY, ODOO_USER,
  ODOO_PASSWORD, ODOO_DB and ODOO_MCP_*). Missing credentials do not stop the
  server; every request reports an authentication error until they are set.

Logs are written to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	cmd.Flags().StringVar(&opts.transport, "transport", "", "Transport to serve on: stdio or streamable-http (overrides ODOO_MCP_TRANSPORT)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg := app.NewConfig(opts.debug, opts.configPath, opts.transport, rootCmd.Version)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}
