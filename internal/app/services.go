package app

import (
	"github.com/giantswarm/mcp-odoo/internal/access"
	"github.com/giantswarm/mcp-odoo/internal/config"
	"github.com/giantswarm/mcp-odoo/internal/odoo"
	"github.com/giantswarm/mcp-odoo/internal/server"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

// ServerName is announced to MCP clients.
const ServerName = "mcp-odoo"

// Services holds every long-lived component of a running application.
type Services struct {
	Config     *config.Config
	Connection *odoo.Connection
	Controller *access.Controller
	Provider   *server.Provider
	Server     *server.Server

	// PolicyWatcher is nil when no policy file is configured.
	PolicyWatcher *access.PolicyWatcher
}

// InitializeServices builds the connection, the access controller, the
// tool provider and the MCP server. Nothing contacts the backend yet.
func InitializeServices(cfg *Config, odooCfg *config.Config) (*Services, error) {
	conn := odoo.NewConnection(odooCfg)

	controller, err := newController(odooCfg, conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	provider := server.NewProvider(conn, controller, server.OptionsFromConfig(odooCfg))

	var opts []server.Option
	if cfg.Stdin != nil && cfg.Stdout != nil {
		opts = append(opts, server.WithStdio(cfg.Stdin, cfg.Stdout))
	}
	mcpServer := server.New(provider, server.Config{
		Name:      ServerName,
		Version:   cfg.Version,
		Transport: odooCfg.Transport,
		Host:      odooCfg.Host,
		Port:      odooCfg.Port,
	}, opts...)

	services := &Services{
		Config:     odooCfg,
		Connection: conn,
		Controller: controller,
		Provider:   provider,
		Server:     mcpServer,
	}

	if odooCfg.PolicyFile != "" {
		services.PolicyWatcher = access.NewPolicyWatcher(odooCfg.PolicyFile, controller.SetPolicy)
	}

	return services, nil
}

// newController builds the access controller, applying the local policy
// file when one is configured.
func newController(odooCfg *config.Config, conn *odoo.Connection) (*access.Controller, error) {
	var opts []access.Option
	if odooCfg.PolicyFile != "" {
		policy, err := access.LoadPolicy(odooCfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		logging.Info("Services", "Loaded access policy from %s", odooCfg.PolicyFile)
		opts = append(opts, access.WithPolicy(policy))
	}
	return access.NewController(conn, odooCfg.PermissionCacheTTL, opts...), nil
}
