package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/config"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

// Application wires the configuration, the backend connection, the access
// controller and the MCP server together.
//
// Initialization happens in two phases:
//  1. Bootstrap: load configuration, initialize logging, build services
//  2. Execution: serve MCP requests until the context ends
//
// Example usage:
//
//	cfg := app.NewConfig(false, "", "", version)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration and builds every service. Missing
// credentials are not fatal: the server still starts and each request
// reports an authentication error until the configuration is fixed.
func NewApplication(cfg *Config) (*Application, error) {
	logOutput := cfg.LogOutput
	if logOutput == nil {
		logOutput = io.Writer(os.Stderr)
	}
	logging.Init(startupLevel(cfg), logOutput)

	odooCfg, err := loadConfiguration(cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.Debug {
		level, err := logging.ParseLevel(odooCfg.LogLevel)
		if err != nil {
			logging.Warn("Bootstrap", "Ignoring log level %q: %v", odooCfg.LogLevel, err)
		} else {
			logging.Init(level, logOutput)
		}
	}

	if cfg.Transport != "" {
		odooCfg.Transport = config.TransportType(cfg.Transport)
		if err := config.Validate(odooCfg); err != nil && !api.IsAuthenticationError(err) {
			return nil, err
		}
	}

	logging.Info("Bootstrap", "Using Odoo instance %s (auth: %s, transport: %s)",
		odooCfg.URL, odooCfg.AuthMethod(), odooCfg.Transport)

	services, err := InitializeServices(cfg, odooCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the services built during bootstrap.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves MCP requests until ctx is cancelled, a termination signal
// arrives or the transport ends.
func (a *Application) Run(ctx context.Context) error {
	return runServer(ctx, a.services)
}

func startupLevel(cfg *Config) logging.LogLevel {
	if cfg.Debug {
		return logging.LevelDebug
	}
	return logging.LevelInfo
}

// loadConfiguration returns the preset configuration or loads it from the
// optional file and the environment.
func loadConfiguration(cfg *Config) (*config.Config, error) {
	if cfg.Odoo != nil {
		return cfg.Odoo, nil
	}

	odooCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		if api.IsAuthenticationError(err) && odooCfg != nil {
			logging.Warn("Bootstrap", "%v; every request will fail until credentials are configured", err)
			return odooCfg, nil
		}
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return nil, err
	}
	return odooCfg, nil
}
