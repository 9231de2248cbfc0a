package app

import (
	"io"

	"github.com/giantswarm/mcp-odoo/internal/config"
)

// Config holds the command-line level settings used to bootstrap the
// application. Backend and server settings live in the Odoo configuration.
type Config struct {
	// Debug forces debug logging regardless of the configured log level.
	Debug bool
	// ConfigPath is an optional YAML file layered between defaults and the
	// environment.
	ConfigPath string
	// Transport overrides the configured transport when non-empty.
	Transport string
	// Version is reported to MCP clients during initialization.
	Version string

	// Odoo, when set, is used as is instead of loading configuration.
	Odoo *config.Config

	// LogOutput receives log lines. Defaults to stderr so stdout stays
	// reserved for the stdio transport.
	LogOutput io.Writer
	// Stdin and Stdout replace the process streams for the stdio transport.
	Stdin  io.Reader
	Stdout io.Writer
}

// NewConfig creates a new application configuration.
func NewConfig(debug bool, configPath, transport, version string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
		Transport:  transport,
		Version:    version,
	}
}
