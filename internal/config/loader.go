package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

// Load builds the configuration from defaults, the optional YAML file at
// configPath and the process environment, in increasing precedence, then
// validates it. When only the credentials are missing, the configuration
// is returned together with an *api.AuthenticationError.
func Load(configPath string) (*Config, error) {
	return load(configPath, env.Options{})
}

// LoadFromMap is Load with an explicit environment instead of the process
// environment.
func LoadFromMap(configPath string, environment map[string]string) (*Config, error) {
	return load(configPath, env.Options{Environment: environment})
}

func load(configPath string, opts env.Options) (*Config, error) {
	cfg := GetDefaultConfig()

	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return nil, err
		}
	}

	// Only variables that are present override the file and defaults.
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, &ConfigurationError{
			Source:    "environment",
			ErrorType: "parse",
			Message:   err.Error(),
		}
	}

	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		if api.IsAuthenticationError(err) {
			// The rest of the configuration is usable; requests report the
			// missing credentials.
			return &cfg, err
		}
		return nil, err
	}

	logging.Debug("ConfigLoader", "Loaded configuration for %s (auth=%s, transport=%s)", cfg.URL, cfg.AuthMethod(), cfg.Transport)
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ConfigurationError{
				FilePath:  path,
				Source:    "file",
				ErrorType: "io",
				Message:   "config file does not exist",
				Suggestions: []string{
					"Check the --config flag",
					"Omit --config to configure through environment variables only",
				},
			}
		}
		return &ConfigurationError{FilePath: path, Source: "file", ErrorType: "io", Message: err.Error()}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ConfigurationError{
			FilePath:  path,
			Source:    "file",
			ErrorType: "parse",
			Message:   fmt.Sprintf("invalid YAML: %v", err),
		}
	}

	logging.Info("ConfigLoader", "Loaded configuration file %s", path)
	return nil
}

// normalize trims identifiers. The password is used verbatim since leading and
// trailing whitespace may be part of it.
func normalize(cfg *Config) {
	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	cfg.Database = strings.TrimSpace(cfg.Database)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	cfg.Transport = TransportType(strings.TrimSpace(string(cfg.Transport)))
	cfg.Host = strings.TrimSpace(cfg.Host)
}
