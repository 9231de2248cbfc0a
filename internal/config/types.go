package config

import "time"

// TransportType selects how the MCP server talks to its client.
type TransportType string

const (
	// TransportStdio serves MCP over stdin/stdout.
	TransportStdio TransportType = "stdio"
	// TransportStreamableHTTP serves MCP over the streamable HTTP transport.
	TransportStreamableHTTP TransportType = "streamable-http"
)

// AuthMethod is the credential flavour resolved from the configuration.
type AuthMethod string

const (
	AuthNone     AuthMethod = ""
	AuthAPIKey   AuthMethod = "api_key"
	AuthPassword AuthMethod = "password"
)

// Config is the top-level configuration of the connector.
//
// Values are merged from three layers: compiled defaults, an optional YAML
// file, then environment variables. A Config returned by Load is validated
// and must not be modified afterwards.
type Config struct {
	// Backend
	URL      string `yaml:"url" env:"ODOO_URL"`
	Database string `yaml:"database,omitempty" env:"ODOO_DB"`
	APIKey   string `yaml:"api_key,omitempty" env:"ODOO_API_KEY"`
	Username string `yaml:"username,omitempty" env:"ODOO_USER"`
	Password string `yaml:"password,omitempty" env:"ODOO_PASSWORD"`

	// Result shaping
	DefaultLimit    int `yaml:"default_limit" env:"ODOO_MCP_DEFAULT_LIMIT"`
	MaxLimit        int `yaml:"max_limit" env:"ODOO_MCP_MAX_LIMIT"`
	MaxSmartFields  int `yaml:"max_smart_fields" env:"ODOO_MCP_MAX_SMART_FIELDS"`
	MaxRelatedItems int `yaml:"max_related_items" env:"ODOO_MCP_MAX_RELATED_ITEMS"`

	// Server
	LogLevel  string        `yaml:"log_level" env:"ODOO_MCP_LOG_LEVEL"`
	Transport TransportType `yaml:"transport" env:"ODOO_MCP_TRANSPORT"`
	Host      string        `yaml:"host" env:"ODOO_MCP_HOST"`
	Port      int           `yaml:"port" env:"ODOO_MCP_PORT"`

	// Timing
	Timeout             time.Duration `yaml:"timeout" env:"ODOO_MCP_TIMEOUT"`
	PermissionCacheTTL  time.Duration `yaml:"permission_cache_ttl" env:"ODOO_MCP_PERMISSION_CACHE_TTL"`
	FieldsCacheTTL      time.Duration `yaml:"fields_cache_ttl" env:"ODOO_MCP_FIELDS_CACHE_TTL"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval" env:"ODOO_MCP_HEALTH_CHECK_INTERVAL"`

	// PolicyFile optionally narrows backend permissions. It is the only
	// permission source when authenticating with a password.
	PolicyFile string `yaml:"policy_file,omitempty" env:"ODOO_MCP_POLICY_FILE"`
}

// UsesAPIKey reports whether API key authentication is configured.
func (c *Config) UsesAPIKey() bool {
	return c.APIKey != ""
}

// UsesCredentials reports whether both username and password are configured.
func (c *Config) UsesCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// AuthMethod returns the authentication method that will be used. The API key
// wins when both methods are configured.
func (c *Config) AuthMethod() AuthMethod {
	switch {
	case c.UsesAPIKey():
		return AuthAPIKey
	case c.UsesCredentials():
		return AuthPassword
	default:
		return AuthNone
	}
}

// Secrets returns the credential values that must never appear in messages.
func (c *Config) Secrets() []string {
	var secrets []string
	for _, s := range []string{c.APIKey, c.Password} {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// Address returns host:port for the HTTP transport.
func (c *Config) Address() string {
	return joinHostPort(c.Host, c.Port)
}
