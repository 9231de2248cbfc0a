// Package config loads and validates the connector configuration.
//
// Settings come from three layers, later layers winning:
//
//  1. compiled defaults (GetDefaultConfig)
//  2. an optional YAML file passed with --config
//  3. environment variables (ODOO_URL, ODOO_API_KEY, ODOO_MCP_DEFAULT_LIMIT, ...)
//
// The YAML keys are the snake_case field names of Config, for example:
//
//	url: https://erp.example.com
//	database: production
//	api_key: "..."
//	default_limit: 20
//	timeout: 45s
//	policy_file: /etc/mcp-odoo/policy.yaml
//
// Exactly one authentication method must resolve. When both an API key and a
// username/password pair are present the API key is used. Missing credentials
// are reported as *api.AuthenticationError rather than a validation failure.
package config
