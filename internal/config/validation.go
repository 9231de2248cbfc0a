package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Add appends a validation error
func (ve *ValidationErrors) Add(field string, value interface{}, message string) {
	*ve = append(*ve, ValidationError{Field: field, Value: value, Message: message})
}

// Validate checks cfg. Missing credentials are reported as an
// *api.AuthenticationError so callers can tell them apart from malformed
// settings; everything else is returned as ValidationErrors.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if cfg.URL == "" {
		errs.Add("ODOO_URL", cfg.URL, "is required")
	} else if u, err := url.Parse(cfg.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs.Add("ODOO_URL", cfg.URL, "must start with http:// or https://")
	}

	if cfg.DefaultLimit <= 0 {
		errs.Add("ODOO_MCP_DEFAULT_LIMIT", cfg.DefaultLimit, "must be positive")
	}
	if cfg.MaxLimit <= 0 {
		errs.Add("ODOO_MCP_MAX_LIMIT", cfg.MaxLimit, "must be positive")
	}
	if cfg.DefaultLimit > 0 && cfg.MaxLimit > 0 && cfg.DefaultLimit > cfg.MaxLimit {
		errs.Add("ODOO_MCP_DEFAULT_LIMIT", cfg.DefaultLimit, "cannot exceed ODOO_MCP_MAX_LIMIT")
	}
	if cfg.MaxSmartFields <= 0 {
		errs.Add("ODOO_MCP_MAX_SMART_FIELDS", cfg.MaxSmartFields, "must be positive")
	}
	if cfg.MaxRelatedItems < 0 {
		errs.Add("ODOO_MCP_MAX_RELATED_ITEMS", cfg.MaxRelatedItems, "must not be negative")
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		errs.Add("ODOO_MCP_LOG_LEVEL", cfg.LogLevel, err.Error())
	}

	switch cfg.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		errs.Add("ODOO_MCP_TRANSPORT", cfg.Transport, "must be one of: stdio, streamable-http")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs.Add("ODOO_MCP_PORT", cfg.Port, "must be between 1 and 65535")
	}

	if cfg.Timeout <= 0 {
		errs.Add("ODOO_MCP_TIMEOUT", cfg.Timeout, "must be positive")
	}
	if cfg.PermissionCacheTTL <= 0 {
		errs.Add("ODOO_MCP_PERMISSION_CACHE_TTL", cfg.PermissionCacheTTL, "must be positive")
	}
	if cfg.FieldsCacheTTL <= 0 {
		errs.Add("ODOO_MCP_FIELDS_CACHE_TTL", cfg.FieldsCacheTTL, "must be positive")
	}
	if cfg.HealthCheckInterval <= 0 {
		errs.Add("ODOO_MCP_HEALTH_CHECK_INTERVAL", cfg.HealthCheckInterval, "must be positive")
	}

	if len(errs) > 0 {
		return errs
	}

	if cfg.AuthMethod() == AuthNone {
		return &api.AuthenticationError{
			Message: "provide either ODOO_API_KEY or both ODOO_USER and ODOO_PASSWORD",
		}
	}

	return nil
}
