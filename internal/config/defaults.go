package config

import (
	"net"
	"strconv"
	"time"
)

const (
	DefaultLimit               = 10
	DefaultMaxLimit            = 100
	DefaultMaxSmartFields      = 15
	DefaultMaxRelatedItems     = 5
	DefaultLogLevel            = "INFO"
	DefaultHost                = "localhost"
	DefaultPort                = 8000
	DefaultTimeout             = 30 * time.Second
	DefaultPermissionCacheTTL  = 5 * time.Minute
	DefaultFieldsCacheTTL      = 5 * time.Minute
	DefaultHealthCheckInterval = 60 * time.Second
)

// GetDefaultConfig returns the configuration used before any file or
// environment overrides are applied.
func GetDefaultConfig() Config {
	return Config{
		DefaultLimit:        DefaultLimit,
		MaxLimit:            DefaultMaxLimit,
		MaxSmartFields:      DefaultMaxSmartFields,
		MaxRelatedItems:     DefaultMaxRelatedItems,
		LogLevel:            DefaultLogLevel,
		Transport:           TransportStdio,
		Host:                DefaultHost,
		Port:                DefaultPort,
		Timeout:             DefaultTimeout,
		PermissionCacheTTL:  DefaultPermissionCacheTTL,
		FieldsCacheTTL:      DefaultFieldsCacheTTL,
		HealthCheckInterval: DefaultHealthCheckInterval,
	}
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
