package config

import (
	"fmt"
	"strings"
)

// ConfigurationError represents a structured error that occurs during configuration loading
type ConfigurationError struct {
	FilePath    string   `json:"filePath,omitempty"` // Path of the YAML file, if any
	Source      string   `json:"source"`             // "file" or "environment"
	ErrorType   string   `json:"errorType"`          // io, parse
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	if ce.FilePath != "" {
		return fmt.Sprintf("[%s/%s] %s: %s", ce.Source, ce.ErrorType, ce.FilePath, ce.Message)
	}
	return fmt.Sprintf("[%s/%s] %s", ce.Source, ce.ErrorType, ce.Message)
}

// DetailedError returns a detailed error message with all context
func (ce *ConfigurationError) DetailedError() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Configuration error (%s, %s)", ce.Source, ce.ErrorType))
	if ce.FilePath != "" {
		parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	}
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}
