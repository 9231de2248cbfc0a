package api

import (
	"context"
)

// Operation is one of the four permission-checked actions on a model.
type Operation string

const (
	OperationRead   Operation = "read"
	OperationWrite  Operation = "write"
	OperationCreate Operation = "create"
	OperationUnlink Operation = "unlink"
)

// Operations lists every Operation in a stable order.
var Operations = []Operation{OperationRead, OperationWrite, OperationCreate, OperationUnlink}

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OperationRead, OperationWrite, OperationCreate, OperationUnlink:
		return true
	}
	return false
}

// CallToolResult represents the result of a tool call
type CallToolResult struct {
	Content []interface{} `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolMetadata describes a tool that can be exposed
type ToolMetadata struct {
	Name        string // e.g., "search_records", "get_record"
	Description string
	Parameters  []ParameterMetadata
}

// ParameterMetadata describes a tool parameter
type ParameterMetadata struct {
	Name        string
	Type        string // "string", "number", "integer", "boolean", "object", "array"
	Required    bool
	Description string
	Default     interface{}
	// Schema, when set, replaces the schema derived from Type.
	Schema map[string]interface{}
}

// ToolProvider is implemented by anything that offers tools to the MCP server.
type ToolProvider interface {
	// Returns all tools this provider offers
	GetTools() []ToolMetadata

	// Executes a tool by name
	ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*CallToolResult, error)
}
