package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

// createTools converts the tools of provider into MCP server tools.
func createTools(provider api.ToolProvider) []mcpserver.ServerTool {
	metas := provider.GetTools()
	tools := make([]mcpserver.ServerTool, 0, len(metas))
	for _, meta := range metas {
		tools = append(tools, mcpserver.ServerTool{
			Tool: mcp.Tool{
				Name:        meta.Name,
				Description: meta.Description,
				InputSchema: convertToMCPSchema(meta.Parameters),
			},
			Handler: createToolHandler(provider, meta.Name),
		})
	}
	return tools
}

// createToolHandler wraps provider.ExecuteTool in an MCP handler.
func createToolHandler(provider api.ToolProvider, toolName string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := make(map[string]interface{})
		if req.Params.Arguments != nil {
			if argsMap, ok := req.Params.Arguments.(map[string]interface{}); ok {
				args = argsMap
			}
		}

		result, err := provider.ExecuteTool(ctx, toolName, args)
		if err != nil {
			logging.Error("ToolHandler", err, "Tool execution failed for %s", toolName)
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}
		return convertToMCPResult(result), nil
	}
}

// convertToMCPSchema builds the JSON schema of a tool's input. A parameter
// Schema takes precedence over its Type.
func convertToMCPSchema(params []api.ParameterMetadata) mcp.ToolInputSchema {
	properties := make(map[string]interface{})
	required := []string{}

	for _, param := range params {
		var propSchema map[string]interface{}
		if len(param.Schema) > 0 {
			propSchema = make(map[string]interface{}, len(param.Schema)+1)
			for key, value := range param.Schema {
				propSchema[key] = value
			}
			if param.Description != "" {
				propSchema["description"] = param.Description
			}
		} else {
			propSchema = map[string]interface{}{
				"type":        param.Type,
				"description": param.Description,
			}
		}
		if param.Default != nil {
			propSchema["default"] = param.Default
		}

		properties[param.Name] = propSchema
		if param.Required {
			required = append(required, param.Name)
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// convertToMCPResult turns string content into text content and marshals
// anything else to JSON.
func convertToMCPResult(result *api.CallToolResult) *mcp.CallToolResult {
	content := make([]mcp.Content, len(result.Content))
	for i, item := range result.Content {
		if text, ok := item.(string); ok {
			content[i] = mcp.NewTextContent(text)
			continue
		}
		b, err := json.Marshal(item)
		if err != nil {
			b = []byte(fmt.Sprintf("%v", item))
		}
		content[i] = mcp.NewTextContent(string(b))
	}

	return &mcp.CallToolResult{
		Content: content,
		IsError: result.IsError,
	}
}
