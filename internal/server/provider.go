package server

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/config"
	"github.com/giantswarm/mcp-odoo/internal/formatting"
	"github.com/giantswarm/mcp-odoo/internal/uri"
)

const (
	ToolSearchRecords = "search_records"
	ToolGetRecord     = "get_record"
	ToolListModels    = "list_models"
	ToolCreateRecord  = "create_record"
	ToolUpdateRecord  = "update_record"
	ToolDeleteRecord  = "delete_record"
)

// Options shape the results of the provider.
type Options struct {
	DefaultLimit    int
	MaxLimit        int
	MaxSmartFields  int
	MaxRelatedItems int
}

// OptionsFromConfig copies the result shaping settings of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultLimit:    cfg.DefaultLimit,
		MaxLimit:        cfg.MaxLimit,
		MaxSmartFields:  cfg.MaxSmartFields,
		MaxRelatedItems: cfg.MaxRelatedItems,
	}
}

type toolHandler func(ctx context.Context, args toolArgs, c *call) (string, error)

// Provider implements api.ToolProvider for the backend tools and resolves
// odoo:// resource URIs. It holds no per-request state and is safe for
// concurrent use.
type Provider struct {
	backend  Backend
	access   Authorizer
	opts     Options
	now      func() time.Time
	handlers map[string]toolHandler
}

// NewProvider returns a Provider executing against backend after every
// operation has been cleared by authorizer.
func NewProvider(backend Backend, authorizer Authorizer, opts Options) *Provider {
	p := &Provider{
		backend: backend,
		access:  authorizer,
		opts:    opts,
		now:     time.Now,
	}
	p.handlers = map[string]toolHandler{
		ToolSearchRecords: p.searchRecords,
		ToolGetRecord:     p.getRecord,
		ToolListModels:    p.listModels,
		ToolCreateRecord:  p.createRecord,
		ToolUpdateRecord:  p.updateRecord,
		ToolDeleteRecord:  p.deleteRecord,
	}
	return p
}

var (
	modelParam = api.ParameterMetadata{
		Name:        "model",
		Type:        "string",
		Required:    true,
		Description: "Technical model name, e.g. 'res.partner'",
	}
	recordIDParam = api.ParameterMetadata{
		Name:        "record_id",
		Type:        "integer",
		Required:    true,
		Description: "ID of the record",
	}
	fieldsParam = api.ParameterMetadata{
		Name:        "fields",
		Type:        "array",
		Description: "Fields to return. Omit for a ranked selection of the most useful fields, or pass [\"__all__\"] for every field",
		Schema: map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	}
	valuesParam = api.ParameterMetadata{
		Name:        "values",
		Type:        "object",
		Required:    true,
		Description: "Field values keyed by field name",
	}
)

// GetTools returns the metadata of every tool.
func (p *Provider) GetTools() []api.ToolMetadata {
	return []api.ToolMetadata{
		{
			Name:        ToolSearchRecords,
			Description: "Search records of a model with an optional domain filter and pagination",
			Parameters: []api.ParameterMetadata{
				modelParam,
				{
					Name:        "domain",
					Type:        "array",
					Description: "Domain filter, e.g. [[\"is_company\", \"=\", true]]. A string in JSON or domain literal notation is accepted as well",
					Schema: map[string]interface{}{
						"type": []interface{}{"array", "string"},
					},
				},
				fieldsParam,
				{
					Name:        "limit",
					Type:        "integer",
					Description: fmt.Sprintf("Maximum number of records (default %d, max %d). 0 returns only the count", p.opts.DefaultLimit, p.opts.MaxLimit),
				},
				{
					Name:        "offset",
					Type:        "integer",
					Description: "Number of records to skip",
					Default:     0,
				},
				{
					Name:        "order",
					Type:        "string",
					Description: "Sort order, e.g. 'name asc, id desc'",
				},
			},
		},
		{
			Name:        ToolGetRecord,
			Description: "Get a single record by ID",
			Parameters:  []api.ParameterMetadata{modelParam, recordIDParam, fieldsParam},
		},
		{
			Name:        ToolListModels,
			Description: "List the models enabled for MCP access and the operations allowed on each",
		},
		{
			Name:        ToolCreateRecord,
			Description: "Create a new record",
			Parameters:  []api.ParameterMetadata{modelParam, valuesParam},
		},
		{
			Name:        ToolUpdateRecord,
			Description: "Update fields of an existing record",
			Parameters:  []api.ParameterMetadata{modelParam, recordIDParam, valuesParam},
		},
		{
			Name:        ToolDeleteRecord,
			Description: "Delete a record",
			Parameters:  []api.ParameterMetadata{modelParam, recordIDParam},
		},
	}
}

// ExecuteTool runs toolName. Failures of the call itself are reported as an
// error result carrying the JSON error payload; only an unknown tool name
// returns an error.
func (p *Provider) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*api.CallToolResult, error) {
	handler, ok := p.handlers[toolName]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", toolName)
	}

	c := p.begin(kindTool, toolName)
	text, err := handler(ctx, toolArgs(args), c)
	p.finish(c, err)
	if err != nil {
		return errorResult(err), nil
	}
	return &api.CallToolResult{Content: []interface{}{text}}, nil
}

// ReadResource resolves and renders an odoo:// URI.
func (p *Provider) ReadResource(ctx context.Context, raw string) (string, error) {
	c := p.begin(kindResource, raw)
	text, err := p.readResource(ctx, raw, c)
	p.finish(c, err)
	return text, err
}

func (p *Provider) readResource(ctx context.Context, raw string, c *call) (string, error) {
	req, err := uri.Parse(raw)
	if err != nil {
		return "", err
	}
	c.target(req.Model, api.OperationRead)
	return p.Resolve(ctx, req)
}

func errorResult(err error) *api.CallToolResult {
	return &api.CallToolResult{
		Content: []interface{}{formatting.PrettyJSON(api.ErrorPayload(err))},
		IsError: true,
	}
}

func (p *Provider) formatter(model string) *formatting.Formatter {
	return formatting.New(model, formatting.Options{MaxRelatedItems: p.opts.MaxRelatedItems})
}
