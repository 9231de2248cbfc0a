package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/formatting"
)

type resourceTemplate struct {
	uri         string
	name        string
	description string
}

var resourceTemplates = []resourceTemplate{
	{
		uri:         "odoo://{model}/record/{record_id}",
		name:        "Record",
		description: "A single record by ID",
	},
	{
		uri:         "odoo://{model}/search{?domain,fields,limit,offset,order}",
		name:        "Search",
		description: "Records matching a domain, one page at a time",
	},
	{
		uri:         "odoo://{model}/browse{?ids,fields}",
		name:        "Browse",
		description: "Several records by ID",
	},
	{
		uri:         "odoo://{model}/count{?domain}",
		name:        "Count",
		description: "Number of records matching a domain",
	},
	{
		uri:         "odoo://{model}/fields",
		name:        "Fields",
		description: "Field definitions of a model",
	},
}

// resourceError carries the JSON error payload as its message.
type resourceError struct {
	err error
}

func (e *resourceError) Error() string {
	return formatting.PrettyJSON(api.ErrorPayload(e.err))
}

func (e *resourceError) Unwrap() error { return e.err }

// registerResources adds every odoo:// resource template to s.
func (s *Server) registerResources() {
	for _, t := range resourceTemplates {
		tmpl := mcp.NewResourceTemplate(t.uri, t.name,
			mcp.WithTemplateDescription(t.description),
			mcp.WithTemplateMIMEType("text/plain"),
		)
		s.mcpServer.AddResourceTemplate(tmpl, s.handleResource)
	}
}

// handleResource serves every template. The URI is re-parsed from the
// request rather than taken from the template match.
func (s *Server) handleResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := s.provider.ReadResource(ctx, req.Params.URI)
	if err != nil {
		return nil, &resourceError{err: err}
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}
