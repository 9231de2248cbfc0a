package server

import (
	"context"
	"fmt"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/formatting"
	"github.com/giantswarm/mcp-odoo/internal/odoo"
	"github.com/giantswarm/mcp-odoo/internal/uri"
)

// Resolve executes a read request after checking read permission on its
// model. Tools and resource URIs both end up here.
func (p *Provider) Resolve(ctx context.Context, req *uri.Request) (string, error) {
	if err := p.access.Authorize(ctx, req.Model, api.OperationRead); err != nil {
		return "", err
	}

	switch req.Operation {
	case uri.OpRecord:
		return p.record(ctx, req)
	case uri.OpSearch:
		return p.search(ctx, req)
	case uri.OpBrowse:
		return p.browse(ctx, req)
	case uri.OpCount:
		return p.count(ctx, req)
	case uri.OpFields:
		return p.fields(ctx, req)
	}
	return "", invalidArg("operation", "invalid operation: %s", req.Operation)
}

// selection resolves the requested fields against the model schema and
// rejects names the model does not have.
func (p *Provider) selection(ctx context.Context, model string, requested []string) (odoo.Fields, formatting.Selection, error) {
	schema, err := p.backend.FieldsGet(ctx, model)
	if err != nil {
		return nil, formatting.Selection{}, err
	}
	sel := formatting.SelectFields(schema, requested, p.opts.MaxSmartFields)
	if !sel.Smart {
		for _, name := range sel.Fields {
			if _, ok := schema[name]; !ok && name != "id" {
				return nil, formatting.Selection{}, invalidArg(name, "unknown field '%s' on model '%s'", name, model)
			}
		}
	}
	return schema, sel, nil
}

func (p *Provider) record(ctx context.Context, req *uri.Request) (string, error) {
	schema, sel, err := p.selection(ctx, req.Model, req.Fields)
	if err != nil {
		return "", err
	}
	records, err := p.backend.Read(ctx, req.Model, []int{req.RecordID}, sel.Fields)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", &api.NotFoundError{Model: req.Model, RecordID: req.RecordID}
	}
	return p.formatter(req.Model).Record(records[0], schema, sel), nil
}

func (p *Provider) search(ctx context.Context, req *uri.Request) (string, error) {
	limit, err := resolveLimit(req.Limit, p.opts.DefaultLimit, p.opts.MaxLimit)
	if err != nil {
		return "", err
	}
	offset, err := resolveOffset(req.Offset)
	if err != nil {
		return "", err
	}
	if err := validateOrder(req.Order); err != nil {
		return "", err
	}

	schema, sel, err := p.selection(ctx, req.Model, req.Fields)
	if err != nil {
		return "", err
	}
	total, err := p.backend.SearchCount(ctx, req.Model, req.Domain)
	if err != nil {
		return "", err
	}

	var records []odoo.Record
	if limit > 0 && offset < total {
		opts := odoo.SearchOptions{Limit: limit, Offset: offset, Order: req.Order}
		records, err = p.backend.SearchRead(ctx, req.Model, req.Domain, sel.Fields, opts)
		if err != nil {
			return "", err
		}
	}

	result := formatting.SearchResult{
		Domain:    req.Domain,
		Records:   records,
		Schema:    schema,
		Selection: sel,
		Total:     total,
		Offset:    offset,
		Limit:     limit,
	}
	if limit > 0 {
		if offset+len(records) < total {
			result.Next = pageURI(req, offset+limit, limit)
		}
		if offset > 0 {
			result.Previous = pageURI(req, max(offset-limit, 0), limit)
		}
	}
	return p.formatter(req.Model).Search(result), nil
}

// pageURI is the search URI of another page of req. Smart selections are
// not carried over so the next page ranks fields the same way.
func pageURI(req *uri.Request, offset, limit int) string {
	page := &uri.Request{
		Model:     req.Model,
		Operation: uri.OpSearch,
		Domain:    req.Domain,
		Fields:    req.Fields,
		Order:     req.Order,
	}
	link, err := uri.Build(page.WithPage(offset, limit))
	if err != nil {
		return ""
	}
	return link
}

func (p *Provider) browse(ctx context.Context, req *uri.Request) (string, error) {
	if len(req.IDs) == 0 {
		return "", invalidArg("ids", "browse requires at least one ID")
	}
	if p.opts.MaxLimit > 0 && len(req.IDs) > p.opts.MaxLimit {
		return "", invalidArg("ids", "at most %d IDs can be browsed at once, got %d", p.opts.MaxLimit, len(req.IDs))
	}

	schema, sel, err := p.selection(ctx, req.Model, req.Fields)
	if err != nil {
		return "", err
	}
	records, err := p.backend.Read(ctx, req.Model, req.IDs, sel.Fields)
	if err != nil {
		return "", err
	}
	return p.formatter(req.Model).Browse(req.IDs, records, schema, sel), nil
}

func (p *Provider) count(ctx context.Context, req *uri.Request) (string, error) {
	n, err := p.backend.SearchCount(ctx, req.Model, req.Domain)
	if err != nil {
		return "", err
	}
	return p.formatter(req.Model).Count(req.Domain, n), nil
}

func (p *Provider) fields(ctx context.Context, req *uri.Request) (string, error) {
	schema, err := p.backend.FieldsGet(ctx, req.Model)
	if err != nil {
		return "", err
	}
	if len(schema) == 0 {
		return "", &api.NotFoundError{Model: req.Model, Message: fmt.Sprintf("model '%s' reports no fields", req.Model)}
	}
	return p.formatter(req.Model).Fields(schema), nil
}
