package server

import (
	"context"
	"fmt"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/formatting"
	"github.com/giantswarm/mcp-odoo/internal/odoo"
	"github.com/giantswarm/mcp-odoo/internal/uri"
)

func (p *Provider) searchRecords(ctx context.Context, args toolArgs, c *call) (string, error) {
	model, err := args.model()
	if err != nil {
		return "", err
	}
	c.target(model, api.OperationRead)

	req := &uri.Request{Model: model, Operation: uri.OpSearch}
	if req.Domain, err = args.domain(); err != nil {
		return "", err
	}
	if req.Fields, err = args.fields(); err != nil {
		return "", err
	}
	if req.Limit, err = args.optionalInt("limit"); err != nil {
		return "", err
	}
	if req.Offset, err = args.optionalInt("offset"); err != nil {
		return "", err
	}
	if req.Order, err = args.optionalString("order"); err != nil {
		return "", err
	}
	return p.Resolve(ctx, req)
}

func (p *Provider) getRecord(ctx context.Context, args toolArgs, c *call) (string, error) {
	model, err := args.model()
	if err != nil {
		return "", err
	}
	c.target(model, api.OperationRead)

	req := &uri.Request{Model: model, Operation: uri.OpRecord}
	if req.RecordID, err = args.recordID(); err != nil {
		return "", err
	}
	if req.Fields, err = args.fields(); err != nil {
		return "", err
	}
	return p.Resolve(ctx, req)
}

func (p *Provider) listModels(ctx context.Context, _ toolArgs, _ *call) (string, error) {
	models, err := p.access.EnabledModels(ctx)
	if err != nil {
		return "", err
	}

	entries := make([]formatting.ModelEntry, 0, len(models))
	for _, m := range models {
		entry := formatting.ModelEntry{Model: m.Model, Name: m.Name}
		for _, op := range api.Operations {
			if m.Allows(op) {
				entry.Operations = append(entry.Operations, string(op))
			}
		}
		entries = append(entries, entry)
	}
	return formatting.Models(entries), nil
}

func (p *Provider) createRecord(ctx context.Context, args toolArgs, c *call) (string, error) {
	model, err := args.model()
	if err != nil {
		return "", err
	}
	c.target(model, api.OperationCreate)

	values, err := args.values()
	if err != nil {
		return "", err
	}
	if err := p.access.Authorize(ctx, model, api.OperationCreate); err != nil {
		return "", err
	}

	id, err := p.backend.Create(ctx, model, values)
	if err != nil {
		return "", err
	}
	message := fmt.Sprintf("Successfully created %s record with ID %d\nURI: %s", model, id, uri.RecordURI(model, id))
	return p.withRecord(ctx, message, model, id), nil
}

func (p *Provider) updateRecord(ctx context.Context, args toolArgs, c *call) (string, error) {
	model, err := args.model()
	if err != nil {
		return "", err
	}
	c.target(model, api.OperationWrite)

	id, err := args.recordID()
	if err != nil {
		return "", err
	}
	values, err := args.values()
	if err != nil {
		return "", err
	}
	if err := p.access.Authorize(ctx, model, api.OperationWrite); err != nil {
		return "", err
	}
	if _, err := p.existing(ctx, model, id, false); err != nil {
		return "", err
	}

	ok, err := p.backend.Write(ctx, model, []int{id}, values)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("backend did not confirm the update of %s record %d", model, id)
	}
	message := fmt.Sprintf("Successfully updated %s record with ID %d\nURI: %s", model, id, uri.RecordURI(model, id))
	return p.withRecord(ctx, message, model, id), nil
}

func (p *Provider) deleteRecord(ctx context.Context, args toolArgs, c *call) (string, error) {
	model, err := args.model()
	if err != nil {
		return "", err
	}
	c.target(model, api.OperationUnlink)

	id, err := args.recordID()
	if err != nil {
		return "", err
	}
	if err := p.access.Authorize(ctx, model, api.OperationUnlink); err != nil {
		return "", err
	}
	canRead := p.access.Authorize(ctx, model, api.OperationRead) == nil
	rec, err := p.existing(ctx, model, id, canRead)
	if err != nil {
		return "", err
	}

	ok, err := p.backend.Unlink(ctx, model, []int{id})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("backend did not confirm the deletion of %s record %d", model, id)
	}
	if !canRead {
		return fmt.Sprintf("Successfully deleted %s record with ID %d", model, id), nil
	}
	return fmt.Sprintf("Successfully deleted %s record '%s' (ID: %d)", model, formatting.RecordName(rec), id), nil
}

// existing reads record id, failing with NotFoundError when it does not
// exist. withName adds the name fields the model has.
func (p *Provider) existing(ctx context.Context, model string, id int, withName bool) (odoo.Record, error) {
	fields := []string{"id"}
	if withName {
		schema, err := p.backend.FieldsGet(ctx, model)
		if err != nil {
			return nil, err
		}
		for _, name := range []string{"display_name", "name"} {
			if _, ok := schema[name]; ok {
				fields = append(fields, name)
			}
		}
	}

	records, err := p.backend.Read(ctx, model, []int{id}, fields)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &api.NotFoundError{Model: model, RecordID: id}
	}
	return records[0], nil
}

// withRecord appends the rendered record to message when the caller may
// read it. The write has already happened, so a failed read-back only
// drops the record from the answer.
func (p *Provider) withRecord(ctx context.Context, message, model string, id int) string {
	text, err := p.Resolve(ctx, &uri.Request{Model: model, Operation: uri.OpRecord, RecordID: id})
	if err != nil {
		return message
	}
	return message + "\n\n" + text
}
