package server

import (
	"context"

	"github.com/giantswarm/mcp-odoo/internal/access"
	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/domain"
	"github.com/giantswarm/mcp-odoo/internal/odoo"
)

// Backend is the part of *odoo.Connection the dispatcher uses.
type Backend interface {
	SearchCount(ctx context.Context, model string, d domain.Domain) (int, error)
	Read(ctx context.Context, model string, ids []int, fields []string) ([]odoo.Record, error)
	SearchRead(ctx context.Context, model string, d domain.Domain, fields []string, opts odoo.SearchOptions) ([]odoo.Record, error)
	FieldsGet(ctx context.Context, model string) (odoo.Fields, error)
	Create(ctx context.Context, model string, values map[string]interface{}) (int, error)
	Write(ctx context.Context, model string, ids []int, values map[string]interface{}) (bool, error)
	Unlink(ctx context.Context, model string, ids []int) (bool, error)
}

// Authorizer is the part of *access.Controller the dispatcher uses.
type Authorizer interface {
	Authorize(ctx context.Context, model string, op api.Operation) error
	EnabledModels(ctx context.Context) ([]access.ModelPermissions, error)
}

var (
	_ Backend    = (*odoo.Connection)(nil)
	_ Authorizer = (*access.Controller)(nil)
)
