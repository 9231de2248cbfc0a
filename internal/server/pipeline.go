package server

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

const (
	kindTool     = "tool"
	kindResource = "resource"
)

// call tracks one request for the audit log. model and operation are
// filled in as soon as the request has been validated.
type call struct {
	id        string
	kind      string
	name      string
	model     string
	operation api.Operation
	started   time.Time
}

func (p *Provider) begin(kind, name string) *call {
	return &call{
		id:      uuid.NewString(),
		kind:    kind,
		name:    name,
		started: p.now(),
	}
}

func (c *call) target(model string, op api.Operation) {
	c.model = model
	c.operation = op
}

// finish writes the audit line. Internal errors are logged in full as well
// since the caller only sees their message.
func (p *Provider) finish(c *call, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(api.KindOf(err))
		if api.KindOf(err) == api.KindInternal {
			logging.Error("Dispatcher", err, "%s %s failed (request %s)", c.kind, c.name, c.id)
		}
	}

	logging.Audit("request completed",
		slog.String("request_id", c.id),
		slog.String("kind", c.kind),
		slog.String("name", c.name),
		slog.String("model", c.model),
		slog.String("operation", string(c.operation)),
		slog.String("outcome", outcome),
		slog.Duration("duration", p.now().Sub(c.started)),
	)
}
