package app

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/giantswarm/mcp-odoo/internal/access"
	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/config"
	"github.com/giantswarm/mcp-odoo/internal/odoo"
)

// Check authenticates against the backend and writes the server version
// followed by the permission matrix of every enabled model.
func Check(ctx context.Context, odooCfg *config.Config, out io.Writer) error {
	conn := odoo.NewConnection(odooCfg)
	defer conn.Close()

	sess, err := conn.Authenticate(ctx)
	if err != nil {
		return err
	}

	version, err := conn.ServerVersion(ctx)
	if err != nil {
		return err
	}

	controller, err := newController(odooCfg, conn)
	if err != nil {
		return err
	}
	models, err := controller.EnabledModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Odoo:     %s\n", odooCfg.URL)
	fmt.Fprintf(out, "Database: %s\n", sess.Database)
	fmt.Fprintf(out, "User ID:  %d (%s)\n", sess.UserID, sess.Method)
	fmt.Fprintf(out, "Version:  %s\n\n", version.ServerVersion)

	if len(models) == 0 {
		fmt.Fprintln(out, "No models are enabled for MCP access.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	header := table.Row{"MODEL", "NAME"}
	for _, op := range api.Operations {
		header = append(header, string(op))
	}
	t.AppendHeader(header)
	for _, m := range models {
		row := table.Row{m.Model, m.Name}
		for _, op := range api.Operations {
			row = append(row, mark(m, op))
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func mark(m access.ModelPermissions, op api.Operation) string {
	if m.Allows(op) {
		return "yes"
	}
	return "-"
}
