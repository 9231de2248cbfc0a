package formatting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/giantswarm/mcp-odoo/internal/odoo"
	pkgstrings "github.com/giantswarm/mcp-odoo/pkg/strings"
)

const maxDetailLen = 80

// ModelEntry is one line of the enabled model list.
type ModelEntry struct {
	Model      string
	Name       string
	Operations []string
}

// Fields renders a model's schema as a table grouped by field type.
func (f *Formatter) Fields(schema odoo.Fields) string {
	names := schema.Names()
	sort.SliceStable(names, func(i, j int) bool {
		return schema[names[i]].Type < schema[names[j]].Type
	})

	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	t.AppendHeader(table.Row{"Field", "Type", "Label", "Required", "Readonly", "Details"})
	for _, name := range names {
		info := schema[name]
		t.AppendRow(table.Row{
			name,
			info.Type,
			info.Label,
			yesNo(info.Required),
			yesNo(info.Readonly),
			pkgstrings.Truncate(fieldDetails(info), maxDetailLen),
		})
	}

	return fmt.Sprintf("Fields: %s (%d fields)\n\n%s", f.model, len(schema), t.Render())
}

func fieldDetails(info odoo.FieldInfo) string {
	var parts []string
	if info.Relation != "" {
		parts = append(parts, "relation: "+info.Relation)
	}
	if len(info.Selection) > 0 {
		opts := make([]string, len(info.Selection))
		for i, opt := range info.Selection {
			opts[i] = opt.Key + "=" + opt.Label
		}
		parts = append(parts, "options: "+strings.Join(opts, ", "))
	}
	if info.HasDigits {
		parts = append(parts, fmt.Sprintf("precision: %d", info.Digits))
	}
	if info.Kind == odoo.KindComputed {
		parts = append(parts, "computed")
	}
	if info.Help != "" {
		parts = append(parts, "help: "+info.Help)
	}
	return strings.Join(parts, "; ")
}

// Models renders the enabled model list.
func Models(models []ModelEntry) string {
	if len(models) == 0 {
		return "No models are enabled for MCP access."
	}
	lines := []string{fmt.Sprintf("Enabled models (%d):", len(models))}
	for _, m := range models {
		line := "  - " + m.Model
		if m.Name != "" && m.Name != m.Model {
			line += ": " + m.Name
		}
		if len(m.Operations) > 0 {
			line += " [" + strings.Join(m.Operations, ", ") + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
