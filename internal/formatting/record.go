package formatting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/giantswarm/mcp-odoo/internal/odoo"
	"github.com/giantswarm/mcp-odoo/internal/uri"
)

var (
	recordRule = strings.Repeat("=", 50)
	listRule   = strings.Repeat("=", 60)
)

// Options configures a Formatter.
type Options struct {
	// MaxRelatedItems caps the ids listed inline for x2many fields.
	MaxRelatedItems int
}

// Formatter renders records of one model.
type Formatter struct {
	model      string
	maxRelated int
}

// New returns a Formatter for model.
func New(model string, opts Options) *Formatter {
	return &Formatter{model: model, maxRelated: opts.MaxRelatedItems}
}

// Record renders a single record:
//
//	==================================================
//	Record: res.partner/7
//	Name: Azure Interior
//	==================================================
//	Fields:
//	  email: info@azure.example
//	Relationships:
//	  country_id: Belgium (21)
//
// Field lines are labelled with the technical field name so the output maps
// back onto the request.
func (f *Formatter) Record(rec odoo.Record, schema odoo.Fields, sel Selection) string {
	var b strings.Builder
	f.writeRecord(&b, rec, schema, sel)
	if sel.Smart {
		b.WriteString("\n\n")
		b.WriteString(smartNote(len(sel.Fields), sel.Available))
	}
	return b.String()
}

func (f *Formatter) writeRecord(b *strings.Builder, rec odoo.Record, schema odoo.Fields, sel Selection) {
	fmt.Fprintf(b, "%s\nRecord: %s/%d\nName: %s\n%s", recordRule, f.model, rec.ID(), RecordName(rec), recordRule)

	var simple, relations []string
	for _, name := range fieldOrder(rec, sel) {
		info := fieldInfo(schema, name)
		if info.Kind == odoo.KindRelationOne || info.Kind == odoo.KindRelationMany {
			relations = append(relations, name)
		} else {
			simple = append(simple, name)
		}
	}

	if len(simple) > 0 {
		b.WriteString("\nFields:")
		for _, name := range simple {
			fmt.Fprintf(b, "\n  %s: %s", name, f.value(rec, fieldInfo(schema, name), rec[name]))
		}
	}
	if len(relations) > 0 {
		b.WriteString("\nRelationships:")
		for _, name := range relations {
			info := fieldInfo(schema, name)
			fmt.Fprintf(b, "\n  %s: %s", name, f.value(rec, info, rec[name]))
			if link := browseLink(info, rec[name]); link != "" {
				fmt.Fprintf(b, "\n    → View all: %s", link)
			}
		}
	}
}

// fieldOrder lists the fields to render, excluding id which is in the
// header. Explicit and smart selections keep their order; a full selection
// shows identity fields first and the rest sorted.
func fieldOrder(rec odoo.Record, sel Selection) []string {
	var names []string
	if sel.All() {
		for _, name := range identityFields[1:] {
			if _, ok := rec[name]; ok {
				names = append(names, name)
			}
		}
		var rest []string
		for name := range rec {
			if name == "id" || name == "display_name" || name == "name" {
				continue
			}
			rest = append(rest, name)
		}
		sort.Strings(rest)
		return append(names, rest...)
	}

	for _, name := range sel.Fields {
		if name == "id" {
			continue
		}
		if _, ok := rec[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// fieldInfo returns the schema entry of name, or a scalar placeholder for
// fields the schema does not describe.
func fieldInfo(schema odoo.Fields, name string) odoo.FieldInfo {
	if info, ok := schema[name]; ok {
		return info
	}
	return odoo.FieldInfo{Name: name, Kind: odoo.KindScalar}
}

func browseLink(info odoo.FieldInfo, v interface{}) string {
	if info.Kind != odoo.KindRelationMany || info.Relation == "" {
		return ""
	}
	ids := relatedIDs(v)
	if len(ids) == 0 {
		return ""
	}
	link, err := uri.Build(&uri.Request{Model: info.Relation, Operation: uri.OpBrowse, IDs: ids})
	if err != nil {
		return ""
	}
	return link
}

// RecordName picks the best human-readable name of rec.
func RecordName(rec odoo.Record) string {
	for _, field := range []string{"display_name", "name", "complete_name"} {
		if s, ok := rec[field].(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("Record %d", rec.ID())
}

// summary is the one-line form of rec used in lists: its name and id.
func summary(rec odoo.Record) string {
	for _, field := range []string{"display_name", "name", "complete_name"} {
		if s, ok := rec[field].(string); ok && s != "" {
			return fmt.Sprintf("%s (ID: %d)", s, rec.ID())
		}
	}
	return fmt.Sprintf("ID: %d", rec.ID())
}

func smartNote(shown, available int) string {
	return fmt.Sprintf("Showing %d of %d available fields (smart selection). Pass fields=[\"%s\"] for every field, or name the fields you need.",
		shown, available, AllFields)
}
