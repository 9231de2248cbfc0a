package formatting

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-odoo/internal/odoo"
)

func partnerSchema() odoo.Fields {
	return schemaOf(
		field("id", "integer"),
		field("display_name", "char", notStored),
		field("name", "char", required),
		field("email", "char"),
		field("is_company", "boolean"),
		field("credit_limit", "float"),
		field("country_id", "many2one", relation("res.country")),
		field("child_ids", "one2many", relation("res.partner")),
		field("write_date", "datetime"),
	)
}

func azure() odoo.Record {
	return odoo.Record{
		"id":           int64(7),
		"display_name": "Azure Interior",
		"name":         "Azure Interior",
		"email":        "info@azure.example",
		"is_company":   true,
		"credit_limit": 2500.0,
		"country_id":   []interface{}{int64(21), "Belgium"},
		"child_ids":    []interface{}{int64(8), int64(9)},
		"write_date":   "2024-03-01 10:20:30",
	}
}

// parseRecord reads the output of Formatter.Record back into its model, id
// and field lines.
func parseRecord(t *testing.T, out string) (model string, id string, fields map[string]string) {
	t.Helper()
	fields = make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Record: "):
			ref := strings.TrimPrefix(line, "Record: ")
			slash := strings.LastIndex(ref, "/")
			require.Positive(t, slash, "malformed header %q", line)
			model, id = ref[:slash], ref[slash+1:]
		case strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "    "):
			name, value, ok := strings.Cut(strings.TrimSpace(line), ": ")
			require.True(t, ok, "malformed field line %q", line)
			fields[name] = value
		}
	}
	return model, id, fields
}

func TestRecordExplicitFields(t *testing.T) {
	f := New("res.partner", Options{MaxRelatedItems: 10})
	sel := SelectFields(partnerSchema(), []string{"name", "email", "country_id", "child_ids"}, 10)

	expected := strings.Join([]string{
		recordRule,
		"Record: res.partner/7",
		"Name: Azure Interior",
		recordRule,
		"Fields:",
		"  name: Azure Interior",
		"  email: info@azure.example",
		"Relationships:",
		"  country_id: Belgium (21)",
		"  child_ids: 2 record(s) [8, 9]",
		"    → View all: odoo://res.partner/browse?ids=8%2C9",
	}, "\n")

	assert.Equal(t, expected, f.Record(azure(), partnerSchema(), sel))
}

func TestRecordRoundTrip(t *testing.T) {
	f := New("res.partner", Options{MaxRelatedItems: 10})
	requested := []string{"name", "email", "is_company", "credit_limit", "country_id", "write_date"}
	sel := SelectFields(partnerSchema(), requested, 10)

	model, id, fields := parseRecord(t, f.Record(azure(), partnerSchema(), sel))

	assert.Equal(t, "res.partner", model)
	assert.Equal(t, "7", id)
	assert.Len(t, fields, len(requested))
	for _, name := range requested {
		assert.Contains(t, fields, name)
	}
	assert.Equal(t, "Yes", fields["is_company"])
	assert.Equal(t, "2,500.00", fields["credit_limit"])
	assert.Equal(t, "2024-03-01T10:20:30+00:00", fields["write_date"])
}

func TestRecordAllFields(t *testing.T) {
	f := New("res.partner", Options{MaxRelatedItems: 10})
	sel := SelectFields(partnerSchema(), []string{AllFields}, 10)

	out := f.Record(azure(), partnerSchema(), sel)
	_, _, fields := parseRecord(t, out)

	assert.Len(t, fields, len(azure())-1)
	assert.NotContains(t, out, "smart selection")

	// identity fields lead, the rest is sorted
	assert.Less(t, strings.Index(out, "  display_name:"), strings.Index(out, "  name:"))
	assert.Less(t, strings.Index(out, "  name:"), strings.Index(out, "  credit_limit:"))
	assert.Less(t, strings.Index(out, "  credit_limit:"), strings.Index(out, "  email:"))
}

func TestRecordSmartSelectionNote(t *testing.T) {
	f := New("res.partner", Options{MaxRelatedItems: 10})
	sel := SelectFields(partnerSchema(), nil, 4)

	out := f.Record(azure(), partnerSchema(), sel)

	assert.Contains(t, out, "Showing 4 of 9 available fields (smart selection)")
	assert.Contains(t, out, `fields=["__all__"]`)
}

func TestRecordIsDeterministic(t *testing.T) {
	f := New("res.partner", Options{MaxRelatedItems: 10})
	sel := SelectFields(partnerSchema(), []string{AllFields}, 10)

	first := f.Record(azure(), partnerSchema(), sel)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, f.Record(azure(), partnerSchema(), sel))
	}
}

func TestRecordNameFallback(t *testing.T) {
	f := New("res.partner", Options{})
	out := f.Record(odoo.Record{"id": int64(3), "email": false}, partnerSchema(), Selection{Fields: []string{"email"}})

	assert.Contains(t, out, "Name: Record 3")
	assert.Contains(t, out, "  email: Not set")
}
