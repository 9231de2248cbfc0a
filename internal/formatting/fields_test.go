package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/giantswarm/mcp-odoo/internal/odoo"
)

type fieldOption func(*odoo.FieldInfo)

func required(f *odoo.FieldInfo)      { f.Required = true }
func notStored(f *odoo.FieldInfo)     { f.Stored = false; f.Kind = odoo.KindComputed }
func notSearchable(f *odoo.FieldInfo) { f.Searchable = false }

func relation(model string) fieldOption {
	return func(f *odoo.FieldInfo) { f.Relation = model }
}

func field(name, typ string, opts ...fieldOption) odoo.FieldInfo {
	info := odoo.FieldInfo{Name: name, Type: typ, Label: name, Stored: true, Searchable: true, Kind: odoo.KindScalar}
	switch typ {
	case "many2one":
		info.Kind = odoo.KindRelationOne
	case "one2many", "many2many":
		info.Kind = odoo.KindRelationMany
	}
	for _, opt := range opts {
		opt(&info)
	}
	return info
}

func schemaOf(infos ...odoo.FieldInfo) odoo.Fields {
	fields := make(odoo.Fields, len(infos))
	for _, info := range infos {
		fields[info.Name] = info
	}
	return fields
}

func rankingSchema() odoo.Fields {
	return schemaOf(
		field("id", "integer"),
		field("display_name", "char", notStored),
		field("name", "char", required),
		field("email", "char"),
		field("state", "selection"),
		field("country_id", "many2one", relation("res.country")),
		field("child_ids", "one2many", relation("res.partner")),
		field("image_1920", "binary"),
		field("message_ids", "one2many", relation("mail.message")),
		field("write_date", "datetime"),
		field("amount", "monetary"),
		field("comment", "char"),
		field("notes", "text", notSearchable),
		field("activity_state", "selection"),
	)
}

func TestSmartFields(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected []string
	}{
		{
			name:     "ranked by importance",
			limit:    6,
			expected: []string{"id", "display_name", "name", "state", "email", "country_id"},
		},
		{
			name:     "every eligible field",
			limit:    100,
			expected: []string{"id", "display_name", "name", "state", "email", "country_id", "amount", "comment"},
		},
		{
			name:     "identity fields survive a small limit",
			limit:    1,
			expected: []string{"id", "display_name", "name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SmartFields(rankingSchema(), tt.limit))
		})
	}
}

func TestSmartFieldsIsDeterministic(t *testing.T) {
	first := SmartFields(rankingSchema(), 8)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, SmartFields(rankingSchema(), 8))
	}
}

func TestSmartFieldsWithoutNameFields(t *testing.T) {
	schema := schemaOf(field("id", "integer"), field("code", "char"), field("qty", "float"))
	assert.Equal(t, []string{"id", "code", "qty"}, SmartFields(schema, 10))
}

func TestSelectFields(t *testing.T) {
	schema := rankingSchema()

	t.Run("empty request is smart", func(t *testing.T) {
		sel := SelectFields(schema, nil, 4)
		assert.True(t, sel.Smart)
		assert.False(t, sel.All())
		assert.Equal(t, []string{"id", "display_name", "name", "state"}, sel.Fields)
		assert.Equal(t, len(schema), sel.Available)
	})

	t.Run("all sentinel", func(t *testing.T) {
		sel := SelectFields(schema, []string{"name", AllFields}, 4)
		assert.True(t, sel.All())
		assert.False(t, sel.Smart)
	})

	t.Run("explicit list keeps order and drops duplicates", func(t *testing.T) {
		sel := SelectFields(schema, []string{"email", " name ", "email", ""}, 4)
		assert.False(t, sel.Smart)
		assert.Equal(t, []string{"email", "name"}, sel.Fields)
	})
}
