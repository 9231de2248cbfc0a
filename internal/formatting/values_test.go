package formatting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/giantswarm/mcp-odoo/internal/odoo"
)

func TestValue(t *testing.T) {
	selection := field("type", "selection")
	selection.Selection = []odoo.SelectionOption{{Key: "contact", Label: "Contact"}, {Key: "invoice", Label: "Invoice Address"}}

	price := field("price", "float")
	price.Digits, price.HasDigits = 3, true

	total := field("total", "monetary")
	total.CurrencyField = "currency_id"

	tests := []struct {
		name     string
		info     odoo.FieldInfo
		value    interface{}
		record   odoo.Record
		expected string
	}{
		{"boolean true", field("active", "boolean"), true, nil, "Yes"},
		{"boolean false", field("active", "boolean"), false, nil, "No"},
		{"unset char", field("email", "char"), false, nil, "Not set"},
		{"nil char", field("email", "char"), nil, nil, "Not set"},
		{"integer grouping", field("qty", "integer"), int64(1234567), nil, "1,234,567"},
		{"float default precision", field("weight", "float"), 12.5, nil, "12.50"},
		{"float declared precision", price, 0.5, nil, "0.500"},
		{"monetary with currency", total, 150.5, odoo.Record{"currency_id": []interface{}{int64(1), "EUR"}}, "€150.50"},
		{"monetary without symbol", total, 20.0, odoo.Record{"currency_id": []interface{}{int64(3), "CHF"}}, "20.00 CHF"},
		{"monetary with regional symbol", total, 1234.5, odoo.Record{"currency_id": []interface{}{int64(4), "MXN"}}, "MX$1,234.50"},
		{"monetary with pound symbol", total, 9.99, odoo.Record{"currency_id": []interface{}{int64(5), "GBP"}}, "£9.99"},
		{"monetary code symbol", total, 7.0, odoo.Record{"currency_id": []interface{}{int64(6), "SEK"}}, "7.00 SEK"},
		{"monetary unknown code", total, 7.0, odoo.Record{"currency_id": []interface{}{int64(7), "Euro"}}, "7.00"},
		{"monetary without currency", total, 20.0, odoo.Record{}, "20.00"},
		{"negative monetary", total, -5.0, odoo.Record{"currency_id": []interface{}{int64(2), "USD"}}, "-$5.00"},
		{"date", field("date", "date"), "2024-03-01", nil, "2024-03-01"},
		{"datetime", field("write_date", "datetime"), "2024-03-01 10:20:30", nil, "2024-03-01T10:20:30+00:00"},
		{"compact datetime", field("write_date", "datetime"), "20240301T10:20:30", nil, "2024-03-01T10:20:30+00:00"},
		{"selection label", selection, "contact", nil, "Contact (contact)"},
		{"unknown selection key", selection, "other", nil, "other"},
		{"binary", field("image_1920", "binary"), strings.Repeat("A", 4096), nil, "[Binary data, 3.0 KB]"},
		{"small binary", field("image_1920", "binary"), "AAAA", nil, "[Binary data, 3 bytes]"},
		{"html stripped", field("comment", "html"), "<p>Hello <b>world</b></p>", nil, "Hello world"},
		{"many2one", field("country_id", "many2one"), []interface{}{int64(21), "Belgium"}, nil, "Belgium (21)"},
		{"empty many2one", field("country_id", "many2one"), false, nil, "Not set"},
		{"one2many", field("child_ids", "one2many"), []interface{}{int64(8), int64(9)}, nil, "2 record(s) [8, 9]"},
		{"empty one2many", field("child_ids", "one2many"), []interface{}{}, nil, "No records"},
		{"unknown type number", field("x", ""), 3.0, nil, "3"},
	}

	f := New("res.partner", Options{MaxRelatedItems: 10})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.value(tt.record, tt.info, tt.value))
		})
	}
}

func TestValueCapsRelatedItems(t *testing.T) {
	f := New("res.partner", Options{MaxRelatedItems: 2})
	ids := []interface{}{int64(1), int64(2), int64(3), int64(4)}

	assert.Equal(t, "4 record(s) [1, 2, +2 more]", f.value(nil, field("child_ids", "one2many"), ids))
}

func TestValueTruncatesLongText(t *testing.T) {
	f := New("res.partner", Options{})
	out := f.value(nil, field("comment", "text"), strings.Repeat("x", 5000))

	assert.Len(t, out, maxTextLen)
	assert.True(t, strings.HasSuffix(out, "..."))
}
