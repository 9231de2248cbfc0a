package formatting

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/giantswarm/mcp-odoo/internal/odoo"
	pkgstrings "github.com/giantswarm/mcp-odoo/pkg/strings"
)

const (
	notSet     = "Not set"
	maxTextLen = 1000

	// isoDateTime is ISO-8601 without the zone; values are UTC and get an
	// explicit +00:00 suffix.
	isoDateTime = "2006-01-02T15:04:05"
	isoDate     = "2006-01-02"
)

// The backend sends datetimes as "YYYY-MM-DD HH:MM:SS" in UTC; some XML-RPC
// stacks use the compact dateTime.iso8601 form instead.
var datetimeLayouts = []string{"2006-01-02 15:04:05", "20060102T15:04:05", time.RFC3339, isoDateTime}

var (
	printer = message.NewPrinter(language.English)
	htmlTag = regexp.MustCompile(`<[^>]*>`)
)

func isUnset(v interface{}) bool {
	return v == nil || v == false
}

// value renders v according to the field's kind and declared type. rec is
// consulted for the currency of monetary fields.
func (f *Formatter) value(rec odoo.Record, info odoo.FieldInfo, v interface{}) string {
	switch info.Kind {
	case odoo.KindRelationOne:
		return many2one(v)
	case odoo.KindRelationMany:
		return f.x2many(v)
	}

	if info.Type == "boolean" {
		if b, _ := v.(bool); b {
			return "Yes"
		}
		return "No"
	}
	if isUnset(v) {
		return notSet
	}

	switch info.Type {
	case "integer":
		if n, ok := asFloat(v); ok {
			return printer.Sprintf("%d", int64(n))
		}
	case "float":
		digits := 2
		if info.HasDigits {
			digits = info.Digits
		}
		if n, ok := asFloat(v); ok {
			return formatDecimal(n, digits)
		}
	case "monetary":
		if n, ok := asFloat(v); ok {
			unit, known := recordCurrency(rec, info)
			return monetary(n, unit, known)
		}
	case "date":
		if s, ok := v.(string); ok {
			if t, err := time.Parse(isoDate, strings.TrimSpace(s)); err == nil {
				return t.Format(isoDate)
			}
			return s
		}
	case "datetime":
		if s, ok := v.(string); ok {
			return formatDatetime(s)
		}
	case "selection":
		key := fmt.Sprint(v)
		if label, ok := info.SelectionLabel(key); ok {
			return fmt.Sprintf("%s (%s)", label, key)
		}
		return key
	case "binary", "image", "file":
		return binaryPlaceholder(v)
	case "html":
		if s, ok := v.(string); ok {
			return pkgstrings.Truncate(htmlTag.ReplaceAllString(s, " "), maxTextLen)
		}
	case "char", "text":
		if s, ok := v.(string); ok {
			return pkgstrings.Truncate(s, maxTextLen)
		}
	}
	return generic(v)
}

func many2one(v interface{}) string {
	switch pair := v.(type) {
	case []interface{}:
		if len(pair) == 2 {
			return fmt.Sprintf("%v (%v)", pair[1], pair[0])
		}
		if len(pair) == 1 {
			return fmt.Sprintf("(%v)", pair[0])
		}
	case int, int64:
		return fmt.Sprintf("(%v)", pair)
	}
	return notSet
}

// relatedIDs extracts the ids of an x2many value.
func relatedIDs(v interface{}) []int {
	items, _ := v.([]interface{})
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := asFloat(item); ok {
			ids = append(ids, int(n))
		}
	}
	return ids
}

// x2many renders "N record(s) [id, ...]" with at most maxRelated ids and a
// "+k more" marker for the rest.
func (f *Formatter) x2many(v interface{}) string {
	ids := relatedIDs(v)
	if len(ids) == 0 {
		return "No records"
	}

	shown := ids
	if f.maxRelated > 0 && len(ids) > f.maxRelated {
		shown = ids[:f.maxRelated]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, id := range shown {
		parts = append(parts, strconv.Itoa(id))
	}
	if rest := len(ids) - len(shown); rest > 0 {
		parts = append(parts, fmt.Sprintf("+%d more", rest))
	}
	return fmt.Sprintf("%d record(s) [%s]", len(ids), strings.Join(parts, ", "))
}

func formatDecimal(n float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	return printer.Sprintf("%."+strconv.Itoa(digits)+"f", n)
}

// recordCurrency returns the currency of the record, read from the
// many2one named by the field's currency_field.
func recordCurrency(rec odoo.Record, info odoo.FieldInfo) (currency.Unit, bool) {
	field := info.CurrencyField
	if field == "" {
		field = "currency_id"
	}
	pair, ok := rec[field].([]interface{})
	if !ok || len(pair) != 2 {
		return currency.Unit{}, false
	}
	name, _ := pair[1].(string)
	unit, err := currency.ParseISO(strings.TrimSpace(name))
	if err != nil {
		return currency.Unit{}, false
	}
	return unit, true
}

// monetary prefixes the CLDR symbol of unit. Currencies without a symbol
// distinct from their ISO code get the code as a suffix instead.
func monetary(n float64, unit currency.Unit, known bool) string {
	amount := formatDecimal(n, 2)
	if !known {
		return amount
	}
	code := unit.String()
	symbol := printer.Sprint(currency.Symbol(unit))
	if symbol == "" || symbol == code {
		return amount + " " + code
	}
	if strings.HasPrefix(amount, "-") {
		return "-" + symbol + amount[1:]
	}
	return symbol + amount
}

func formatDatetime(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(isoDateTime) + "+00:00"
		}
	}
	return s
}

func binaryPlaceholder(v interface{}) string {
	s, _ := v.(string)
	size := len(s) * 3 / 4
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("[Binary data, %.1f MB]", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("[Binary data, %.1f KB]", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("[Binary data, %d bytes]", size)
	}
}

// generic renders values of unknown fields.
func generic(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return notSet
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		return pkgstrings.Truncate(x, maxTextLen)
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []interface{}:
		if len(x) == 2 {
			if _, ok := x[1].(string); ok {
				return many2one(x)
			}
		}
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = generic(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
