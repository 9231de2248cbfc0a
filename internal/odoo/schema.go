package odoo

import (
	"sort"
)

// FieldKind is the formatting-relevant category of a field.
type FieldKind string

const (
	KindScalar       FieldKind = "scalar"
	KindRelationOne  FieldKind = "relation-one"
	KindRelationMany FieldKind = "relation-many"
	KindComputed     FieldKind = "computed"
)

// SelectionOption is one (key, label) pair of a selection field.
type SelectionOption struct {
	Key   string
	Label string
}

// FieldInfo describes one field as reported by fields_get.
type FieldInfo struct {
	Name     string
	Kind     FieldKind
	Type     string
	Label    string
	Help     string
	Relation string

	Required   bool
	Readonly   bool
	Stored     bool
	Searchable bool

	Selection     []SelectionOption
	Digits        int
	HasDigits     bool
	CurrencyField string
}

// IsBinary reports whether the field holds binary or markup payloads that
// are never shown inline.
func (f FieldInfo) IsBinary() bool {
	switch f.Type {
	case "binary", "image", "file", "html":
		return true
	}
	return false
}

// SelectionLabel returns the label for key, if the field declares it.
func (f FieldInfo) SelectionLabel(key string) (string, bool) {
	for _, opt := range f.Selection {
		if opt.Key == key {
			return opt.Label, true
		}
	}
	return "", false
}

// Fields is the schema of one model keyed by field name.
type Fields map[string]FieldInfo

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseFields converts the raw fields_get answer.
func parseFields(raw interface{}) Fields {
	fields := make(Fields)
	m, ok := raw.(map[string]interface{})
	if !ok {
		return fields
	}
	for name, v := range m {
		attrs, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		fields[name] = parseFieldInfo(name, attrs)
	}
	return fields
}

func parseFieldInfo(name string, attrs map[string]interface{}) FieldInfo {
	info := FieldInfo{
		Name:          name,
		Type:          toString(attrs["type"]),
		Label:         toString(attrs["string"]),
		Help:          toString(attrs["help"]),
		Relation:      toString(attrs["relation"]),
		Required:      toBool(attrs["required"]),
		Readonly:      toBool(attrs["readonly"]),
		Stored:        boolDefault(attrs["store"], true),
		Searchable:    boolDefault(attrs["searchable"], true),
		CurrencyField: toString(attrs["currency_field"]),
	}

	if digits, ok := attrs["digits"].([]interface{}); ok && len(digits) == 2 {
		if precision, ok := toInt(digits[1]); ok {
			info.Digits = precision
			info.HasDigits = true
		}
	}

	if selection, ok := attrs["selection"].([]interface{}); ok {
		for _, item := range selection {
			pair, ok := item.([]interface{})
			if !ok || len(pair) != 2 {
				continue
			}
			info.Selection = append(info.Selection, SelectionOption{
				Key:   toString(pair[0]),
				Label: toString(pair[1]),
			})
		}
	}

	_, hasCompute := attrs["compute"]
	switch {
	case info.Type == "many2one":
		info.Kind = KindRelationOne
	case info.Type == "one2many" || info.Type == "many2many":
		info.Kind = KindRelationMany
	case !info.Stored || (hasCompute && toString(attrs["compute"]) != ""):
		info.Kind = KindComputed
	default:
		info.Kind = KindScalar
	}

	return info
}
