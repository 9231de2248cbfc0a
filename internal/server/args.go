package server

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/domain"
	"github.com/giantswarm/mcp-odoo/internal/uri"
)

// orderPattern accepts "field", "field desc" and comma separated lists of
// those.
var orderPattern = regexp.MustCompile(`^\s*[a-zA-Z_][a-zA-Z0-9_.]*(\s+(?i:asc|desc))?(\s*,\s*[a-zA-Z_][a-zA-Z0-9_.]*(\s+(?i:asc|desc))?)*\s*$`)

// toolArgs are the decoded arguments of one tool call.
type toolArgs map[string]interface{}

func invalidArg(field, format string, args ...interface{}) error {
	return &api.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (a toolArgs) model() (string, error) {
	v, ok := a["model"]
	if !ok || v == nil {
		return "", invalidArg("model", "model is required")
	}
	name, ok := v.(string)
	if !ok {
		return "", invalidArg("model", "model must be a string")
	}
	name = strings.TrimSpace(name)
	if !uri.ValidModelName(name) {
		return "", invalidArg("model", "invalid model name: %s", name)
	}
	return name, nil
}

func (a toolArgs) optionalString(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidArg(key, "%s must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

// optionalInt returns nil when key is absent. JSON numbers arrive as
// float64 and must be integral.
func (a toolArgs) optionalInt(key string) (*int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		if x != math.Trunc(x) {
			return nil, invalidArg(key, "%s must be an integer, got %v", key, x)
		}
		n = int(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil, invalidArg(key, "%s must be an integer, got %s", key, x)
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil, invalidArg(key, "%s must be an integer, got %q", key, x)
		}
		n = i
	default:
		return nil, invalidArg(key, "%s must be an integer", key)
	}
	return &n, nil
}

func (a toolArgs) recordID() (int, error) {
	id, err := a.optionalInt("record_id")
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, invalidArg("record_id", "record_id is required")
	}
	if *id <= 0 {
		return 0, invalidArg("record_id", "record_id must be a positive integer")
	}
	return *id, nil
}

// fields accepts a list of names, a comma separated string or a JSON array
// string.
func (a toolArgs) fields() ([]string, error) {
	v, ok := a["fields"]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case []string:
		return x, nil
	case []interface{}:
		fields := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, invalidArg("fields", "fields must be a list of field names")
			}
			fields = append(fields, s)
		}
		return fields, nil
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "[") {
			var fields []string
			if err := json.Unmarshal([]byte(s), &fields); err != nil {
				return nil, invalidArg("fields", "fields must be a list of field names")
			}
			return fields, nil
		}
		var fields []string
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		return fields, nil
	}
	return nil, invalidArg("fields", "fields must be a list of field names")
}

func (a toolArgs) domain() (domain.Domain, error) {
	return domain.FromValue(a["domain"])
}

// values returns the field values of create and update. A JSON object
// string is accepted as well.
func (a toolArgs) values() (map[string]interface{}, error) {
	var values map[string]interface{}
	switch x := a["values"].(type) {
	case map[string]interface{}:
		values = x
	case string:
		if err := json.Unmarshal([]byte(x), &values); err != nil {
			return nil, invalidArg("values", "values must be an object of field values")
		}
	case nil:
	default:
		return nil, invalidArg("values", "values must be an object of field values")
	}
	if len(values) == 0 {
		return nil, invalidArg("values", "no field values provided")
	}
	return values, nil
}

// resolveLimit applies the page size rules: absent uses def, zero is kept
// (count only), values above max are clamped and negatives are rejected.
func resolveLimit(limit *int, def, maxLimit int) (int, error) {
	n := def
	if limit != nil {
		n = *limit
	}
	if n < 0 {
		return 0, invalidArg("limit", "limit must not be negative")
	}
	if maxLimit > 0 && n > maxLimit {
		return maxLimit, nil
	}
	return n, nil
}

func resolveOffset(offset *int) (int, error) {
	if offset == nil {
		return 0, nil
	}
	if *offset < 0 {
		return 0, invalidArg("offset", "offset must not be negative")
	}
	return *offset, nil
}

func validateOrder(order string) error {
	if order == "" || orderPattern.MatchString(order) {
		return nil
	}
	return invalidArg("order", "invalid sort order: %s", order)
}
