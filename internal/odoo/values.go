package odoo

import (
	"fmt"
	"math"
	"strconv"
)

// XML-RPC decodes integers as int64 and the backend uses false for empty
// values; these helpers normalize what comes back.

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case nil, bool:
		// false is the backend's "empty"
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

func toBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func boolDefault(v interface{}, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func toIntSlice(v interface{}) []int {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if id, ok := toInt(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func toRecords(v interface{}) []Record {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, normalizeRecord(m))
		}
	}
	return records
}

func normalizeRecord(m map[string]interface{}) Record {
	r := make(Record, len(m))
	for k, v := range m {
		r[k] = normalizeValue(v)
	}
	return r
}

// normalizeValue turns int64 into int so records compare and format the same
// whatever decoder produced them.
func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case int64:
		return int(value)
	case int32:
		return int(value)
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]interface{}:
		return map[string]interface{}(normalizeRecord(value))
	default:
		return v
	}
}

func toIntArgs(ids []int) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
