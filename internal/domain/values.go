package domain

import (
	"encoding/json"
	"math"
)

// normalizeValue maps the numeric types produced by the different decoders
// onto int64 or float64 so both notations yield identical ASTs. Integral
// floats become int64.
func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return i
		}
		f, err := value.Float64()
		if err != nil {
			return value.String()
		}
		return normalizeFloat(f)
	case float64:
		return normalizeFloat(value)
	case float32:
		return normalizeFloat(float64(value))
	case int:
		return int64(value)
	case int32:
		return int64(value)
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = normalizeValue(item)
		}
		return out
	case []int:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = int64(item)
		}
		return out
	case []string:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

func normalizeFloat(f float64) interface{} {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}
