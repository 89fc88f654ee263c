package utils

import (
	"encoding/json"
	"strconv"
)

// ToStringSlice reads a JSON claim that may be a single string or a list.
// Non-string list entries are skipped.
func ToStringSlice(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ToIDString renders a JSON id, which decodes as a string, a float64 or a
// json.Number depending on the decoder
func ToIDString(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}
