package automation

import (
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// RenderTemplate replaces {{field}} placeholders with top-level payload values.
// Unknown fields render as an empty string.
func RenderTemplate(tpl string, payload Payload) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		v, ok := payload.Top(key)
		if !ok {
			return ""
		}
		return v.String()
	})
}

// RenderJSONTemplate walks a decoded JSON value and renders every string in it.
// A string that consists of exactly one placeholder is replaced by the payload
// value itself, so numbers, objects and arrays keep their JSON type.
func RenderJSONTemplate(v any, payload Payload) any {
	switch t := v.(type) {
	case string:
		if m := placeholderPattern.FindStringSubmatchIndex(t); m != nil && m[0] == 0 && m[1] == len(t) {
			value, ok := payload.Top(t[m[2]:m[3]])
			if !ok {
				return nil
			}
			return value.Value()
		}
		return RenderTemplate(t, payload)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = RenderJSONTemplate(val, payload)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = RenderJSONTemplate(val, payload)
		}
		return out
	default:
		return v
	}
}
