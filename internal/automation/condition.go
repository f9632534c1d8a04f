package automation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"automation-worker/internal/domain"

	"github.com/tidwall/gjson"
)

// EvaluateConditions reports whether every condition holds for the payload.
// An empty list always holds.
func EvaluateConditions(conditions []domain.Condition, payload Payload) bool {
	for _, c := range conditions {
		if !evaluate(c, payload) {
			return false
		}
	}
	return true
}

func evaluate(c domain.Condition, payload Payload) bool {
	field := payload.Lookup(c.Field)
	actual := field.String()
	expected := stringify(c.Value)

	switch c.Operator {
	case domain.OpEquals:
		return actual == expected
	case domain.OpNotEquals:
		return actual != expected
	case domain.OpContains:
		return strings.Contains(actual, expected)
	case domain.OpNotContains:
		return !strings.Contains(actual, expected)
	case domain.OpStartsWith:
		return strings.HasPrefix(actual, expected)
	case domain.OpEndsWith:
		return strings.HasSuffix(actual, expected)
	case domain.OpGreaterThan:
		a, b, ok := numbers(field, c.Value)
		return ok && a > b
	case domain.OpLessThan:
		a, b, ok := numbers(field, c.Value)
		return ok && a < b
	case domain.OpIsEmpty:
		return isEmpty(field)
	case domain.OpIsNotEmpty:
		return !isEmpty(field)
	case domain.OpRegex:
		re, err := regexp.Compile(expected)
		if err != nil {
			return false
		}
		return re.MatchString(actual)
	default:
		return false
	}
}

// stringify turns a decoded JSON value into the text it is compared as.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func numbers(field gjson.Result, value any) (float64, float64, bool) {
	a, ok := fieldNumber(field)
	if !ok {
		return 0, 0, false
	}
	b, ok := valueNumber(value)
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

func fieldNumber(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Num, true
	case gjson.String:
		return parseNumber(r.Str)
	default:
		return 0, false
	}
}

func valueNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return parseNumber(t)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func isEmpty(r gjson.Result) bool {
	switch {
	case !r.Exists(), r.Type == gjson.Null:
		return true
	case r.Type == gjson.String:
		return r.Str == ""
	case r.IsArray():
		return len(r.Array()) == 0
	case r.IsObject():
		return len(r.Map()) == 0
	default:
		return false
	}
}
