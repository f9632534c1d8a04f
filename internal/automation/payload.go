// Package automation matches queued events against tenant rules and runs their actions.
package automation

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Payload is the free-form JSON body of an event.
type Payload struct {
	raw json.RawMessage
}

// NewPayload wraps raw event JSON. Invalid or empty JSON behaves like {}.
func NewPayload(raw json.RawMessage) Payload {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		raw = json.RawMessage(`{}`)
	}
	return Payload{raw: raw}
}

// Raw returns the payload as JSON.
func (p Payload) Raw() json.RawMessage {
	return p.raw
}

// Lookup resolves a field. A literal top-level key wins; otherwise the field is read
// as a gjson path, so "customer.name" reaches into nested objects.
func (p Payload) Lookup(field string) gjson.Result {
	if field == "" {
		return gjson.Result{}
	}
	if v, ok := p.Top(field); ok {
		return v
	}
	return gjson.GetBytes(p.raw, field)
}

// String returns the string form of a field; missing and null fields are "".
func (p Payload) String(field string) string {
	return p.Lookup(field).String()
}

// Top returns the value of a top-level key without path interpretation.
func (p Payload) Top(key string) (gjson.Result, bool) {
	var (
		found gjson.Result
		ok    bool
	)
	gjson.ParseBytes(p.raw).ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}
