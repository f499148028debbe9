package models

import (
	"encoding/json"
	"strings"
)

// TriggerContext is the event payload that caused an action to fire. Callers
// hand it over as a native map, an arbitrary struct, or a serialized JSON
// string; NewTriggerContext normalizes all three into a generic tree so that
// field lookup behaves identically regardless of the producer.
type TriggerContext struct {
	fields map[string]any
	raw    any
}

// NewTriggerContext builds a context from an arbitrary value. A string that
// looks like a JSON document is parsed first; any other non-map value is
// round-tripped through JSON to obtain its field tree. Values that cannot be
// interpreted as an object yield an empty context rather than an error.
func NewTriggerContext(value any) *TriggerContext {
	ctx := &TriggerContext{raw: value}

	switch v := value.(type) {
	case nil:
		ctx.fields = map[string]any{}
	case *TriggerContext:
		if v == nil {
			ctx.fields = map[string]any{}

			return ctx
		}

		return v
	case map[string]any:
		ctx.fields = v
	case string:
		ctx.fields = parseJSONObject(v)
	default:
		ctx.fields = marshalToObject(v)
	}

	if ctx.fields == nil {
		ctx.fields = map[string]any{}
	}

	return ctx
}

func parseJSONObject(s string) map[string]any {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return map[string]any{}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return map[string]any{}
	}

	return obj
}

func marshalToObject(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return map[string]any{}
	}

	return obj
}

// Field looks up a named field, case-sensitive first and then
// case-insensitive, mirroring how upstream producers disagree on casing.
func (c *TriggerContext) Field(name string) (any, bool) {
	if c == nil {
		return nil, false
	}

	if v, ok := c.fields[name]; ok {
		return v, true
	}

	for k, v := range c.fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}

	return nil, false
}

// String returns the named field rendered as a string.
func (c *TriggerContext) String(name string) (string, bool) {
	v, ok := c.Field(name)
	if !ok || v == nil {
		return "", false
	}

	switch s := v.(type) {
	case string:
		return s, true
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", false
		}

		return strings.Trim(string(data), `"`), true
	}
}

// Int64 returns the named field as an int64. JSON numbers arrive as float64;
// numeric strings are accepted because several producers serialize ids.
func (c *TriggerContext) Int64(name string) (int64, bool) {
	v, ok := c.Field(name)
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}

		return i, true
	case string:
		var parsed int64
		if err := json.Unmarshal([]byte(n), &parsed); err != nil {
			return 0, false
		}

		return parsed, true
	}

	return 0, false
}

// Fields exposes the normalized field tree.
func (c *TriggerContext) Fields() map[string]any {
	if c == nil {
		return map[string]any{}
	}

	return c.fields
}

// JSON serializes the whole context. Used when a script parameter asks for
// the reserved workflowContext value.
func (c *TriggerContext) JSON() string {
	if c == nil {
		return "{}"
	}

	data, err := json.Marshal(c.fields)
	if err != nil {
		return "{}"
	}

	return string(data)
}
