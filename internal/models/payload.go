package models

import "encoding/json"

// ActionPayload is the untrusted structured intent produced by the
// interpreter or posted directly by a client. It is treated strictly as
// data: every field is read through a typed accessor and a wrong type is
// the same as an absent field.
type ActionPayload map[string]any

// Action returns the declared action kind, or "".
func (p ActionPayload) Action() string { return p.String("action") }

// String returns the string field under key, or "".
func (p ActionPayload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool returns the bool field under key.
func (p ActionPayload) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Float returns the numeric field under key. JSON numbers decode as
// float64; integer-typed values from in-process callers are accepted too.
func (p ActionPayload) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Int returns the numeric field under key truncated to int.
func (p ActionPayload) Int(key string) (int, bool) {
	f, ok := p.Float(key)
	return int(f), ok
}

// Object returns the object field under key, or nil.
func (p ActionPayload) Object(key string) ActionPayload {
	m, _ := p[key].(map[string]any)
	return ActionPayload(m)
}

// Array returns the array field under key, or nil.
func (p ActionPayload) Array(key string) []any {
	a, _ := p[key].([]any)
	return a
}

// Objects returns the array field under key with every non-object element
// dropped.
func (p ActionPayload) Objects(key string) []ActionPayload {
	raw := p.Array(key)
	if raw == nil {
		return nil
	}
	out := make([]ActionPayload, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, ActionPayload(m))
		}
	}
	return out
}

// Clone returns a deep copy of the payload via a JSON round trip, so the
// copy shares no mutable structure with the original.
func (p ActionPayload) Clone() ActionPayload {
	if p == nil {
		return nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return ActionPayload{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return ActionPayload{}
	}
	return ActionPayload(out)
}

// Splice modes for writing a clarification answer back into a payload.
const (
	ApplyModeValue  = "value"  // write the chosen id as a scalar
	ApplyModeTarget = "target" // write {"id": chosen} as an object
)

// ApplySpec addresses the exact location in a payload where a
// clarification answer must be written back. Path elements are object keys
// (string) or array indices (float64/int, as JSON decodes them).
type ApplySpec struct {
	Mode string `json:"mode"`
	Path []any  `json:"path"`
}

// Splice writes the selected id into the payload at the apply path. The
// final path element selects the field to overwrite; intermediate elements
// must already exist with the matching shape.
func (p ActionPayload) Splice(spec ApplySpec, selected string) bool {
	if len(spec.Path) == 0 {
		return false
	}
	var value any = selected
	if spec.Mode == ApplyModeTarget {
		value = map[string]any{"id": selected}
	}

	var cur any = map[string]any(p)
	for _, elem := range spec.Path[:len(spec.Path)-1] {
		cur = descend(cur, elem)
		if cur == nil {
			return false
		}
	}

	switch last := spec.Path[len(spec.Path)-1].(type) {
	case string:
		obj, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		obj[last] = value
		return true
	default:
		idx, ok := pathIndex(last)
		if !ok {
			return false
		}
		arr, ok := cur.([]any)
		if !ok || idx < 0 || idx >= len(arr) {
			return false
		}
		arr[idx] = value
		return true
	}
}

// descend walks one path element into an object or array.
func descend(cur any, elem any) any {
	switch e := elem.(type) {
	case string:
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		return obj[e]
	default:
		idx, ok := pathIndex(e)
		if !ok {
			return nil
		}
		arr, ok := cur.([]any)
		if !ok || idx < 0 || idx >= len(arr) {
			return nil
		}
		return arr[idx]
	}
}

// pathIndex coerces a path element to an array index. JSON decoding turns
// indices into float64; in-process callers may pass int.
func pathIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
