package transit

import (
	"bytes"
	"encoding/json"
)

// Sequence collapses the provider's object-or-array ambiguity. Absent, null or
// scalar input yields an empty sequence, an array yields its elements in order
// and an object yields a single element. When wrapper is set and the object
// carries that key (e.g. {"point": ...}), the wrapped value is normalised instead.
func Sequence(raw json.RawMessage, wrapper string) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []json.RawMessage{}
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return []json.RawMessage{}
		}
		if items == nil {
			return []json.RawMessage{}
		}
		return items
	case '{':
		if wrapper != "" {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(trimmed, &fields); err == nil {
				if inner, ok := fields[wrapper]; ok {
					return Sequence(inner, "")
				}
			}
		}
		return []json.RawMessage{json.RawMessage(trimmed)}
	default:
		return []json.RawMessage{}
	}
}

// decodeEach unmarshals every element of a sequence into T, skipping elements
// that do not decode. The second result is the number of skipped elements.
func decodeEach[T any](items []json.RawMessage) ([]T, int) {
	out := make([]T, 0, len(items))
	skipped := 0
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}
