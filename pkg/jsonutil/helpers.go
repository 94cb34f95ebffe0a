// Package jsonutil provides JSON helpers for lowcode.
//
// These are used for pretty-printing stored forests, diffing a node's
// props and styles against its catalog defaults, and trimming values
// for display in the TUI.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// PrettyJSON indents raw JSON for display.
// Returns the input unchanged if it is not valid JSON.
func PrettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// CompactJSON minifies raw JSON.
func CompactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// ToMap round-trips v through JSON into a generic object.
// Non-object values produce an error.
func ToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding object: %w", err)
	}
	return m, nil
}

// Change is one difference between two JSON objects.
type Change struct {
	Path     string `json:"path"`
	Type     string `json:"type"` // "add", "update", "delete"
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// Diff compares two decoded JSON objects and returns the differences,
// sorted by path. Nested objects are compared key by key.
func Diff(oldMap, newMap map[string]any) []Change {
	return diffMaps("", oldMap, newMap, nil)
}

func diffMaps(prefix string, oldMap, newMap map[string]any, diffs []Change) []Change {
	allKeys := make(map[string]bool)
	for k := range oldMap {
		allKeys[k] = true
	}
	for k := range newMap {
		allKeys[k] = true
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(allKeys))
	for k := range allKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		oldVal, oldExists := oldMap[k]
		newVal, newExists := newMap[k]

		switch {
		case !oldExists && newExists:
			diffs = append(diffs, Change{Path: path, Type: "add", NewValue: toJSONStr(newVal)})
		case oldExists && !newExists:
			diffs = append(diffs, Change{Path: path, Type: "delete", OldValue: toJSONStr(oldVal)})
		default:
			oldStr, newStr := toJSONStr(oldVal), toJSONStr(newVal)
			if oldStr == newStr {
				continue
			}
			oldChild, oldIsMap := oldVal.(map[string]any)
			newChild, newIsMap := newVal.(map[string]any)
			if oldIsMap && newIsMap {
				diffs = diffMaps(path, oldChild, newChild, diffs)
			} else {
				diffs = append(diffs, Change{Path: path, Type: "update", OldValue: oldStr, NewValue: newStr})
			}
		}
	}

	return diffs
}

func toJSONStr(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// TruncateString truncates s to maxLen runes, adding "..." if
// truncation occurred. Used for display in the TUI.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
