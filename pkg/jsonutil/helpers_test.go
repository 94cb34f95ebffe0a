package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	oldMap := map[string]any{
		"text":     "Button",
		"variant":  "primary",
		"disabled": false,
		"nested":   map[string]any{"a": 1.0, "b": 2.0},
	}
	newMap := map[string]any{
		"text":    "Sign in",
		"variant": "primary",
		"href":    "#",
		"nested":  map[string]any{"a": 1.0, "b": 3.0},
	}

	got := Diff(oldMap, newMap)
	assert.Equal(t, []Change{
		{Path: "disabled", Type: "delete", OldValue: "false"},
		{Path: "href", Type: "add", NewValue: `"#"`},
		{Path: "nested.b", Type: "update", OldValue: "2", NewValue: "3"},
		{Path: "text", Type: "update", OldValue: `"Button"`, NewValue: `"Sign in"`},
	}, got)

	assert.Empty(t, Diff(oldMap, oldMap))
	assert.Empty(t, Diff(nil, map[string]any{}))
}

func TestToMap(t *testing.T) {
	m, err := ToMap(struct {
		Color string `json:"color,omitempty"`
		Width string `json:"width,omitempty"`
	}{Color: "red"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "red"}, m)

	_, err = ToMap([]int{1})
	assert.Error(t, err)
}

func TestPrettyAndCompact(t *testing.T) {
	assert.Equal(t, "[\n  1,\n  2\n]", PrettyJSON([]byte(`[1, 2]`)))
	assert.Equal(t, "not json", PrettyJSON([]byte("not json")))
	assert.Equal(t, `{"a":1}`, CompactJSON([]byte("{ \"a\" : 1 }")))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 5))
	assert.Equal(t, "he...", TruncateString("hello world", 5))
	assert.Equal(t, "hé", TruncateString("héllo", 2))
	assert.Equal(t, "", TruncateString("hello", -1))
}
