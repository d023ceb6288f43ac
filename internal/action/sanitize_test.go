package action_test

import (
	"testing"

	"github.com/agentoven/mcpuibridge/internal/action"
)

func TestSanitizeParams_KeepsPrimitivesOnly(t *testing.T) {
	in := map[string]any{
		"name":     "Alice",
		"age":      float64(30),
		"active":   true,
		"nothing":  nil,
		"fn":       func() {},
		"nested":   map[string]any{"a": 1},
		"list":     []any{1, 2, 3},
	}
	out := action.SanitizeParams(in)

	want := map[string]bool{"name": true, "age": true, "active": true, "nothing": true}
	for k := range want {
		if _, ok := out[k]; !ok {
			t.Errorf("expected %q to survive sanitization", k)
		}
	}
	for _, dropped := range []string{"fn", "nested", "list"} {
		if _, ok := out[dropped]; ok {
			t.Errorf("expected %q to be dropped by sanitization", dropped)
		}
	}
	if len(out) != len(want) {
		t.Errorf("SanitizeParams() returned %d keys, want %d", len(out), len(want))
	}
}

func TestSanitizeParams_NeverPanicsOnNil(t *testing.T) {
	out := action.SanitizeParams(nil)
	if len(out) != 0 {
		t.Errorf("expected empty result for nil input, got %v", out)
	}
}
