// Tests for message and tool-schema flattening fallback behaviour
package aiproc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenMessages_Basic(t *testing.T) {
	t.Parallel()

	attrs := flattenMessages("llm.input_messages", `[{"role":"user","content":"hi"}]`)
	m := attrMap(attrs)

	assert.Equal(t, "user", m["llm.input_messages.0.message.role"])
	assert.Equal(t, "hi", m["llm.input_messages.0.message.content"])
	assert.NotContains(t, m, "llm.input_messages")
}

func TestFlattenMessages_MultipleAndPartial(t *testing.T) {
	t.Parallel()

	attrs := flattenMessages("llm.output_messages",
		`[{"role":"assistant","content":"one"},{"content":"two"},{"role":"tool"}]`)
	m := attrMap(attrs)

	assert.Equal(t, "assistant", m["llm.output_messages.0.message.role"])
	assert.Equal(t, "one", m["llm.output_messages.0.message.content"])
	assert.Equal(t, "two", m["llm.output_messages.1.message.content"])
	assert.NotContains(t, m, "llm.output_messages.1.message.role")
	assert.Equal(t, "tool", m["llm.output_messages.2.message.role"])
	assert.NotContains(t, m, "llm.output_messages.2.message.content")
}

func TestFlattenMessages_ContentShapes(t *testing.T) {
	t.Parallel()

	attrs := flattenMessages("llm.input_messages",
		`[{"content":["a","b"]},{"content":{"type":"text"}},{"content":42}]`)
	m := attrMap(attrs)

	assert.Equal(t, `["a","b"]`, m["llm.input_messages.0.message.content"])
	assert.Equal(t, `{"type":"text"}`, m["llm.input_messages.1.message.content"])
	assert.Equal(t, "42", m["llm.input_messages.2.message.content"])
}

func TestFlattenMessages_ToolCalls(t *testing.T) {
	t.Parallel()

	attrs := flattenMessages("llm.output_messages",
		`[{"role":"assistant","toolCalls":[{"id":"call_1","name":"search","arguments":{"q":"go"}},{"name":"fetch"}]}]`)
	m := attrMap(attrs)

	assert.Equal(t, "call_1", m["llm.output_messages.0.message.tool_calls.0.tool_call.id"])
	assert.Equal(t, "search", m["llm.output_messages.0.message.tool_calls.0.tool_call.function.name"])
	assert.Equal(t, `{"q":"go"}`, m["llm.output_messages.0.message.tool_calls.0.tool_call.function.arguments"])
	assert.Equal(t, "fetch", m["llm.output_messages.0.message.tool_calls.1.tool_call.function.name"])
	assert.NotContains(t, m, "llm.output_messages.0.message.tool_calls.1.tool_call.id")
}

func TestFlattenMessages_RawFallback(t *testing.T) {
	t.Parallel()

	t.Run("not JSON", func(t *testing.T) {
		t.Parallel()
		attrs := flattenMessages("llm.input_messages", "not-json")
		require.Len(t, attrs, 1)
		assert.Equal(t, "llm.input_messages", string(attrs[0].Key))
		assert.Equal(t, "not-json", attrs[0].Value.AsString())
	})

	t.Run("JSON but not an array", func(t *testing.T) {
		t.Parallel()
		attrs := flattenMessages("llm.input_messages", `{"role":"user"}`)
		require.Len(t, attrs, 1)
		assert.Equal(t, `{"role":"user"}`, attrs[0].Value.AsString())
	})

	t.Run("array of non-objects", func(t *testing.T) {
		t.Parallel()
		attrs := flattenMessages("llm.input_messages", `["just","strings"]`)
		require.Len(t, attrs, 1)
		assert.Equal(t, `["just","strings"]`, attrs[0].Value.AsString())
	})

	t.Run("empty array emits nothing", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, flattenMessages("llm.input_messages", `[]`))
	})
}

func TestFlattenTools(t *testing.T) {
	t.Parallel()

	t.Run("each tool keeps its JSON text", func(t *testing.T) {
		t.Parallel()
		attrs := flattenTools(`[{"name":"search","parameters":{"type":"object"}},{"name":"fetch"}]`)
		m := attrMap(attrs)
		assert.Equal(t, `{"name":"search","parameters":{"type":"object"}}`, m["llm.tools.0.tool.json_schema"])
		assert.Equal(t, `{"name":"fetch"}`, m["llm.tools.1.tool.json_schema"])
	})

	t.Run("invalid JSON is omitted", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, flattenTools("not-json"))
	})

	t.Run("non-array JSON is omitted", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, flattenTools(`{"name":"search"}`))
	})
}

func TestRawString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"string unquoted", `"hi"`, "hi", true},
		{"number", `3.5`, "3.5", true},
		{"array compacted", `[1, 2]`, "[1,2]", true},
		{"object compacted", `{"a": 1}`, `{"a":1}`, true},
		{"null absent", `null`, "", false},
		{"empty absent", ``, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := rawString(json.RawMessage(tc.raw))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
