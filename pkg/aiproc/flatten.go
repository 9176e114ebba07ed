// Nested-JSON flattening for message lists, tool schemas, and invocation parameters
// Malformed input degrades to raw-string storage (messages) or omission (tools)
package aiproc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/andrewh/aispan/pkg/semconv"
	"go.opentelemetry.io/otel/attribute"
)

// message mirrors one element of a gen_ai messages array. Content and tool-call
// fields are kept raw so scalars, arrays, and objects all stringify in their
// natural form.
type message struct {
	Role      json.RawMessage `json:"role"`
	Content   json.RawMessage `json:"content"`
	ToolCalls []toolCall      `json:"toolCalls"`
}

type toolCall struct {
	ID        json.RawMessage `json:"id"`
	Name      json.RawMessage `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// flattenMessages expands a JSON message array into indexed attributes under
// prefix. If the value does not parse as an array of message objects, the raw
// string is stored verbatim under the un-indexed prefix key so the information
// is never dropped.
func flattenMessages(prefix, messagesJSON string) []attribute.KeyValue {
	raw := func() []attribute.KeyValue {
		return []attribute.KeyValue{attribute.String(prefix, messagesJSON)}
	}

	if !strings.HasPrefix(strings.TrimSpace(messagesJSON), "[") {
		return raw()
	}
	var msgs []message
	if err := json.Unmarshal([]byte(messagesJSON), &msgs); err != nil {
		return raw()
	}

	var attrs []attribute.KeyValue
	for i, msg := range msgs {
		if s, ok := rawString(msg.Role); ok {
			attrs = append(attrs, attribute.String(fmt.Sprintf("%s.%d.message.role", prefix, i), s))
		}
		if s, ok := rawString(msg.Content); ok {
			attrs = append(attrs, attribute.String(fmt.Sprintf("%s.%d.message.content", prefix, i), s))
		}
		for j, tc := range msg.ToolCalls {
			callPrefix := fmt.Sprintf("%s.%d.message.tool_calls.%d.tool_call", prefix, i, j)
			if s, ok := rawString(tc.ID); ok {
				attrs = append(attrs, attribute.String(callPrefix+".id", s))
			}
			if s, ok := rawString(tc.Name); ok {
				attrs = append(attrs, attribute.String(callPrefix+".function.name", s))
			}
			if s, ok := rawString(tc.Arguments); ok {
				attrs = append(attrs, attribute.String(callPrefix+".function.arguments", s))
			}
		}
	}
	return attrs
}

// flattenTools expands a JSON tool array into per-tool schema attributes.
// Tools are best-effort: anything that is not a JSON array is silently omitted.
func flattenTools(toolsJSON string) []attribute.KeyValue {
	if !strings.HasPrefix(strings.TrimSpace(toolsJSON), "[") {
		return nil
	}
	var tools []json.RawMessage
	if err := json.Unmarshal([]byte(toolsJSON), &tools); err != nil {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(tools))
	for i, tool := range tools {
		attrs = append(attrs, attribute.String(
			fmt.Sprintf("%s.%d.tool.json_schema", semconv.OILLMTools, i), compactJSON(tool)))
	}
	return attrs
}

// invocationParameters assembles the llm.invocation_parameters JSON object from
// temperature, stop sequences, and finish reason. Fields whose source attribute
// is absent are left out; an empty object is reported as not ok rather than
// emitted as "{}".
func invocationParameters(attrs attrSet) (string, bool) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := false

	field := func(key string, value []byte) {
		if wrote {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", key)
		buf.Write(value)
		wrote = true
	}

	if temp, ok := attrs.get(semconv.GenAITemperature); ok {
		// NaN and infinities parse as floats but have no JSON form; they
		// stay strings like any other non-numeric value.
		f, perr := strconv.ParseFloat(temp, 64)
		if value, merr := json.Marshal(f); perr == nil && merr == nil {
			field("temperature", value)
		} else {
			value, _ := json.Marshal(temp)
			field("temperature", value)
		}
	}
	if stop, ok := attrs.get(semconv.GenAIStopSequences); ok {
		if json.Valid([]byte(stop)) {
			field("stop_sequences", []byte(compactJSON(json.RawMessage(stop))))
		} else {
			value, _ := json.Marshal(stop)
			field("stop_sequences", value)
		}
	}
	if finish, ok := attrs.get(semconv.GenAIFinishReasons); ok {
		value, _ := json.Marshal(finish)
		field("finish_reason", value)
	}

	if !wrote {
		return "", false
	}
	buf.WriteByte('}')
	return buf.String(), true
}

// rawString renders a raw JSON value in its natural string form: JSON strings
// are unquoted, everything else keeps its compact JSON text. Absent values
// (nil or JSON null) report not ok.
func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return compactJSON(raw), true
}

// compactJSON strips insignificant whitespace; malformed input passes through.
func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
